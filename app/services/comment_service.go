package services

import (
	"context"
	"errors"
	"fmt"

	"quill/app/models"
	"quill/app/pagination"
	"quill/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	opts        Options
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, opts Options) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		opts:        opts,
	}
}

// NewDraft returns an empty comment stamped with the service clock.
func (s *CommentService) NewDraft() *models.Comment {
	return models.NewComment(s.opts.Clock)
}

// CreateComment attaches draft to the post with the given id, validates it
// and persists it. A missing post yields repositories.ErrNotFound.
func (s *CommentService) CreateComment(ctx context.Context, postID int, draft *models.Comment) (*models.Comment, error) {
	if draft == nil {
		return nil, errors.New("comment cannot be nil")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}

	draft.Stamp(s.opts.Clock)
	if err := post.AddComment(draft); err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	// The post can vanish between the lookup and the write; the repository
	// reports that as ErrNotFound too.
	if err := s.commentRepo.Create(ctx, draft); err != nil {
		post.RemoveComment(draft)
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	inc(s.opts.CommentsCreated)
	return draft, nil
}

// ListComments pages through the comments already loaded on post.
func (s *CommentService) ListComments(ctx context.Context, post *models.Post, page int) (pagination.Page[*models.Comment], error) {
	src := pagination.SliceSource[*models.Comment](post.Comments)
	return pagination.Paginate[*models.Comment](ctx, src, page, s.opts.CommentsPerPage)
}

// ListCommentsNewestFirst returns every comment of a post, latest first.
func (s *CommentService) ListCommentsNewestFirst(ctx context.Context, postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}
