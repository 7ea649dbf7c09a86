package services

import (
	"context"
	"errors"
	"fmt"

	"quill/app/models"
	"quill/app/pagination"
	"quill/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	opts        Options
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, opts Options) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		opts:        opts,
	}
}

// NewDraft returns an empty post stamped with the service clock.
func (s *PostService) NewDraft() *models.Post {
	return models.NewPost(s.opts.Clock)
}

// ListPosts returns one page of posts in store order.
func (s *PostService) ListPosts(ctx context.Context, page int) (pagination.Page[*models.Post], error) {
	src := pagination.Funcs[*models.Post]{
		CountFunc: s.postRepo.Count,
		FetchFunc: func(ctx context.Context, offset, limit int) ([]*models.Post, error) {
			return s.postRepo.List(ctx, limit, offset)
		},
	}
	result, err := pagination.Paginate[*models.Post](ctx, src, page, s.opts.PostsPerPage)
	if err != nil {
		return result, fmt.Errorf("list posts: %w", err)
	}
	return result, nil
}

// GetPostWithComments retrieves a post by ID with its comments
func (s *PostService) GetPostWithComments(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.postRepo.GetWithComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

// CreatePost validates draft and persists it. A *models.ValidationErrors is
// returned untouched when a rule fails, and nothing is stored.
func (s *PostService) CreatePost(ctx context.Context, draft *models.Post) (*models.Post, error) {
	if draft == nil {
		return nil, errors.New("post cannot be nil")
	}

	draft.Stamp(s.opts.Clock)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(ctx, draft); err != nil {
		return nil, err
	}
	inc(s.opts.PostsCreated)
	return draft, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

// RemoveComment detaches a comment from a loaded post and deletes it from
// the store. The comment is reattached if the delete fails.
func (s *PostService) RemoveComment(ctx context.Context, post *models.Post, commentID int) error {
	comment, ok := post.CommentByID(commentID)
	if !ok {
		return fmt.Errorf("comment %d of post %d: %w", commentID, post.ID, repositories.ErrNotFound)
	}

	post.RemoveComment(comment)
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		_ = post.AddComment(comment)
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}
