package repositories

import (
	"context"
	"errors"

	"quill/app/models"
)

// ErrNotFound is returned when a post or comment does not exist.
var ErrNotFound = errors.New("record not found")

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	// GetWithComments loads the post and its whole comment collection in one
	// retrieval, comments in insertion order with back-references set.
	GetWithComments(ctx context.Context, id int) (*models.Post, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	// Delete removes the post and every comment whose post id equals id.
	Delete(ctx context.Context, id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create persists a comment for an existing post; ErrNotFound if the post is gone.
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	// ListByPost returns the comments of a post, newest first.
	ListByPost(ctx context.Context, postID int) ([]*models.Comment, error)
	Delete(ctx context.Context, id int) error
}
