package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"quill/app/models"
	"quill/app/observability"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db  *badger.DB
	log *observability.RepoLogger
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		// The owning post must exist in the same snapshot.
		if _, err := txn.Get(postKey(comment.PostID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}

		stored := *comment
		stored.ID = id
		data, err := marshalEntity(&stored)
		if err != nil {
			return err
		}

		// Save comment with post ID in key for efficient listing
		if err := txn.Set(commentKey(comment.PostID, id), data); err != nil {
			return err
		}
		if err := txn.Set(commentIndexKey(id), []byte(strconv.Itoa(comment.PostID))); err != nil {
			return err
		}
		comment.ID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		r.log.LogError(ctx, err, "create")
		return fmt.Errorf("create comment: %w", err)
	}
	r.log.LogCreate(ctx, comment.ID)
	return nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		postID, err := lookupCommentPost(txn, id)
		if err != nil {
			return err
		}

		item, err := txn.Get(commentKey(postID, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post, newest first
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comments, err = readComments(txn, postID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	SortNewestFirst(comments)
	return comments, nil
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		postID, err := lookupCommentPost(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(commentKey(postID, id)); err != nil {
			return err
		}
		return txn.Delete(commentIndexKey(id))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		r.log.LogError(ctx, err, "delete")
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	r.log.LogDelete(ctx, id, 0)
	return nil
}

func lookupCommentPost(txn *badger.Txn, id int) (int, error) {
	item, err := txn.Get(commentIndexKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var postID int
	err = item.Value(func(val []byte) error {
		postID, err = strconv.Atoi(string(val))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse comment index: %w", err)
	}
	return postID, nil
}
