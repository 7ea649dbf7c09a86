package repositories

import (
	"context"
	"errors"
	"fmt"

	"quill/app/models"
	"quill/app/observability"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	log *observability.RepoLogger
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}

		// Comments are stored under their own keys.
		stored := *post
		stored.ID = id
		stored.Comments = nil
		data, err := marshalEntity(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(postKey(id), data); err != nil {
			return err
		}
		post.ID = id
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return fmt.Errorf("create post: %w", err)
	}
	r.log.LogCreate(ctx, post.ID)
	return nil
}

// GetByID retrieves a post by ID without its comments
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = readPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetWithComments retrieves a post and its comments in a single read transaction
func (r *BadgerPostRepository) GetWithComments(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = readPost(txn, id)
		if err != nil {
			return err
		}

		comments, err := readComments(txn, id)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if err := post.AddComment(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Count returns the number of stored posts
func (r *BadgerPostRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// List retrieves a paginated list of posts in id order
func (r *BadgerPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		// Skip offset items
		count := 0
		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if count < offset {
				count++
				continue
			}
			if count >= offset+limit {
				break
			}

			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
			count++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Delete deletes a post and, in the same transaction, every comment that
// belongs to it
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cascaded := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		comments, err := readComments(txn, id)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if c.PostID != id {
				continue
			}
			if err := txn.Delete(commentKey(id, c.ID)); err != nil {
				return err
			}
			if err := txn.Delete(commentIndexKey(c.ID)); err != nil {
				return err
			}
			cascaded++
		}

		return txn.Delete(postKey(id))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		r.log.LogError(ctx, err, "delete")
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	r.log.LogDelete(ctx, id, cascaded)
	return nil
}

func readPost(txn *badger.Txn, id int) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

// readComments returns the comments of a post in id order.
func readComments(txn *badger.Txn, postID int) ([]*models.Comment, error) {
	var comments []*models.Comment

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := commentPrefix(postID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var comment models.Comment
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal comment: %w", err)
		}
		comments = append(comments, &comment)
	}
	return comments, nil
}
