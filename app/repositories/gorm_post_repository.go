package repositories

import (
	"context"
	"errors"
	"fmt"

	"quill/app/models"
	"quill/app/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostRepository implements PostRepository on a relational database.
type GormPostRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	// The database assigns ids.
	post.ID = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return fmt.Errorf("create post: %w", err)
	}
	r.log.LogCreate(ctx, post.ID)
	return nil
}

func (r *GormPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err, "get post")
	}
	return &post, nil
}

func (r *GormPostRepository) GetWithComments(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		First(&post, id).Error
	if err != nil {
		return nil, translate(err, "get post with comments")
	}
	post.LinkComments()
	return &post, nil
}

func (r *GormPostRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return int(n), nil
}

func (r *GormPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Delete removes the comments of the post, then the post, in one transaction.
func (r *GormPostRepository) Delete(ctx context.Context, id int) error {
	var cascaded int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, id).Error; err != nil {
			return err
		}

		res := tx.Where("post_id = ?", id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		cascaded = res.RowsAffected

		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		err = translate(err, "delete post")
		if !errors.Is(err, ErrNotFound) {
			r.log.LogError(ctx, err, "delete")
		}
		return err
	}
	r.log.LogDelete(ctx, id, int(cascaded))
	return nil
}

// translate maps gorm's not-found error onto ErrNotFound and wraps the rest.
func translate(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
