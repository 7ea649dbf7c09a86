package repositories

import (
	"context"
	"errors"

	"quill/app/models"
	"quill/app/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommentRepository implements CommentRepository on a relational database.
type GormCommentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	if err != nil {
		err = translate(err, "create comment")
		if !errors.Is(err, ErrNotFound) {
			r.log.LogError(ctx, err, "create")
		}
		return err
	}
	r.log.LogCreate(ctx, comment.ID)
	return nil
}

func (r *GormCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err, "get comment")
	}
	return &comment, nil
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "list comments")
	}
	return comments, nil
}

func (r *GormCommentRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return translate(res.Error, "delete comment")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.LogDelete(ctx, id, 0)
	return nil
}
