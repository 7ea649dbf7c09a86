package models

import "time"

// Post represents a blog post with comments.
type Post struct {
	ID          int        `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title" validate:"notblank,max=255"`
	Content     string     `gorm:"type:text;not null" json:"content" validate:"notblank"`
	Description string     `gorm:"type:text" json:"description" validate:"notblank,max=255"`
	Author      string     `gorm:"size:255;not null" json:"author" validate:"notblank,max=255"`
	Email       string     `gorm:"size:255;not null" json:"email" validate:"notblank,email"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	Comments    []*Comment `gorm:"foreignKey:PostID" json:"comments,omitempty" validate:"-"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"not null;index" json:"post_id" validate:"required,gt=0"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"notblank"`
	Author    string    `gorm:"size:255;not null" json:"author" validate:"notblank,max=255"`
	Email     string    `gorm:"size:255;not null" json:"email" validate:"notblank,email"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"-" validate:"-"`
}
