package models

import (
	"errors"
)

// NewPost returns an empty post draft stamped by clock.
func NewPost(clock Clock) *Post {
	return &Post{CreatedAt: clock.Stamp()}
}

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return validateStruct(p)
}

// Stamp sets the creation time from clock unless one is already set.
func (p *Post) Stamp(clock Clock) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = clock.Stamp()
	}
}

// AddComment appends comment to the post and points its back-reference here.
// Adding a comment that is already attached is a no-op.
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	if !p.HasComment(comment) {
		p.Comments = append(p.Comments, comment)
	}
	comment.Post = p
	comment.PostID = p.ID
	return nil
}

// RemoveComment detaches comment from the post. The back-reference is cleared
// unless the comment has already been repointed to another post. It reports
// whether the comment was attached.
func (p *Post) RemoveComment(comment *Comment) bool {
	for i, c := range p.Comments {
		if c != comment {
			continue
		}
		p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
		if comment.Post == p {
			comment.Post = nil
			comment.PostID = 0
		}
		return true
	}
	return false
}

// HasComment reports whether comment is attached to the post.
func (p *Post) HasComment(comment *Comment) bool {
	for _, c := range p.Comments {
		if c == comment {
			return true
		}
	}
	return false
}

// CommentByID returns the attached comment with the given id.
func (p *Post) CommentByID(id int) (*Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// CommentCount is the size of the loaded comment collection.
func (p *Post) CommentCount() int {
	return len(p.Comments)
}

// LinkComments re-establishes back-references after the comment collection
// was filled by a store.
func (p *Post) LinkComments() {
	loaded := p.Comments
	p.Comments = make([]*Comment, 0, len(loaded))
	for _, c := range loaded {
		_ = p.AddComment(c)
	}
}
