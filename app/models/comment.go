package models

// NewComment returns an empty comment draft stamped by clock.
func NewComment(clock Clock) *Comment {
	return &Comment{CreatedAt: clock.Stamp()}
}

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	return validateStruct(c)
}

// Stamp sets the creation time from clock unless one is already set.
func (c *Comment) Stamp(clock Clock) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = clock.Stamp()
	}
}

// SetPost attaches the comment to post, keeping both sides consistent. A nil
// post detaches it from its current post.
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		if c.Post != nil {
			c.Post.RemoveComment(c)
		}
		c.Post = nil
		c.PostID = 0
		return nil
	}
	if c.Post != nil && c.Post != post {
		previous := c.Post
		c.Post = nil
		previous.RemoveComment(c)
	}
	return post.AddComment(c)
}
