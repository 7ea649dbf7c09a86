// Package mock holds in-memory repositories for service and controller tests.
package mock

import (
	"context"
	"sort"
	"sync"

	"quill/app/models"
	"quill/app/repositories"
)

type store struct {
	mutex         sync.RWMutex
	posts         map[int]*models.Post
	comments      map[int]*models.Comment
	nextPostID    int
	nextCommentID int
	// Err, when set, is returned by every operation.
	err error
}

// PostRepository is an in-memory repositories.PostRepository.
type PostRepository struct {
	*store
}

// CommentRepository is an in-memory repositories.CommentRepository.
type CommentRepository struct {
	*store
}

// NewRepositories returns post and comment repositories sharing one store.
func NewRepositories() (*PostRepository, *CommentRepository) {
	s := &store{}
	s.reset()
	return &PostRepository{s}, &CommentRepository{s}
}

func (s *store) reset() {
	s.posts = make(map[int]*models.Post)
	s.comments = make(map[int]*models.Comment)
	s.nextPostID = 1
	s.nextCommentID = 1
}

// Clear drops every post and comment and restarts the id sequences.
func (s *store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reset()
}

// FailWith makes every following call return err. A nil err restores normal behaviour.
func (s *store) FailWith(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.err = err
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Comments = nil
	return &cp
}

func copyComment(c *models.Comment) *models.Comment {
	cp := *c
	cp.Post = nil
	return &cp
}

// PostRepository implementation

func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}

	post.ID = m.nextPostID
	m.nextPostID++
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyPost(post), nil
}

func (m *PostRepository) GetWithComments(_ context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	stored, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}

	post := copyPost(stored)
	for _, c := range m.commentsOf(id) {
		_ = post.AddComment(c)
	}
	return post, nil
}

func (m *PostRepository) Count(context.Context) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.posts), nil
}

func (m *PostRepository) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	posts := []*models.Post{}
	count := 0
	for id := 1; id < m.nextPostID; id++ {
		if post, exists := m.posts[id]; exists {
			if count >= offset && len(posts) < limit {
				posts = append(posts, copyPost(post))
			}
			count++
		}
	}
	return posts, nil
}

func (m *PostRepository) Delete(_ context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	delete(m.posts, id)
	return nil
}

// commentsOf returns copies of the comments of a post in id order. Callers hold the lock.
func (s *store) commentsOf(postID int) []*models.Comment {
	var out []*models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, copyComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CommentRepository implementation

func (m *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}

	if _, exists := m.posts[comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	comment.ID = m.nextCommentID
	m.nextCommentID++
	m.comments[comment.ID] = copyComment(comment)
	return nil
}

func (m *CommentRepository) GetByID(_ context.Context, id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyComment(comment), nil
}

func (m *CommentRepository) ListByPost(_ context.Context, postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	comments := m.commentsOf(postID)
	if comments == nil {
		comments = []*models.Comment{}
	}
	repositories.SortNewestFirst(comments)
	return comments, nil
}

func (m *CommentRepository) Delete(_ context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}
