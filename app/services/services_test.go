package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quill/app/models"
	"quill/app/repositories"
	"quill/app/repositories/mock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	posts    *PostService
	comments *CommentService
	postRepo *mock.PostRepository
	opts     Options
}

func newFixture() *fixture {
	postRepo, commentRepo := mock.NewRepositories()
	opts := DefaultOptions()
	opts.Clock = models.Clock{Now: func() time.Time { return fixedNow }, Offset: models.DefaultCreatedAtOffset}
	opts.PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{Name: "posts_created"})
	opts.CommentsCreated = prometheus.NewCounter(prometheus.CounterOpts{Name: "comments_created"})
	return &fixture{
		posts:    NewPostService(postRepo, commentRepo, opts),
		comments: NewCommentService(commentRepo, postRepo, opts),
		postRepo: postRepo,
		opts:     opts,
	}
}

func validPost(title string) *models.Post {
	return &models.Post{
		Title:       title,
		Content:     "Some content",
		Description: "A description",
		Author:      "Ann",
		Email:       "ann@example.com",
	}
}

func validComment(content string) *models.Comment {
	return &models.Comment{Content: content, Author: "Bob", Email: "bob@example.com"}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("valid draft is retrievable with zero comments", func(t *testing.T) {
		f := newFixture()
		post, err := f.posts.CreatePost(ctx, validPost("Hello"))
		require.NoError(t, err)
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, fixedNow.Add(2*time.Hour), post.CreatedAt)

		got, err := f.posts.GetPostWithComments(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", got.Title)
		assert.Zero(t, got.CommentCount())
		assert.Equal(t, 1.0, testutil.ToFloat64(f.opts.PostsCreated))
	})

	t.Run("missing title persists nothing", func(t *testing.T) {
		f := newFixture()
		draft := validPost("")

		_, err := f.posts.CreatePost(ctx, draft)
		verrs, ok := models.AsValidationErrors(err)
		require.True(t, ok)
		assert.True(t, verrs.Has("title"))
		assert.Equal(t, "This value should not be blank.", verrs.Fields()["title"])

		n, err := f.postRepo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, testutil.ToFloat64(f.opts.PostsCreated))
	})

	t.Run("draft timestamp is kept", func(t *testing.T) {
		f := newFixture()
		draft := f.posts.NewDraft()
		draft.Title, draft.Content, draft.Description = "t", "c", "d"
		draft.Author, draft.Email = "a", "a@example.com"

		post, err := f.posts.CreatePost(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, fixedNow.Add(2*time.Hour), post.CreatedAt)
	})

	t.Run("store error", func(t *testing.T) {
		f := newFixture()
		boom := errors.New("disk full")
		f.postRepo.FailWith(boom)

		_, err := f.posts.CreatePost(ctx, validPost("x"))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil draft", func(t *testing.T) {
		f := newFixture()
		_, err := f.posts.CreatePost(ctx, nil)
		assert.EqualError(t, err, "post cannot be nil")

		n, err := f.postRepo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for i := 1; i <= 15; i++ {
		_, err := f.posts.CreatePost(ctx, validPost(fmt.Sprintf("post %d", i)))
		require.NoError(t, err)
	}

	tests := []struct {
		page      int
		wantPage  int
		wantItems int
		firstID   int
	}{
		{page: 1, wantPage: 1, wantItems: 10, firstID: 1},
		{page: 2, wantPage: 2, wantItems: 5, firstID: 11},
		{page: 99, wantPage: 99, wantItems: 0},
		{page: 0, wantPage: 1, wantItems: 10, firstID: 1},
		{page: -3, wantPage: 1, wantItems: 10, firstID: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			result, err := f.posts.ListPosts(ctx, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, result.Page)
			assert.Equal(t, 15, result.TotalCount)
			assert.Equal(t, 10, result.PerPage)
			assert.Len(t, result.Items, tt.wantItems)
			if tt.wantItems > 0 {
				assert.Equal(t, tt.firstID, result.Items[0].ID)
			}
		})
	}
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("hello world scenario", func(t *testing.T) {
		f := newFixture()
		post, err := f.posts.CreatePost(ctx, validPost("Hello"))
		require.NoError(t, err)
		require.Equal(t, 1, post.ID)

		loaded, err := f.posts.GetPostWithComments(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, loaded.CommentCount())

		comment, err := f.comments.CreateComment(ctx, 1, validComment("World"))
		require.NoError(t, err)
		assert.Equal(t, 1, comment.PostID)

		loaded, err = f.posts.GetPostWithComments(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, 1, loaded.CommentCount())
		assert.Equal(t, "World", loaded.Comments[0].Content)
		assert.Same(t, loaded, loaded.Comments[0].Post)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.opts.CommentsCreated))
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture()
		_, err := f.comments.CreateComment(ctx, 999, validComment("lost"))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, isValidation := models.AsValidationErrors(err)
		assert.False(t, isValidation)

		list, err := f.comments.commentRepo.ListByPost(ctx, 999)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("invalid comment", func(t *testing.T) {
		f := newFixture()
		_, err := f.posts.CreatePost(ctx, validPost("p"))
		require.NoError(t, err)

		draft := validComment("  ")
		draft.Email = "not-an-email"
		_, err = f.comments.CreateComment(ctx, 1, draft)
		verrs, ok := models.AsValidationErrors(err)
		require.True(t, ok)
		assert.Equal(t, map[string]string{
			"content": "This value should not be blank.",
			"email":   "This value is not a valid email address.",
		}, verrs.Fields())

		loaded, err := f.posts.GetPostWithComments(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, loaded.CommentCount())
	})

	t.Run("nil draft", func(t *testing.T) {
		f := newFixture()
		_, err := f.comments.CreateComment(ctx, 1, nil)
		assert.Error(t, err)
	})
}

func TestListCommentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.posts.CreatePost(ctx, validPost("p"))
	require.NoError(t, err)

	for i, content := range []string{"T1", "T2", "T3"} {
		c := validComment(content)
		c.CreatedAt = fixedNow.Add(time.Duration(i) * time.Minute)
		_, err := f.comments.CreateComment(ctx, 1, c)
		require.NoError(t, err)
	}

	list, err := f.comments.ListCommentsNewestFirst(ctx, 1)
	require.NoError(t, err)
	var contents []string
	for _, c := range list {
		contents = append(contents, c.Content)
	}
	assert.Equal(t, []string{"T3", "T2", "T1"}, contents)

	_, err = f.comments.ListCommentsNewestFirst(ctx, 2)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestListComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.posts.CreatePost(ctx, validPost("p"))
	require.NoError(t, err)
	for i := 1; i <= 7; i++ {
		_, err := f.comments.CreateComment(ctx, 1, validComment(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)
	}

	post, err := f.posts.GetPostWithComments(ctx, 1)
	require.NoError(t, err)

	first, err := f.comments.ListComments(ctx, post, 1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 5)
	assert.Equal(t, "c1", first.Items[0].Content)
	assert.True(t, first.HasNext())

	second, err := f.comments.ListComments(ctx, post, 2)
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)
	assert.Equal(t, 7, second.TotalCount)
	assert.False(t, second.HasNext())
}

func TestRemoveComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.posts.CreatePost(ctx, validPost("p"))
	require.NoError(t, err)
	created, err := f.comments.CreateComment(ctx, 1, validComment("bye"))
	require.NoError(t, err)

	post, err := f.posts.GetPostWithComments(ctx, 1)
	require.NoError(t, err)
	comment, ok := post.CommentByID(created.ID)
	require.True(t, ok)

	require.NoError(t, f.posts.RemoveComment(ctx, post, created.ID))
	assert.Nil(t, comment.Post)
	assert.False(t, post.HasComment(comment))

	reloaded, err := f.posts.GetPostWithComments(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, reloaded.CommentCount())

	assert.ErrorIs(t, f.posts.RemoveComment(ctx, post, created.ID), repositories.ErrNotFound)
}

func TestRemoveCommentStoreFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.posts.CreatePost(ctx, validPost("p"))
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, 1, validComment("stay"))
	require.NoError(t, err)

	post, err := f.posts.GetPostWithComments(ctx, 1)
	require.NoError(t, err)

	boom := errors.New("locked")
	f.postRepo.FailWith(boom)
	assert.ErrorIs(t, f.posts.RemoveComment(ctx, post, 1), boom)
	assert.Equal(t, 1, post.CommentCount())
	assert.Same(t, post, post.Comments[0].Post)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.posts.CreatePost(ctx, validPost("p"))
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, 1, validComment("c"))
	require.NoError(t, err)

	require.NoError(t, f.posts.DeletePost(ctx, 1))

	_, err = f.posts.GetPostWithComments(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = f.comments.commentRepo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, f.posts.DeletePost(ctx, 1), repositories.ErrNotFound)
}
