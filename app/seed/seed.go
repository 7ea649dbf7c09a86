// Package seed fills a store with fake posts and comments for development.
package seed

import (
	"context"
	"fmt"
	"time"

	"quill/app/services"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much data Run creates.
type Options struct {
	Posts           int
	CommentsPerPost int
	// Seed makes the generated content reproducible; 0 uses the clock.
	Seed int64
}

// Result counts what Run created.
type Result struct {
	Posts    int
	Comments int
}

// Run creates opts.Posts posts, each with up to opts.CommentsPerPost comments.
func Run(ctx context.Context, posts *services.PostService, comments *services.CommentService, opts Options) (Result, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)

	var res Result
	for i := 0; i < opts.Posts; i++ {
		draft := posts.NewDraft()
		draft.Title = faker.Sentence(5)
		draft.Description = faker.Sentence(12)
		draft.Content = faker.Paragraph(3, 4, 12, "\n\n")
		draft.Author = faker.Name()
		draft.Email = faker.Email()

		post, err := posts.CreatePost(ctx, draft)
		if err != nil {
			return res, fmt.Errorf("seed post %d: %w", i+1, err)
		}
		res.Posts++

		n := opts.CommentsPerPost
		if n > 0 {
			n = faker.IntRange(0, n)
		}
		for j := 0; j < n; j++ {
			c := comments.NewDraft()
			c.Content = faker.Paragraph(1, 2, 10, " ")
			c.Author = faker.Name()
			c.Email = faker.Email()
			// Spread comments after the post so newest-first ordering is visible.
			c.CreatedAt = post.CreatedAt.Add(time.Duration(faker.IntRange(1, 72*60)) * time.Minute)

			if _, err := comments.CreateComment(ctx, post.ID, c); err != nil {
				return res, fmt.Errorf("seed comment for post %d: %w", post.ID, err)
			}
			res.Comments++
		}
	}
	return res, nil
}
