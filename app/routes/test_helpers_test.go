package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quill/app/database"
	"quill/app/models"
	"quill/app/observability"
	"quill/app/services"
	"quill/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type testApp struct {
	router  *mux.Router
	store   *database.Store
	metrics *observability.Metrics
}

func setupTestRouter(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenBadger("")
	require.NoError(t, err)
	store := database.NewBadgerStore(db)
	t.Cleanup(func() { store.Close() })

	opts := services.DefaultOptions()
	opts.Clock = models.Clock{Now: func() time.Time { return testNow }, Offset: 2 * time.Hour}

	metrics := observability.NewMetrics()
	router := SetupRoutes(Dependencies{
		Posts:     store.Posts,
		Comments:  store.Comments,
		Options:   opts,
		Metrics:   metrics,
		Templates: views.MustLoad(),
		Health:    store.Ping,
	})
	return &testApp{router: router, store: store, metrics: metrics}
}

func (a *testApp) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) seedPost(t *testing.T, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       title,
		Content:     "Content of " + title,
		Description: "Description of " + title,
		Author:      "Ann",
		Email:       "ann@example.com",
		CreatedAt:   testNow,
	}
	require.NoError(t, a.store.Posts.Create(context.Background(), post))
	return post
}

func (a *testApp) seedComment(t *testing.T, postID int, content string, at time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: postID, Content: content, Author: "Bob", Email: "bob@example.com", CreatedAt: at}
	require.NoError(t, a.store.Comments.Create(context.Background(), comment))
	return comment
}
