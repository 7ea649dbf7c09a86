// Package routes wires controllers, middleware and metrics into a router.
package routes

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"quill/app/controllers"
	"quill/app/middleware"
	"quill/app/observability"
	"quill/app/repositories"
	"quill/app/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies is everything the router needs from the process.
type Dependencies struct {
	Posts     repositories.PostRepository
	Comments  repositories.CommentRepository
	Options   services.Options
	Metrics   *observability.Metrics
	Templates map[string]*template.Template
	// Health reports store liveness for /healthz; nil means always healthy.
	Health func() error
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics()
	}
	opts := deps.Options
	if opts.PostsCreated == nil {
		opts.PostsCreated = deps.Metrics.PostsCreated
	}
	if opts.CommentsCreated == nil {
		opts.CommentsCreated = deps.Metrics.CommentsCreated
	}

	postService := services.NewPostService(deps.Posts, deps.Comments, opts)
	commentService := services.NewCommentService(deps.Comments, deps.Posts, opts)
	postController := controllers.NewPostController(postService, commentService, deps.Templates)
	commentController := controllers.NewCommentController(postController)

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics(deps.Metrics))

	router.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	router.HandleFunc("/healthz", healthz(deps.Health)).Methods("GET")

	// Web routes
	router.HandleFunc("/", postController.Index).Methods("GET")
	blog := router.PathPrefix("/blog").Subrouter()
	blog.HandleFunc("", postController.Index).Methods("GET")
	blog.HandleFunc("/new", postController.New).Methods("GET")
	blog.HandleFunc("/new", postController.Create).Methods("POST")
	blog.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	blog.HandleFunc("/{id:[0-9]+}", commentController.Create).Methods("POST")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}", postController.Delete).Methods("DELETE")
	posts.HandleFunc("/{id:[0-9]+}/comments", commentController.Index).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}/comments", commentController.Create).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}/comments/{commentId:[0-9]+}", commentController.Delete).Methods("DELETE")

	return router
}

func healthz(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				http.Error(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	}
}

// StartServer listens on addr and serves router until ctx is cancelled.
func StartServer(ctx context.Context, addr string, router http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, router)
}

// Serve serves router on ln and shuts down gracefully once ctx is done.
func Serve(ctx context.Context, ln net.Listener, router http.Handler) error {
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	observability.Logger.Info("Starting blog service", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
