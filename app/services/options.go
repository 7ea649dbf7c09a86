package services

import (
	"quill/app/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Options configures page sizes, timestamps and counters shared by the services.
type Options struct {
	PostsPerPage    int
	CommentsPerPage int
	Clock           models.Clock

	// Counters are optional.
	PostsCreated    prometheus.Counter
	CommentsCreated prometheus.Counter
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		PostsPerPage:    10,
		CommentsPerPage: 5,
		Clock:           models.NewClock(models.DefaultCreatedAtOffset),
	}
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}
