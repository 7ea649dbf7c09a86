// Package pagination slices ordered item sources into fixed-size pages.
package pagination

import (
	"context"
	"fmt"
)

// Source is an ordered, countable collection of items.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one slice of a source plus what a template needs to render links.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
}

// Paginate returns page number page (1-based) of src. Pages below 1 are
// clamped to 1; pages past the end come back empty with the real total.
func Paginate[T any](ctx context.Context, src Source[T], page, perPage int) (Page[T], error) {
	if perPage < 1 {
		return Page[T]{}, fmt.Errorf("page size must be positive, got %d", perPage)
	}
	if page < 1 {
		page = 1
	}

	total, err := src.Count(ctx)
	if err != nil {
		return Page[T]{}, fmt.Errorf("count items: %w", err)
	}

	result := Page[T]{Items: []T{}, Page: page, PerPage: perPage, TotalCount: total}
	if page > pageCount(total, perPage) {
		return result, nil
	}

	items, err := src.Fetch(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return Page[T]{}, fmt.Errorf("fetch page %d: %w", page, err)
	}
	if items != nil {
		result.Items = items
	}
	return result, nil
}

// PageCount is the number of non-empty pages.
func (p Page[T]) PageCount() int {
	return pageCount(p.TotalCount, p.PerPage)
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// HasNext reports whether a non-empty page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Page < p.PageCount()
}

// PreviousPage is the number of the preceding page, never below 1. Past the
// end it is the last non-empty page.
func (p Page[T]) PreviousPage() int {
	if p.Page <= 1 {
		return 1
	}
	if last := p.PageCount(); p.Page > last && last > 0 {
		return last
	}
	return p.Page - 1
}

// NextPage is the number of the following page.
func (p Page[T]) NextPage() int {
	return p.Page + 1
}

// Pages lists every page number, for rendering numbered links.
func (p Page[T]) Pages() []int {
	n := p.PageCount()
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func pageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
