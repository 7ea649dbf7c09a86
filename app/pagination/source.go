package pagination

import "context"

// SliceSource serves an already materialised slice.
type SliceSource[T any] []T

// Count implements Source.
func (s SliceSource[T]) Count(context.Context) (int, error) {
	return len(s), nil
}

// Fetch implements Source.
func (s SliceSource[T]) Fetch(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	out := make([]T, end-offset)
	copy(out, s[offset:end])
	return out, nil
}

// Funcs adapts a pair of store calls to a Source.
type Funcs[T any] struct {
	CountFunc func(ctx context.Context) (int, error)
	FetchFunc func(ctx context.Context, offset, limit int) ([]T, error)
}

// Count implements Source.
func (f Funcs[T]) Count(ctx context.Context) (int, error) {
	return f.CountFunc(ctx)
}

// Fetch implements Source.
func (f Funcs[T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	return f.FetchFunc(ctx, offset, limit)
}
