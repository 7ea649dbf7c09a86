package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(n int) SliceSource[int] {
	out := make(SliceSource[int], n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	ctx := context.Background()
	src := numbers(15)

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantItems []int
	}{
		{name: "first page", page: 1, wantPage: 1, wantItems: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{name: "last partial page", page: 2, wantPage: 2, wantItems: []int{11, 12, 13, 14, 15}},
		{name: "past the end", page: 99, wantPage: 99, wantItems: []int{}},
		{name: "zero clamps to first", page: 0, wantPage: 1, wantItems: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{name: "negative clamps to first", page: -4, wantPage: 1, wantItems: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Paginate[int](ctx, src, tt.page, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, 15, page.TotalCount)
			assert.Equal(t, 10, page.PerPage)
			assert.Equal(t, tt.wantItems, page.Items)
		})
	}
}

func TestPaginateEmptySource(t *testing.T) {
	page, err := Paginate[int](context.Background(), SliceSource[int](nil), 1, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.TotalCount)
	assert.Zero(t, page.PageCount())
	assert.False(t, page.HasNext())
}

func TestPaginateRejectsNonPositiveSize(t *testing.T) {
	_, err := Paginate[int](context.Background(), numbers(3), 1, 0)
	assert.Error(t, err)
}

func TestPaginateDoesNotFetchPastEnd(t *testing.T) {
	fetched := false
	src := Funcs[int]{
		CountFunc: func(context.Context) (int, error) { return 3, nil },
		FetchFunc: func(context.Context, int, int) ([]int, error) {
			fetched = true
			return nil, nil
		},
	}

	page, err := Paginate[int](context.Background(), src, 1_000_000_000, 5)
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalCount)
}

func TestPaginatePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Paginate[int](context.Background(), Funcs[int]{
		CountFunc: func(context.Context) (int, error) { return 0, boom },
	}, 1, 5)
	assert.ErrorIs(t, err, boom)

	_, err = Paginate[int](context.Background(), Funcs[int]{
		CountFunc: func(context.Context) (int, error) { return 10, nil },
		FetchFunc: func(context.Context, int, int) ([]int, error) { return nil, boom },
	}, 1, 5)
	assert.ErrorIs(t, err, boom)
}

func TestPageLinks(t *testing.T) {
	page, err := Paginate[int](context.Background(), numbers(12), 2, 5)
	require.NoError(t, err)

	assert.Equal(t, 3, page.PageCount())
	assert.True(t, page.HasPrevious())
	assert.True(t, page.HasNext())
	assert.Equal(t, 1, page.PreviousPage())
	assert.Equal(t, 3, page.NextPage())
	assert.Equal(t, []int{1, 2, 3}, page.Pages())

	last, err := Paginate[int](context.Background(), numbers(12), 3, 5)
	require.NoError(t, err)
	assert.False(t, last.HasNext())
	assert.Equal(t, []int{11, 12}, last.Items)

	past, err := Paginate[int](context.Background(), numbers(12), 99, 5)
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.True(t, past.HasPrevious())
	assert.False(t, past.HasNext())
	assert.Equal(t, 3, past.PreviousPage())
}
