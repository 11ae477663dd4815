package common

import (
	"math"
	"net/http/httptest"
	"testing"

	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateSecondPartialPage(t *testing.T) {
	items := make([]int, 15)
	for i := range items {
		items[i] = i
	}

	page := Paginate(items, PaginationParams{Page: 2, PageSize: 10})

	assert.Equal(t, []int{10, 11, 12, 13, 14}, page.Items)
	assert.Equal(t, 15, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 10, page.PageSize)
}

func TestPaginatePastEnd(t *testing.T) {
	page := Paginate([]string{"a", "b"}, PaginationParams{Page: 5, PageSize: 10})

	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		params PaginationParams
		ok     bool
	}{
		{"defaults", DefaultPaginationParams(), true},
		{"zero page", PaginationParams{Page: 0, PageSize: 10}, false},
		{"negative size", PaginationParams{Page: 1, PageSize: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsInvalidArgument(err))
		})
	}
}

func TestPaginateHugePageNumber(t *testing.T) {
	items := []int{1, 2, 3}

	for _, page := range []int{math.MaxInt/100 + 2, math.MaxInt} {
		result := Paginate(items, PaginationParams{Page: page, PageSize: 100})
		assert.Empty(t, result.Items)
		assert.Equal(t, 3, result.TotalCount)
		assert.Equal(t, page, result.CurrentPage)
	}
}

func TestCalculateOffsetSaturates(t *testing.T) {
	assert.Equal(t, 0, PaginationParams{Page: 1, PageSize: 10}.CalculateOffset())
	assert.Equal(t, 20, PaginationParams{Page: 3, PageSize: 10}.CalculateOffset())
	assert.Equal(t, math.MaxInt, PaginationParams{Page: math.MaxInt, PageSize: 10}.CalculateOffset())
}

func TestExtractPaginationParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/feed?page=3&page_size=500", nil)
	params, err := ExtractPaginationParams(req, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 50, params.PageSize)

	req = httptest.NewRequest("GET", "/feed?page=-1&limit=5", nil)
	params, err = ExtractPaginationParams(req, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, params.Page)
	assert.Equal(t, 5, params.PageSize)

	req = httptest.NewRequest("GET", "/feed", nil)
	params, err = ExtractPaginationParams(req, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPaginationParams(), params)
}

func TestExtractPaginationParamsMalformed(t *testing.T) {
	for _, query := range []string{"page=abc", "page_size=ten", "limit=1.5", "page=99999999999999999999"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/feed?"+query, nil)
			_, err := ExtractPaginationParams(req, 0)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidArgument(err))
		})
	}
}

func TestPageInfo(t *testing.T) {
	page := Paginate([]int{1, 2, 3}, PaginationParams{Page: 1, PageSize: 2})
	info := page.Info()

	assert.True(t, info.HasNext)
	assert.False(t, info.HasPrev)
	assert.Equal(t, 3, info.Total)
}
