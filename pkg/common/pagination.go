package common

import (
	"math"
	"net/http"
	"strconv"

	apperrors "socialhub/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// DefaultPaginationParams returns default pagination parameters
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// ExtractPaginationParams reads page and page_size (or limit) from the query
// string. Absent values take the defaults and page_size is capped at
// maxPageSize. A value that is not an integer is an InvalidArgument;
// non-positive integers are passed through so the service can reject them.
func ExtractPaginationParams(r *http.Request, maxPageSize int) (PaginationParams, error) {
	params := DefaultPaginationParams()
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	query := r.URL.Query()

	if page := query.Get("page"); page != "" {
		p, err := strconv.Atoi(page)
		if err != nil {
			return params, malformedPagination("page", page)
		}
		params.Page = p
	}

	pageSize := query.Get("page_size")
	if pageSize == "" {
		pageSize = query.Get("limit")
	}
	if pageSize != "" {
		ps, err := strconv.Atoi(pageSize)
		if err != nil {
			return params, malformedPagination("page_size", pageSize)
		}
		if ps > maxPageSize {
			ps = maxPageSize
		}
		params.PageSize = ps
	}

	return params, nil
}

func malformedPagination(field, value string) error {
	return apperrors.NewInvalidArgumentError(field+" must be an integer").
		WithCode(apperrors.CodeInvalidPagination).
		WithDetails(map[string]interface{}{field: value})
}

// Validate rejects non-positive page numbers and sizes.
func (p PaginationParams) Validate() error {
	if p.Page <= 0 || p.PageSize <= 0 {
		return apperrors.NewInvalidArgumentError("page and page size must be positive integers").
			WithCode(apperrors.CodeInvalidPagination).
			WithDetails(map[string]interface{}{"page": p.Page, "page_size": p.PageSize})
	}
	return nil
}

// CalculateOffset calculates the offset of the first item on the page. It
// saturates at math.MaxInt instead of overflowing for huge page numbers.
func (p PaginationParams) CalculateOffset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}

// Page is one page of an ordered result set plus its position metadata.
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// Paginate slices an already ordered result set. The caller validates params.
func Paginate[T any](items []T, params PaginationParams) *Page[T] {
	total := len(items)
	start := params.CalculateOffset()
	if start > total {
		start = total
	}
	end := total
	if params.PageSize > 0 && params.PageSize < total-start {
		end = start + params.PageSize
	}

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return &Page[T]{
		Items:       pageItems,
		TotalCount:  total,
		TotalPages:  CalculateTotalPages(total, params.PageSize),
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
	}
}

// EmptyPage returns a page with no items for the requested position.
func EmptyPage[T any](params PaginationParams) *Page[T] {
	return &Page[T]{
		Items:       []T{},
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
	}
}

// Info returns response metadata for the page.
func (p *Page[T]) Info() *PaginationInfo {
	return &PaginationInfo{
		Page:       p.CurrentPage,
		PageSize:   p.PageSize,
		Total:      p.TotalCount,
		TotalPages: p.TotalPages,
		HasNext:    p.CurrentPage < p.TotalPages,
		HasPrev:    p.CurrentPage > 1,
	}
}
