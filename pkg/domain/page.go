package domain

import "fmt"

// Default pagination values applied when a caller passes zero or negative values.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Page is one page of a paginated list response.
type Page[T any] struct {
	Records    []T `json:"records"`
	Total      int `json:"total"`
	Size       int `json:"size"`
	Current    int `json:"current"`
	Pages      int `json:"pages"`
	TotalPages int `json:"totalPages,omitempty"` // some deployments send this instead of pages
}

// TotalPageCount returns pages, falling back to totalPages.
func (p Page[T]) TotalPageCount() int {
	if p.Pages > 0 {
		return p.Pages
	}
	return p.TotalPages
}

// HasNext reports whether a page after Current exists.
func (p Page[T]) HasNext() bool {
	return p.Current < p.TotalPageCount()
}

// HasPrev reports whether a page before Current exists.
func (p Page[T]) HasPrev() bool {
	return p.Current > 1
}

// Validate checks that the page holds no more records than its size.
func (p Page[T]) Validate() error {
	if p.Size > 0 && len(p.Records) > p.Size {
		return fmt.Errorf("page holds %d records, size is %d", len(p.Records), p.Size)
	}
	return nil
}

// NormalizePaging applies the default page and size to non-positive values.
func NormalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return page, size
}
