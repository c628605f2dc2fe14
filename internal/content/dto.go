package content

import (
	"github.com/vitalis-clinic/backoffice/internal/transport"
)

// PageQuery carries one list request: which page, how many per page, and
// the search query.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

// Normalize applies the fixed page size and floors the page at 1.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = transport.PageSize
	}
	return q
}

// Offset converts the page number to a row offset.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PagedResult is one page of records plus collection totals. The element
// type is unconstrained so non-content listings can reuse the same paged
// response shape.
type PagedResult[T any] struct {
	Data       []T   `json:"data"`
	TotalPages int   `json:"totalPages"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"-"`
}
