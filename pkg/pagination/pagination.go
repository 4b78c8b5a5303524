// Package pagination reads limit/offset query parameters and wraps list
// results in a page envelope.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a requested window into a list.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads ?limit= and ?offset=. Missing, malformed and
// out-of-range values are clamped rather than rejected.
func FromContext(c echo.Context) Params {
	return Params{
		Limit:  clamp(c.QueryParam("limit"), DefaultLimit, 1, MaxLimit),
		Offset: clamp(c.QueryParam("offset"), 0, 0, -1),
	}
}

// clamp parses s, returning def when it is not a number below lo. A
// negative hi means unbounded.
func clamp(s string, def, lo, hi int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < lo {
		return def
	}
	if hi >= 0 && n > hi {
		return hi
	}
	return n
}

// Page is one window of a list together with the total row count.
type Page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewResponse builds a Page. A nil slice is rendered as [].
func NewResponse[T any](data []T, total int, p Params) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:    data,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+len(data) < total,
	}
}
