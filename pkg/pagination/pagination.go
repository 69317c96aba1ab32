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

type Params struct {
	Limit  int
	Offset int
}

// FromContext reads ?limit= and ?offset=. Missing, malformed or non-positive
// limits use DefaultLimit, limits above MaxLimit are capped and negative
// offsets become 0.
func FromContext(c echo.Context) Params {
	p := Params{Limit: DefaultLimit}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	if n, err := strconv.Atoi(c.QueryParam("offset")); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}

// More reports whether rows remain past this page.
func (p Params) More(total int) bool { return p.Offset+p.Limit < total }

// Next returns the parameters of the following page.
func (p Params) Next() Params { return Params{Limit: p.Limit, Offset: p.Offset + p.Limit} }

// Page is the list envelope. Data is never null.
type Page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

func NewPage[T any](data []T, total int, p Params) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Total: total, Limit: p.Limit, Offset: p.Offset, HasMore: p.More(total)}
}
