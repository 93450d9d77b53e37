package pagination

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/estate/pkg/query"
)

// Range is a half-open window [Start, End) over a sorted, filtered result set.
// It mirrors the _start/_end/_sort/_order convention of REST data providers.
type Range struct {
	Start int               `json:"start"`
	End   int               `json:"end"`
	Sort  []query.SortField `json:"sort,omitempty"`
}

// Normalize clamps the window to valid bounds: Start is never negative, an
// empty or inverted window takes the default size, and the size never exceeds
// MaxPageSize.
func (r *Range) Normalize(cfg Config) {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End <= r.Start {
		r.End = r.Start + cfg.DefaultPageSize
	}
	if r.End-r.Start > cfg.MaxPageSize {
		r.End = r.Start + cfg.MaxPageSize
	}
}

// Offset returns the number of rows to skip.
func (r Range) Offset() int {
	return r.Start
}

// Limit returns the maximum number of rows in the window.
func (r Range) Limit() int {
	return r.End - r.Start
}

// RangeFromQuery parses _start, _end, _sort, and _order from URL query values
// and normalizes the result.
func RangeFromQuery(values url.Values, cfg Config) Range {
	start, _ := strconv.Atoi(values.Get("_start"))
	end, _ := strconv.Atoi(values.Get("_end"))

	r := Range{
		Start: start,
		End:   end,
		Sort:  query.ParseSortFields(values.Get("_sort"), values.Get("_order")),
	}

	r.Normalize(cfg)
	return r
}

// Result holds one window of data and the size of the full filtered set.
type Result[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// NewResult creates a Result, substituting an empty slice for nil data.
func NewResult[T any](data []T, total int) Result[T] {
	if data == nil {
		data = []T{}
	}
	return Result[T]{Data: data, Total: total}
}
