// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged tables.
const PageSize = 10

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid; the value is clamped later
// against the real page count.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// TotalPages returns max(1, ceil(n/size)). A non-positive size uses PageSize.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Clamp forces page into [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// View is one page of an already fetched result set.
type View[T any] struct {
	Items      []T
	Page       int // 1-based, always within [1, TotalPages]
	PageSize   int
	TotalPages int
	Total      int // rows in the whole result set

	Start int // 1-based index of the first visible row (0 if no rows)
	End   int // 1-based index of the last visible row (0 if no rows)

	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// Slice returns page of data. page is clamped; data is not copied.
func Slice[T any](data []T, page, size int) View[T] {
	if size <= 0 {
		size = PageSize
	}
	total := TotalPages(len(data), size)
	page = Clamp(page, total)

	lo := (page - 1) * size
	hi := lo + size
	if hi > len(data) {
		hi = len(data)
	}
	if lo > hi {
		lo = hi
	}

	v := View[T]{
		Items:      data[lo:hi:hi],
		Page:       page,
		PageSize:   size,
		TotalPages: total,
		Total:      len(data),
		HasPrev:    page > 1,
		HasNext:    page < total,
		PrevPage:   Clamp(page-1, total),
		NextPage:   Clamp(page+1, total),
	}
	if hi > lo {
		v.Start = lo + 1
		v.End = hi
	}
	return v
}

// Range holds computed display range values for a server-paged list.
type Range struct {
	Start int // 1-based start index (0 if no results)
	End   int // 1-based end index (0 if no results)
}

// ComputeRange calculates the visible row range for a page of a list
// with total rows.
func ComputeRange(page, size, total int) Range {
	if size <= 0 {
		size = PageSize
	}
	page = Clamp(page, TotalPages(total, size))
	start := (page-1)*size + 1
	if total == 0 || start > total {
		return Range{}
	}
	end := start + size - 1
	if end > total {
		end = total
	}
	return Range{Start: start, End: end}
}
