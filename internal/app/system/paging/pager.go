// internal/app/system/paging/pager.go
package paging

import (
	"net/url"
	"strconv"
)

// Pager is the non-generic part of a page, with links, for templates.
type Pager struct {
	Page       int
	TotalPages int
	Total      int
	Start      int
	End        int
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

// Links builds a Pager for v. The links point at path with q plus the
// adjacent page number, so filters and form fields survive navigation.
func Links[T any](v View[T], path string, q url.Values) Pager {
	return Pager{
		Page:       v.Page,
		TotalPages: v.TotalPages,
		Total:      v.Total,
		Start:      v.Start,
		End:        v.End,
		HasPrev:    v.HasPrev,
		HasNext:    v.HasNext,
		PrevURL:    PageURL(path, q, v.PrevPage),
		NextURL:    PageURL(path, q, v.NextPage),
	}
}

// PageURL returns path?q with page set to n. q is not modified.
func PageURL(path string, q url.Values, n int) string {
	out := url.Values{}
	for k, vs := range q {
		if k == "page" {
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	out.Set("page", strconv.Itoa(n))
	return path + "?" + out.Encode()
}

// Server builds a Pager for a list paged by the database, where only
// the current page and the total row count are known.
func Server(page, size, total int, path string, q url.Values) Pager {
	if size <= 0 {
		size = PageSize
	}
	pages := TotalPages(total, size)
	page = Clamp(page, pages)
	rng := ComputeRange(page, size, total)
	return Pager{
		Page:       page,
		TotalPages: pages,
		Total:      total,
		Start:      rng.Start,
		End:        rng.End,
		HasPrev:    page > 1,
		HasNext:    page < pages,
		PrevURL:    PageURL(path, q, Clamp(page-1, pages)),
		NextURL:    PageURL(path, q, Clamp(page+1, pages)),
	}
}
