package paging

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestTotalPages(t *testing.T) {
	for p := 1; p <= 12; p++ {
		for n := 0; n <= 60; n++ {
			want := (n + p - 1) / p
			if want < 1 {
				want = 1
			}
			if got := TotalPages(n, p); got != want {
				t.Fatalf("TotalPages(%d, %d) = %d, want %d", n, p, got, want)
			}
		}
	}
	if got := TotalPages(25, 0); got != 3 {
		t.Errorf("TotalPages(25, 0) = %d, want 3 (default size)", got)
	}
}

func TestSlice_PageLengthsSumToTotal(t *testing.T) {
	for p := 1; p <= 12; p++ {
		for n := 0; n <= 60; n++ {
			data := seq(n)
			total := TotalPages(n, p)
			sum := 0
			for page := 1; page <= total; page++ {
				sum += len(Slice(data, page, p).Items)
			}
			if sum != n {
				t.Fatalf("n=%d p=%d: page lengths sum to %d", n, p, sum)
			}
		}
	}
}

func TestSlice_Clamps(t *testing.T) {
	data := seq(25)
	tests := []struct {
		page int
		want int
	}{
		{-10, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
		{1 << 30, 3},
	}
	for _, tt := range tests {
		if got := Slice(data, tt.page, 10).Page; got != tt.want {
			t.Errorf("Slice(page=%d).Page = %d, want %d", tt.page, got, tt.want)
		}
	}
}

func TestSlice_TwentyFiveItems(t *testing.T) {
	data := seq(25)

	first := Slice(data, 1, 10)
	if diff := cmp.Diff(seq(10), first.Items); diff != "" {
		t.Errorf("page 1 mismatch (-want +got):\n%s", diff)
	}
	if first.TotalPages != 3 || first.HasPrev || !first.HasNext {
		t.Errorf("page 1 = %+v", first)
	}

	last := Slice(data, 3, 10)
	if diff := cmp.Diff([]int{21, 22, 23, 24, 25}, last.Items); diff != "" {
		t.Errorf("page 3 mismatch (-want +got):\n%s", diff)
	}
	if last.Start != 21 || last.End != 25 || last.HasNext || last.NextPage != 3 || last.PrevPage != 2 {
		t.Errorf("page 3 = %+v", last)
	}

	if got := Slice(data, 4, 10); got.Page != 3 || len(got.Items) != 5 {
		t.Errorf("page 4 should clamp to 3, got page %d with %d items", got.Page, len(got.Items))
	}
}

func TestSlice_Empty(t *testing.T) {
	v := Slice[int](nil, 5, 10)
	if v.Page != 1 || v.TotalPages != 1 || len(v.Items) != 0 || v.Start != 0 || v.End != 0 {
		t.Errorf("Slice(nil) = %+v", v)
	}
}

func TestSlice_ItemsCannotGrowIntoNextPage(t *testing.T) {
	data := seq(20)
	v := Slice(data, 1, 10)
	_ = append(v.Items, 99)
	if data[10] != 11 {
		t.Errorf("append on page items overwrote the backing result set")
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"page=3", 3},
		{"page=0", 1},
		{"page=-2", 1},
		{"page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/x?"+tt.query, nil)
		if got := ParsePage(r); got != tt.want {
			t.Errorf("ParsePage(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestComputeRange(t *testing.T) {
	tests := []struct {
		page, size, total int
		want              Range
	}{
		{1, 10, 0, Range{}},
		{1, 10, 25, Range{1, 10}},
		{3, 10, 25, Range{21, 25}},
		{9, 10, 25, Range{21, 25}},
		{1, 50, 7, Range{1, 7}},
	}
	for _, tt := range tests {
		if got := ComputeRange(tt.page, tt.size, tt.total); got != tt.want {
			t.Errorf("ComputeRange(%d, %d, %d) = %+v, want %+v", tt.page, tt.size, tt.total, got, tt.want)
		}
	}
}

func TestPageURL(t *testing.T) {
	q := url.Values{"start_date": {"2025-01-01"}, "page": {"3"}}
	got := PageURL("/forecast/date-range", q, 4)
	if got != "/forecast/date-range?page=4&start_date=2025-01-01" {
		t.Errorf("PageURL() = %q", got)
	}
	if q.Get("page") != "3" {
		t.Error("PageURL modified its input")
	}
}

func TestLinks(t *testing.T) {
	data := make([]int, 25)
	p := Links(Slice(data, 2, 10), "/inventory", url.Values{"low_stock": {"true"}})

	if p.Page != 2 || p.TotalPages != 3 || p.Start != 11 || p.End != 20 || p.Total != 25 {
		t.Errorf("pager = %+v", p)
	}
	if !p.HasPrev || !p.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v", p.HasPrev, p.HasNext)
	}
	if p.PrevURL != "/inventory?low_stock=true&page=1" || p.NextURL != "/inventory?low_stock=true&page=3" {
		t.Errorf("links = %q, %q", p.PrevURL, p.NextURL)
	}
}

func TestServer(t *testing.T) {
	p := Server(2, 50, 120, "/calls", url.Values{"method": {"POST"}})

	if p.Page != 2 || p.TotalPages != 3 || p.Start != 51 || p.End != 100 {
		t.Errorf("Server() = %+v", p)
	}
	if !p.HasPrev || !p.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v, want true/true", p.HasPrev, p.HasNext)
	}
	if p.NextURL != "/calls?method=POST&page=3" {
		t.Errorf("NextURL = %q", p.NextURL)
	}

	empty := Server(5, 50, 0, "/calls", nil)
	if empty.Page != 1 || empty.TotalPages != 1 || empty.Start != 0 || empty.HasNext {
		t.Errorf("Server(empty) = %+v", empty)
	}
}
