// internal/app/features/calls/handler.go
package calls

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	calllogstore "github.com/dalemusser/stratastock/internal/app/store/calllog"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/paging"
	"github.com/dalemusser/stratastock/internal/app/system/timeouts"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// listPageSize is the number of calls per page.
const listPageSize = 50

// Handler serves the backend call log.
type Handler struct {
	Store  *calllogstore.Store
	Errors *errorsfeature.Handler
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

// NewHandler creates a call log handler.
func NewHandler(store *calllogstore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  store,
		Errors: errorsfeature.NewHandler(),
		ErrLog: errLog,
		Log:    logger,
	}
}

// parseFilter reads the list filter from the query string and returns
// it with the query values worth carrying into pager links.
func parseFilter(r *http.Request) (calllogstore.ListFilter, url.Values) {
	keep := url.Values{}
	get := func(name string) string {
		v := strings.TrimSpace(query.Get(r, name))
		if v != "" {
			keep.Set(name, v)
		}
		return v
	}

	filter := calllogstore.ListFilter{
		Method:     strings.ToUpper(get("method")),
		PathPrefix: get("path"),
		ErrorKind:  get("error_kind"),
		FailedOnly: get("failed") == "true",
		Search:     get("search"),
	}

	if start := get("start_date"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			filter.StartTime = &t
		}
	}
	if end := get("end_date"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}
	return filter, keep
}

// ServeList handles GET /calls.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	filter, keep := parseFilter(r)

	result, err := h.Store.List(ctx, filter, paging.ParsePage(r), listPageSize)
	if err != nil {
		h.ErrLog.Log(r, "failed to load backend calls", err)
		h.Errors.InternalError(w, r)
		return
	}

	entries := make([]EntryVM, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = toEntryVM(e)
	}

	data := ListVM{
		Entries: entries,
		Filter:  keep,
		Pager:   paging.Server(result.Page, result.PageSize, int(result.TotalCount), "/calls", keep),
		Methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		ErrorKinds: []string{
			string(backend.KindNetwork),
			string(backend.KindHTTP),
			string(backend.KindRejected),
			string(backend.KindNotFound),
			string(backend.KindParse),
		},
	}
	data.BaseVM = viewdata.NewBaseVM(r, "Backend calls", "/")

	templates.Render(w, r, "calls/list", data)
}

// ServeDetail handles GET /calls/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.Errors.NotFound(w, r)
		return
	}

	entry, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.Errors.NotFound(w, r)
			return
		}
		h.ErrLog.Log(r, "failed to load backend call", err)
		h.Errors.InternalError(w, r)
		return
	}

	data := DetailVM{Entry: toEntryVM(*entry)}
	data.BaseVM = viewdata.NewBaseVM(r, "Backend call", "/calls")

	templates.Render(w, r, "calls/detail", data)
}

// ServeStats handles GET /calls/stats. The window defaults to the last
// 24 hours.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)
	if s := query.Get(r, "start"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			start = t
		}
	}
	if e := query.Get(r, "end"); e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			end = t.Add(24*time.Hour - time.Nanosecond)
		}
	}

	counts, err := h.Store.CountByStatus(ctx, start, end)
	if err != nil {
		h.ErrLog.Log(r, "failed to load call counts", err)
		h.Errors.InternalError(w, r)
		return
	}
	avg, err := h.Store.AverageDuration(ctx, start, end)
	if err != nil {
		h.ErrLog.Log(r, "failed to load call durations", err)
		h.Errors.InternalError(w, r)
		return
	}

	data := StatsVM{
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		Breakdown:   breakdown(counts),
		AvgDuration: fmt.Sprintf("%.1fms", avg),
	}
	for _, b := range data.Breakdown {
		data.Total += b.Count
		if b.Status != "2xx" && b.Status != "3xx" {
			data.Failures += b.Count
		}
	}
	data.BaseVM = viewdata.NewBaseVM(r, "Backend call statistics", "/calls")

	templates.Render(w, r, "calls/stats", data)
}

// breakdown orders the status classes and computes their share.
func breakdown(counts map[string]int64) []StatusBreakdownVM {
	var total int64
	for _, c := range counts {
		total += c
	}

	order := []string{"2xx", "3xx", "4xx", "5xx", "failed"}
	out := make([]StatusBreakdownVM, 0, len(order))
	for _, status := range order {
		count := counts[status]
		pct := 0
		if total > 0 {
			pct = int((count * 100) / total)
		}
		out = append(out, StatusBreakdownVM{Status: status, Count: count, Percentage: pct})
	}
	return out
}
