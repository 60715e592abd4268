// internal/app/features/calls/types.go
package calls

import (
	"fmt"
	"net/url"

	calllogstore "github.com/dalemusser/stratastock/internal/app/store/calllog"
	"github.com/dalemusser/stratastock/internal/app/system/paging"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
)

// EntryVM is the view model for a single backend call.
type EntryVM struct {
	ID                 string
	RequestID          string
	OriginPath         string
	Method             string
	Host               string
	Path               string
	Query              string
	RequestBodySize    int64
	RequestBodyHash    string
	RequestBodyPreview string
	StatusCode         int
	ResponseSize       int64
	ErrorKind          string
	ErrorMessage       string
	Failed             bool
	StartedAt          string
	CompletedAt        string
	Duration           string
	StatusClass        string // CSS class for the status code
}

// ListVM is the view model for the call list.
type ListVM struct {
	viewdata.BaseVM
	Entries    []EntryVM
	Filter     url.Values
	Pager      paging.Pager
	Methods    []string
	ErrorKinds []string
}

// DetailVM is the view model for one call.
type DetailVM struct {
	viewdata.BaseVM
	Entry EntryVM
}

// StatusBreakdownVM is one status class with its count and share.
type StatusBreakdownVM struct {
	Status     string
	Count      int64
	Percentage int
}

// StatsVM is the view model for the call statistics page.
type StatsVM struct {
	viewdata.BaseVM
	StartDate   string
	EndDate     string
	Total       int64
	Failures    int64
	Breakdown   []StatusBreakdownVM
	AvgDuration string
}

func toEntryVM(e calllogstore.Entry) EntryVM {
	return EntryVM{
		ID:                 e.ID.Hex(),
		RequestID:          e.RequestID,
		OriginPath:         e.OriginPath,
		Method:             e.Method,
		Host:               e.Host,
		Path:               e.Path,
		Query:              e.Query,
		RequestBodySize:    e.RequestBodySize,
		RequestBodyHash:    e.RequestBodyHash,
		RequestBodyPreview: e.RequestBodyPreview,
		StatusCode:         e.StatusCode,
		ResponseSize:       e.ResponseSize,
		ErrorKind:          e.ErrorKind,
		ErrorMessage:       e.ErrorMessage,
		Failed:             e.Failed(),
		StartedAt:          e.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		CompletedAt:        e.CompletedAt.UTC().Format("2006-01-02 15:04:05"),
		Duration:           fmt.Sprintf("%.2fms", e.DurationMs),
		StatusClass:        statusClass(e.StatusCode),
	}
}

// statusClass returns a CSS class based on status code.
func statusClass(code int) string {
	switch {
	case code == 0:
		return "status-failed"
	case code >= 500:
		return "status-5xx"
	case code >= 400:
		return "status-4xx"
	case code >= 300:
		return "status-3xx"
	default:
		return "status-2xx"
	}
}
