// internal/app/system/backend/errors.go
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindNone     Kind = ""
	KindNetwork  Kind = "network"
	KindHTTP     Kind = "http"
	KindRejected Kind = "rejected" // 4xx other than 404: the backend refused the request
	KindParse    Kind = "parse"
	KindNotFound Kind = "not_found"
)

// ErrNotFound matches any HTTPError carrying a 404 status.
var ErrNotFound = errors.New("backend: not found")

// ErrResponseTooLarge is wrapped in the ParseError returned for a 2xx
// body over the client's size limit.
var ErrResponseTooLarge = errors.New("backend: response too large")

// NetworkError means the request could not be sent or the response
// could not be read.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Detail string // detail extracted from the response body, if any
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("backend: %s %s returned %d", e.Method, e.Path, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports 404 responses as ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ParseError is a 2xx response whose body is not the expected JSON shape.
type ParseError struct {
	Method string
	Path   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("backend: %s %s: unexpected response body: %v", e.Method, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindNone when err did not come
// from this package.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		netErr   *NetworkError
		httpErr  *HTTPError
		parseErr *ParseError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &httpErr):
		if httpErr.Status >= 400 && httpErr.Status < 500 {
			return KindRejected
		}
		return KindHTTP
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &netErr):
		return KindNetwork
	}
	return KindNone
}

// Message converts err into text suitable for showing to a user.
func Message(err error) string {
	if errors.Is(err, ErrResponseTooLarge) {
		return "The inventory service response is too large to show. Narrow the request and try again."
	}
	var httpErr *HTTPError
	switch KindOf(err) {
	case KindNotFound:
		return "The requested record was not found."
	case KindNetwork:
		return "Could not reach the inventory service. Please try again."
	case KindParse:
		return "The inventory service returned an unexpected response."
	case KindHTTP, KindRejected:
		errors.As(err, &httpErr)
		if httpErr.Detail != "" {
			return fmt.Sprintf("Request failed (%d): %s", httpErr.Status, httpErr.Detail)
		}
		return fmt.Sprintf("Request failed (%d %s).", httpErr.Status, http.StatusText(httpErr.Status))
	}
	if err == nil {
		return ""
	}
	return "Something went wrong. Please try again."
}

// detailFrom pulls a readable message out of an error body. The backend
// answers with {"detail": "..."} or, for rejected payloads, a list of
// {"loc": [...], "msg": "..."} entries.
func detailFrom(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err != nil {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if len(it.Loc) > 0 {
			parts = append(parts, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			continue
		}
		parts = append(parts, it.Msg)
	}
	return strings.Join(parts, "; ")
}
