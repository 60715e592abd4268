// internal/app/system/viewmodel/state.go
package viewmodel

import "github.com/dalemusser/stratastock/internal/app/system/backend"

// Status is the lifecycle stage of a remote-backed view.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot of a Resource. Data is only set in StatusSuccess;
// ErrorMessage and ErrorKind only in StatusError. Snapshots share Data
// with the Resource and must be treated as read-only.
type State[T any] struct {
	Status       Status
	Data         []T
	ErrorMessage string
	ErrorKind    backend.Kind
	NotFound     bool   // the error was a 404 on a single-record fetch
	Generation   uint64 // submit that produced this state
}

func (s State[T]) IsIdle() bool    { return s.Status == StatusIdle }
func (s State[T]) IsLoading() bool { return s.Status == StatusLoading }
func (s State[T]) IsSuccess() bool { return s.Status == StatusSuccess }
func (s State[T]) IsError() bool   { return s.Status == StatusError }

// First returns the first result row, if any.
func (s State[T]) First() (T, bool) {
	var zero T
	if len(s.Data) == 0 {
		return zero, false
	}
	return s.Data[0], true
}
