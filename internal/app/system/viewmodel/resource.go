// Package viewmodel drives one remote-backed view: validate the form,
// call the backend, track loading and error state, and expose the
// result as classified, paginated rows.
//
// A Resource lives for one page render. Bind it to the request context
// so that a response arriving after the client has gone is dropped:
//
//	vm := viewmodel.New(viewmodel.Config[models.Item]{
//	    Name:     "inventory",
//	    Fetch:    viewmodel.Remote[models.Item](client, backend.ListItems),
//	    PageSize: paging.PageSize,
//	}).Bind(r.Context())
//	state := vm.Submit(r.Context(), backend.Request{})
//	page := vm.GoToPage(paging.ParsePage(r))
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/classify"
	"github.com/dalemusser/stratastock/internal/app/system/formval"
	"github.com/dalemusser/stratastock/internal/app/system/paging"
	"go.uber.org/zap"
)

// ErrNoDeleter is returned by Delete when the Resource has no Delete func.
var ErrNoDeleter = errors.New("viewmodel: delete not configured")

// Fetcher performs the remote call for a submit.
type Fetcher[T any] func(ctx context.Context, req backend.Request) ([]T, error)

// Deleter removes one record by id.
type Deleter func(ctx context.Context, id string) error

// Notifier receives user-facing messages (toasts).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Config configures a Resource.
type Config[T any] struct {
	Name     string // used in log lines
	Fetch    Fetcher[T]
	Delete   Deleter
	Schema   formval.Schema
	PageSize int

	Key     func(T) string  // identifies rows for Delete
	Rules   classify.Rules  // severity rules for Measure
	Measure func(T) float64 // value Rules classify; nil means no labels

	Notifier Notifier
	Logger   *zap.Logger
}

// Row is one visible row with its severity label.
type Row[T any] struct {
	Item  T
	Label string
}

// DeleteResult describes a successful delete.
type DeleteResult struct {
	Deleted bool // the backend accepted the delete; detail pages navigate away
	Removed bool // the row was present in the loaded list and was dropped
}

// Resource is the view model for one remote-backed view.
// It is safe for concurrent use.
type Resource[T any] struct {
	cfg Config[T]

	mu     sync.Mutex
	state  State[T]
	page   int
	gen    uint64
	closed bool
}

// New creates a Resource in StatusIdle.
func New[T any](cfg Config[T]) *Resource[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = paging.PageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "resource"
	}
	return &Resource[T]{
		cfg:   cfg,
		state: State[T]{Status: StatusIdle},
		page:  1,
	}
}

// Remote returns a Fetcher that calls ep on c.
func Remote[T any](c *backend.Client, ep backend.Endpoint) Fetcher[T] {
	return func(ctx context.Context, req backend.Request) ([]T, error) {
		return backend.Fetch[T](ctx, c, ep, req)
	}
}

// RemoteDelete returns a Deleter that calls ep with the id in path
// parameter param.
func RemoteDelete(c *backend.Client, ep backend.Endpoint, param string) Deleter {
	return func(ctx context.Context, id string) error {
		_, err := c.Do(ctx, ep, backend.Request{Params: backend.Params{param: id}})
		return err
	}
}

// Bind closes the Resource when ctx is done.
func (r *Resource[T]) Bind(ctx context.Context) *Resource[T] {
	context.AfterFunc(ctx, r.Close)
	return r
}

// Close marks the view as gone. Responses that arrive afterwards are
// discarded and later submits are ignored.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// State returns the current snapshot.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Validate checks form values against the configured schema.
func (r *Resource[T]) Validate(values formval.Values) (formval.Payload, error) {
	return r.cfg.Schema.Validate(values)
}

// SubmitForm validates values and submits the payload as the request
// body. A validation failure is returned as *formval.ValidationError,
// no request is made, and the state is left as it was.
func (r *Resource[T]) SubmitForm(ctx context.Context, values formval.Values, params backend.Params) (State[T], error) {
	payload, err := r.Validate(values)
	if err != nil {
		return r.State(), err
	}
	return r.Submit(ctx, backend.Request{Params: params, Body: payload}), nil
}

// Submit moves the view to StatusLoading, performs the fetch, and
// records the outcome. Only the most recently started submit may record
// its outcome; a superseded or closed submit returns the current state
// unchanged. Failures never escape: they end in StatusError and are
// passed to the Notifier.
func (r *Resource[T]) Submit(ctx context.Context, req backend.Request) State[T] {
	r.mu.Lock()
	if r.closed {
		s := r.state
		r.mu.Unlock()
		return s
	}
	r.gen++
	gen := r.gen
	r.state = State[T]{Status: StatusLoading, Generation: gen}
	r.mu.Unlock()

	data, err := r.fetch(ctx, req)

	r.mu.Lock()
	if r.closed || gen != r.gen {
		s := r.state
		r.mu.Unlock()
		r.cfg.Logger.Debug("discarding stale response",
			zap.String("resource", r.cfg.Name),
			zap.Uint64("generation", gen),
			zap.Error(err))
		return s
	}

	if err != nil {
		r.state = State[T]{
			Status:       StatusError,
			ErrorMessage: backend.Message(err),
			ErrorKind:    backend.KindOf(err),
			NotFound:     errors.Is(err, backend.ErrNotFound),
			Generation:   gen,
		}
	} else {
		if data == nil {
			data = []T{}
		}
		r.state = State[T]{Status: StatusSuccess, Data: data, Generation: gen}
		r.page = 1
	}
	s := r.state
	r.mu.Unlock()

	if err != nil {
		r.cfg.Logger.Warn("backend request failed",
			zap.String("resource", r.cfg.Name),
			zap.String("kind", string(s.ErrorKind)),
			zap.Error(err))
		r.notifyError(s.ErrorMessage)
	}
	return s
}

func (r *Resource[T]) fetch(ctx context.Context, req backend.Request) (data []T, err error) {
	if r.cfg.Fetch == nil {
		return nil, fmt.Errorf("viewmodel: %s has no fetcher", r.cfg.Name)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("viewmodel: %s fetch panicked: %v", r.cfg.Name, p)
		}
	}()
	return r.cfg.Fetch(ctx, req)
}

// GoToPage moves to page n, clamped to [1, total pages], and returns it.
func (r *Resource[T]) GoToPage(n int) paging.View[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.page = paging.Clamp(n, paging.TotalPages(len(r.state.Data), r.cfg.PageSize))
	return paging.Slice(r.state.Data, r.page, r.cfg.PageSize)
}

// Page returns the current page.
func (r *Resource[T]) Page() paging.View[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return paging.Slice(r.state.Data, r.page, r.cfg.PageSize)
}

// Classify labels v with the configured rules.
func (r *Resource[T]) Classify(v float64) string {
	return classify.Classify(v, r.cfg.Rules)
}

// Rows pairs each item of view with its severity label.
func (r *Resource[T]) Rows(view paging.View[T]) []Row[T] {
	rows := make([]Row[T], len(view.Items))
	for i, it := range view.Items {
		rows[i] = Row[T]{Item: it}
		if r.cfg.Measure != nil {
			rows[i].Label = r.Classify(r.cfg.Measure(it))
		}
	}
	return rows
}

// Delete removes the record with id on the backend. On success the row
// is dropped from the loaded data without a re-fetch. On failure the
// loaded data is untouched and the error goes to the Notifier.
func (r *Resource[T]) Delete(ctx context.Context, id string) (DeleteResult, error) {
	if r.cfg.Delete == nil {
		return DeleteResult{}, ErrNoDeleter
	}

	err := r.cfg.Delete(ctx, id)
	if err != nil {
		r.cfg.Logger.Warn("delete failed",
			zap.String("resource", r.cfg.Name),
			zap.String("id", id),
			zap.Error(err))
		r.notifyError(backend.Message(err))
		return DeleteResult{}, err
	}

	res := DeleteResult{Deleted: true}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.cfg.Key == nil || r.state.Status != StatusSuccess {
		return res, nil
	}

	kept := make([]T, 0, len(r.state.Data))
	for _, it := range r.state.Data {
		if r.cfg.Key(it) == id {
			res.Removed = true
			continue
		}
		kept = append(kept, it)
	}
	if res.Removed {
		r.state.Data = kept
		r.page = paging.Clamp(r.page, paging.TotalPages(len(kept), r.cfg.PageSize))
	}
	return res, nil
}

func (r *Resource[T]) notifyError(msg string) {
	if r.cfg.Notifier != nil {
		r.cfg.Notifier.Error(msg)
	}
}
