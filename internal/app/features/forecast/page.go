// internal/app/features/forecast/page.go
package forecast

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/classify"
	"github.com/dalemusser/stratastock/internal/app/system/formval"
	"github.com/dalemusser/stratastock/internal/app/system/paging"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/stratastock/internal/app/system/viewmodel"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// page describes one forecast form and its result table.
type page[T any] struct {
	name     string // template name and log label
	title    string
	path     string
	endpoint backend.Endpoint
	schema   formval.Schema
	rules    string
	measure  func(T) float64
	check    func(formval.Payload) *formval.FieldError
}

// Form is the query-string form state shared by the forecast pages.
type Form struct {
	Values    url.Values
	Invalid   *formval.ValidationError
	Submitted bool
}

// Value returns the submitted value for a field.
func (f Form) Value(name string) string {
	return f.Values.Get(name)
}

// FieldError returns the validation message for a field, or "".
func (f Form) FieldError(name string) string {
	return f.Invalid.For(name)
}

// PageVM is the view model for a forecast page.
type PageVM[T any] struct {
	viewdata.BaseVM
	Form
	Stores    []string
	Months    []Month
	Rows      []ResultRow[T]
	Pager     paging.Pager
	Legend    []classify.Threshold
	Error     string
	ExportURL string
}

// ResultRow is a classified row with its 1-based position in the whole
// result set.
type ResultRow[T any] struct {
	N int
	viewmodel.Row[T]
}

// HasResults reports whether a successful submit returned rows.
func (vm PageVM[T]) HasResults() bool {
	return len(vm.Rows) > 0
}

// Month is one entry of the month select.
type Month struct {
	Number int
	Name   string
}

func months() []Month {
	out := make([]Month, 12)
	for i := range out {
		out[i] = Month{Number: i + 1, Name: time.Month(i + 1).String()}
	}
	return out
}

// submitted reports whether q carries any of the schema's fields.
func submitted(q url.Values, schema formval.Schema) bool {
	for _, f := range schema {
		if q.Has(f.Name) {
			return true
		}
	}
	return false
}

// validatePage runs the schema and then the page's cross-field check.
func validatePage[T any](res *viewmodel.Resource[T], p page[T], q url.Values) (formval.Payload, *formval.ValidationError) {
	payload, err := res.Validate(q)
	if err != nil {
		var verr *formval.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, &formval.ValidationError{Errors: []formval.FieldError{{Message: err.Error()}}}
	}
	if p.check != nil {
		if fe := p.check(payload); fe != nil {
			return nil, &formval.ValidationError{Errors: []formval.FieldError{*fe}}
		}
	}
	return payload, nil
}

// run builds the view model for p from the request's query string and
// returns it with the status the page should answer with.
func run[T any](h *Handler, r *http.Request, p page[T]) (PageVM[T], int) {
	q := r.URL.Query()
	rules := h.Rules.Get(p.rules)

	vm := PageVM[T]{
		Form:   Form{Values: q},
		Stores: models.AllStores(),
		Months: months(),
		Legend: rules.Thresholds(),
	}
	status := http.StatusOK

	if submitted(q, p.schema) {
		vm.Submitted = true

		res := viewmodel.New(viewmodel.Config[T]{
			Name:     p.name,
			Fetch:    viewmodel.Remote[T](h.Client, p.endpoint),
			Schema:   p.schema,
			PageSize: h.PageSize,
			Rules:    rules,
			Measure:  p.measure,
			Notifier: toast.From(r.Context()),
			Logger:   h.Log,
		}).Bind(r.Context())

		payload, verr := validatePage(res, p, q)
		switch {
		case verr != nil:
			vm.Invalid = verr
			vm.Error = verr.First()
			status = http.StatusUnprocessableEntity
		default:
			state := res.Submit(r.Context(), backend.Request{Body: payload})
			if state.IsError() {
				vm.Error = state.ErrorMessage
				status = errorsfeature.StatusFor(state.ErrorKind)
				break
			}
			view := res.GoToPage(paging.ParsePage(r))
			for i, row := range res.Rows(view) {
				vm.Rows = append(vm.Rows, ResultRow[T]{N: view.Start + i, Row: row})
			}
			vm.Pager = paging.Links(view, p.path, q)
			h.Log.Debug("forecast loaded",
				zap.String("page", p.name),
				zap.Int("rows", view.Total))
		}
	}

	vm.BaseVM = viewdata.NewBaseVM(r, p.title, "/forecast")
	return vm, status
}

// serve renders p.
func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, p page[T]) {
	vm, status := run(h, r, p)
	w.WriteHeader(status)
	templates.Render(w, r, p.name, vm)
}
