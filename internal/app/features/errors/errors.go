// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs an error with the given message and error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)
	e.logger.Error(msg, allFields...)
}

// PageVM is the view model for error pages.
type PageVM struct {
	viewdata.BaseVM
	Message string
}

// Handler provides error page handlers.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders the 404 not found page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, "errors/not_found", "Not Found", "")
}

// MethodNotAllowed renders the 405 page.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusMethodNotAllowed, "errors/internal", "Method Not Allowed",
		"That action is not available here.")
}

// InternalError renders the 500 internal server error page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusInternalServerError, "errors/internal", "Server Error", "")
}

// Backend renders the page for a failed backend call. A 404 from the
// backend becomes the not found page; everything else carries the
// user-facing message for err with the status from StatusFor.
func (h *Handler) Backend(w http.ResponseWriter, r *http.Request, err error) {
	if backend.KindOf(err) == backend.KindNotFound {
		render(w, r, http.StatusNotFound, "errors/not_found", "Not Found", backend.Message(err))
		return
	}
	render(w, r, StatusFor(backend.KindOf(err)), "errors/backend", "Service Unavailable", backend.Message(err))
}

// StatusFor maps a backend error kind to the status the app answers with.
func StatusFor(kind backend.Kind) int {
	switch kind {
	case backend.KindNone:
		return http.StatusOK
	case backend.KindNotFound:
		return http.StatusNotFound
	case backend.KindRejected:
		return http.StatusUnprocessableEntity
	case backend.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func render(w http.ResponseWriter, r *http.Request, status int, name, title, msg string) {
	vm := PageVM{
		BaseVM:  viewdata.NewBaseVM(r, title, "/"),
		Message: msg,
	}
	w.WriteHeader(status)
	templates.Render(w, r, name, vm)
}
