package errors

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/testutil"
	"go.uber.org/zap"
)

func TestNotFound_Returns404(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/notfound", nil))
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInternalError_Returns500(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/error", nil))
	rec := httptest.NewRecorder()

	h.InternalError(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestBackend_StatusByKind(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &backend.HTTPError{Method: "GET", Path: "/inventory/9", Status: 404}, http.StatusNotFound},
		{"server error", &backend.HTTPError{Method: "GET", Path: "/inventory/", Status: 500}, http.StatusBadGateway},
		{"rejected", &backend.HTTPError{Method: "POST", Path: "/stock/transaction/", Status: 400}, http.StatusUnprocessableEntity},
		{"network", &backend.NetworkError{Method: "GET", Path: "/", Err: fmt.Errorf("refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/inventory", nil))
			rec := httptest.NewRecorder()
			h.Backend(rec, req, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor(backend.KindParse) != http.StatusBadGateway {
		t.Error("parse errors should map to 502")
	}
	if StatusFor(backend.KindNone) != http.StatusOK {
		t.Error("no error should map to 200")
	}
	if StatusFor(backend.KindRejected) != http.StatusUnprocessableEntity {
		t.Error("rejected requests should map to 422")
	}
}

func TestErrorLogger_Log(t *testing.T) {
	errLog := NewErrorLogger(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	errLog.Log(req, "test error", nil)
	errLog.LogWithFields(req, "test error", nil, zap.String("extra", "field"))
}
