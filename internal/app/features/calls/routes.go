// internal/app/features/calls/routes.go
package calls

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the call log. It is mounted only when
// MongoDB is configured.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/stats", h.ServeStats)
	r.Get("/{id}", h.ServeDetail)

	return r
}
