// internal/app/features/transactions/routes.go
package transactions

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for stock transactions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleCreate)
	return r
}
