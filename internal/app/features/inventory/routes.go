// internal/app/features/inventory/routes.go
package inventory

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the inventory feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/export.xlsx", h.ServeExport)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleCreate)
	r.Get("/{id}", h.ServeDetail)
	r.Get("/{id}/edit", h.ServeEdit)
	r.Post("/{id}/edit", h.HandleUpdate)
	r.Get("/{id}/delete", h.ServeDeleteConfirm)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
