// internal/app/features/forecast/routes.go
package forecast

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the forecast pages.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeIndex)
	r.Post("/reload", h.HandleReload)
	r.Get("/single-day", h.ServeSingleDay)
	r.Get("/all-stores", h.ServeAllStores)
	r.Get("/monthly", h.ServeMonthly)
	r.Get("/date-range", h.ServeDateRange)
	r.Get("/date-range/export.xlsx", h.ServeDateRangeExport)

	return r
}
