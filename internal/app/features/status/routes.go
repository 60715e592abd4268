// internal/app/features/status/routes.go
package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a chi.Router with status routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Post("/renew", h.HandleRenew)
	return r
}
