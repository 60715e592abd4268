// internal/app/features/inventory/delete.go
package inventory

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeDeleteConfirm handles GET /inventory/{id}/delete.
func (h *Handler) ServeDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	vm, status := h.loadDetail(r, "Delete item")
	w.WriteHeader(status)
	templates.Render(w, r, "inventory/delete", vm)
}

// HandleDelete handles POST /inventory/{id}/delete. The form may carry
// a return path so a delete from the list lands back on the same page.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	bag := toast.From(r.Context())

	id, ok := itemID(chi.URLParam(r, "id"))
	if !ok {
		h.Errors.NotFound(w, r)
		return
	}

	back := safeReturn(r.FormValue("return"), "/inventory")

	_, err := h.items(r).Delete(r.Context(), id)
	if err != nil {
		// The resource already queued the error toast.
		if errors.Is(err, backend.ErrNotFound) {
			bag.Redirect(w, r, "/inventory")
			return
		}
		bag.Redirect(w, r, back)
		return
	}

	h.Log.Info("inventory item deleted", zap.String("id", id))
	bag.Success("Item deleted.")
	if back == "/inventory/"+id {
		back = "/inventory"
	}
	bag.Redirect(w, r, back)
}

// safeReturn accepts only local inventory paths.
func safeReturn(raw, def string) string {
	if raw == "/inventory" || strings.HasPrefix(raw, "/inventory?") || strings.HasPrefix(raw, "/inventory/") {
		return raw
	}
	return def
}
