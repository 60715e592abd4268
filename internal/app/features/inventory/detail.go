// internal/app/features/inventory/detail.go
package inventory

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// loadDetail fetches the item named by {id} and fills a DetailVM. The
// returned status is the one the page should answer with.
func (h *Handler) loadDetail(r *http.Request, title string) (DetailVM, int) {
	var vm DetailVM
	status := http.StatusOK

	id, ok := itemID(chi.URLParam(r, "id"))
	if !ok {
		vm.NotFound = true
		status = http.StatusNotFound
	} else {
		state := h.item(r).Submit(r.Context(), backend.Request{Params: backend.Params{"id": id}})
		switch {
		case state.NotFound:
			vm.NotFound = true
			status = http.StatusNotFound
		case state.IsError():
			vm.Error = state.ErrorMessage
			status = errorsfeature.StatusFor(state.ErrorKind)
		default:
			if it, found := state.First(); found {
				vm.Item = toItemVM(it)
			} else {
				vm.NotFound = true
				status = http.StatusNotFound
			}
		}
	}

	vm.BaseVM = viewdata.NewBaseVM(r, title, "/inventory")
	return vm, status
}

// ServeDetail handles GET /inventory/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	vm, status := h.loadDetail(r, "Item details")
	w.WriteHeader(status)
	templates.Render(w, r, "inventory/detail", vm)
}
