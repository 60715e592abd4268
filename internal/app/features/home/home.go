// internal/app/features/home/home.go
package home

import (
	"net/http"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/stratastock/internal/app/system/viewmodel"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides home page handlers.
type Handler struct {
	client *backend.Client
	logger *zap.Logger
}

// NewHandler creates a new home Handler.
func NewHandler(client *backend.Client, logger *zap.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger,
	}
}

// HomeVM is the view model for the home page.
type HomeVM struct {
	viewdata.BaseVM
	Stats     models.InventoryStats
	HaveStats bool   // false when the stats call failed
	Error     string // shown in place of the stats cards
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index renders the home page with inventory totals. A failed stats
// call shows a toast and empty stats; the page still renders.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	res := viewmodel.New(viewmodel.Config[models.InventoryStats]{
		Name:     "inventory_stats",
		Fetch:    viewmodel.Remote[models.InventoryStats](h.client, backend.InventoryStats),
		Notifier: toast.From(r.Context()),
		Logger:   h.logger,
	}).Bind(r.Context())

	var vm HomeVM
	state := res.Submit(r.Context(), backend.Request{})
	if state.IsError() {
		vm.Error = state.ErrorMessage
	} else if stats, ok := state.First(); ok {
		vm.Stats = stats
		vm.HaveStats = true
	}

	vm.BaseVM = viewdata.NewBaseVM(r, "Home", "/")
	templates.Render(w, r, "home/index", vm)
}
