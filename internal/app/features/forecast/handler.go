// internal/app/features/forecast/handler.go
package forecast

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/classify"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the forecast pages.
type Handler struct {
	Client   *backend.Client
	Rules    classify.Set
	Errors   *errorsfeature.Handler
	ErrLog   *errorsfeature.ErrorLogger
	Log      *zap.Logger
	PageSize int
}

// NewHandler creates a forecast handler. A nil rule set uses the
// built-in thresholds.
func NewHandler(client *backend.Client, rules classify.Set, errLog *errorsfeature.ErrorLogger, logger *zap.Logger, pageSize int) *Handler {
	if rules == nil {
		rules = classify.Defaults()
	}
	return &Handler{
		Client:   client,
		Rules:    rules,
		Errors:   errorsfeature.NewHandler(),
		ErrLog:   errLog,
		Log:      logger,
		PageSize: pageSize,
	}
}

// IndexVM is the view model for the forecast landing page.
type IndexVM struct {
	viewdata.BaseVM
	Pages []IndexLink
}

// IndexLink is one forecast page on the landing page.
type IndexLink struct {
	Title       string
	Href        string
	Description string
}

// ServeIndex handles GET /forecast.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	vm := IndexVM{
		Pages: []IndexLink{
			{"Single day", "/forecast/single-day", "Predicted units sold for one item in one store on one day."},
			{"Single day, all stores", "/forecast/all-stores", "Compare one item across every store on one day."},
			{"Monthly", "/forecast/monthly", "Forecasted monthly totals per item for one store."},
			{"Date range", "/forecast/date-range", "Daily predictions for every item and store between two dates."},
		},
	}
	vm.BaseVM = viewdata.NewBaseVM(r, "Forecasts", "/")
	templates.Render(w, r, "forecast/index", vm)
}

// HandleReload handles POST /forecast/reload.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	bag := toast.From(r.Context())

	msg, err := h.Client.ReloadModel(r.Context())
	if err != nil {
		h.Log.Warn("model reload failed", zap.Error(err))
		bag.Error("Model reload failed. " + backend.Message(err))
		bag.Redirect(w, r, "/forecast")
		return
	}

	h.Log.Info("forecast model reloaded", zap.String("message", msg))
	if msg == "" {
		msg = "Model reloaded."
	}
	bag.Success(msg)
	bag.Redirect(w, r, "/forecast")
}
