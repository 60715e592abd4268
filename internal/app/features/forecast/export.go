// internal/app/features/forecast/export.go
package forecast

import (
	"net/http"
	"net/url"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/xlsx"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"go.uber.org/zap"
)

// exportQuery keeps only the form fields of the date range page.
func exportQuery(q url.Values) url.Values {
	out := url.Values{}
	for _, f := range DateRangeSchema() {
		if v := q.Get(f.Name); v != "" {
			out.Set(f.Name, v)
		}
	}
	return out
}

// ServeDateRangeExport handles GET /forecast/date-range/export.xlsx. It
// re-runs the forecast for the range and sends every row, not just the
// visible page.
func (h *Handler) ServeDateRangeExport(w http.ResponseWriter, r *http.Request) {
	q := exportQuery(r.URL.Query())

	payload, err := DateRangeSchema().Validate(q)
	if err != nil || checkDateOrder(payload) != nil {
		bag := toast.From(r.Context())
		bag.Error("Choose a valid date range before exporting.")
		bag.Redirect(w, r, "/forecast/date-range?"+q.Encode())
		return
	}

	rows, err := backend.Fetch[models.DateRangeForecast](r.Context(), h.Client, backend.ForecastDateRange, backend.Request{Body: payload})
	if err != nil {
		h.ErrLog.Log(r, "date range export failed", err)
		h.Errors.Backend(w, r, err)
		return
	}

	rules := h.Rules.Get(dateRangePage.rules)
	sheet := xlsx.Sheet{
		Name:    "Forecast",
		Headers: []string{"#", "Item ID", "Store ID", "Date", "Predicted units", "Level"},
	}
	for i, f := range rows {
		label := rules.Classify(f.PredictedUnits)
		sheet.Rows = append(sheet.Rows, []any{i + 1, f.ItemID, f.StoreID, f.DateOnly(), f.PredictedUnits, label})
		sheet.Labels = append(sheet.Labels, label)
	}

	name := "forecast_" + payload.Text("start_date") + "_to_" + payload.Text("end_date") + ".xlsx"
	h.Log.Debug("exporting date range forecast", zap.Int("rows", len(rows)), zap.String("file", name))
	xlsx.Serve(w, name, h.Log, sheet)
}
