// internal/app/features/forecast/pages.go
package forecast

import (
	"net/http"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/classify"
	"github.com/dalemusser/stratastock/internal/app/system/formval"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

var singleDayPage = page[models.SingleDayForecast]{
	name:     "forecast/single_day",
	title:    "Single day forecast",
	path:     "/forecast/single-day",
	endpoint: backend.ForecastSingleDay,
	schema: formval.Schema{
		formval.Text("item", "Item").Required().MaxLen(100),
		formval.Choice("store", "Store", models.AllStores()...).Required(),
		formval.Day("date", "Date").Required(),
	},
	rules:   classify.SetSingleDay,
	measure: func(f models.SingleDayForecast) float64 { return float64(f.PredictedUnitsSold) },
}

var allStoresPage = page[models.SingleDayForecast]{
	name:     "forecast/all_stores",
	title:    "Single day forecast, all stores",
	path:     "/forecast/all-stores",
	endpoint: backend.ForecastAllStores,
	schema: formval.Schema{
		formval.Text("item", "Item").Required().MaxLen(100),
		formval.Day("date", "Date").Required(),
	},
	rules:   classify.SetAllStores,
	measure: func(f models.SingleDayForecast) float64 { return float64(f.PredictedUnitsSold) },
}

var monthlyPage = page[models.MonthlyForecast]{
	name:     "forecast/monthly",
	title:    "Monthly forecast",
	path:     "/forecast/monthly",
	endpoint: backend.ForecastMonthly,
	schema: formval.Schema{
		formval.Choice("store", "Store", models.AllStores()...).Required(),
		formval.Integer("year", "Year").Required().Min(1900).Max(2200),
		formval.Integer("month", "Month").Required().Min(1).Max(12),
	},
	rules:   classify.SetMonthly,
	measure: func(f models.MonthlyForecast) float64 { return float64(f.ForecastedUnits) },
}

var dateRangePage = page[models.DateRangeForecast]{
	name:     "forecast/date_range",
	title:    "Date range forecast",
	path:     "/forecast/date-range",
	endpoint: backend.ForecastDateRange,
	schema:   DateRangeSchema(),
	rules:    classify.SetDateRange,
	measure:  func(f models.DateRangeForecast) float64 { return f.PredictedUnits },
	check:    checkDateOrder,
}

// DateRangeSchema is the date range form, shared with the export.
func DateRangeSchema() formval.Schema {
	return formval.Schema{
		formval.Day("start_date", "Start date").Required(),
		formval.Day("end_date", "End date").Required(),
	}
}

// checkDateOrder rejects a range that ends before it starts. Validated
// dates are YYYY-MM-DD, so they compare as strings.
func checkDateOrder(p formval.Payload) *formval.FieldError {
	if p.Text("end_date") < p.Text("start_date") {
		return &formval.FieldError{
			Field:   "end_date",
			Label:   "End date",
			Message: "End date must be on or after the start date.",
		}
	}
	return nil
}

// ServeSingleDay handles GET /forecast/single-day.
func (h *Handler) ServeSingleDay(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, singleDayPage)
}

// ServeAllStores handles GET /forecast/all-stores.
func (h *Handler) ServeAllStores(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, allStoresPage)
}

// ServeMonthly handles GET /forecast/monthly.
func (h *Handler) ServeMonthly(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, monthlyPage)
}

// ServeDateRange handles GET /forecast/date-range.
func (h *Handler) ServeDateRange(w http.ResponseWriter, r *http.Request) {
	vm, status := run(h, r, dateRangePage)
	if vm.HasResults() {
		vm.ExportURL = "/forecast/date-range/export.xlsx?" + exportQuery(vm.Values).Encode()
	}
	w.WriteHeader(status)
	templates.Render(w, r, dateRangePage.name, vm)
}
