// internal/domain/models/forecast.go
package models

// Stores served by the forecasting model.
const (
	StoreKolkata  = "Kolkata"
	StoreAsansol  = "Asansol"
	StoreDurgapur = "Durgapur"
	StoreSiliguri = "Siliguri"
	StoreHowrah   = "Howrah"
)

// AllStores returns all valid store names.
func AllStores() []string {
	return []string{
		StoreKolkata,
		StoreAsansol,
		StoreDurgapur,
		StoreSiliguri,
		StoreHowrah,
	}
}

// IsValidStore checks if a store name is valid.
func IsValidStore(store string) bool {
	for _, s := range AllStores() {
		if s == store {
			return true
		}
	}
	return false
}

// SingleDayForecast is the prediction for one item in one store on one day.
// The all-stores endpoint returns a list of these.
type SingleDayForecast struct {
	Item               string `json:"item"`
	Store              string `json:"store"`
	Date               string `json:"date"`
	PredictedUnitsSold int    `json:"predicted_units_sold"`
}

// MonthlyForecast is the predicted monthly total for one item.
type MonthlyForecast struct {
	Item            string `json:"item"`
	ForecastedUnits int    `json:"forecasted_units"`
}

// DateRangeForecast is one row of a date-range forecast.
type DateRangeForecast struct {
	ItemID         string  `json:"item_id"`
	StoreID        string  `json:"store_id"`
	Date           string  `json:"date"`
	PredictedUnits float64 `json:"predicted_units"`
}

// DateOnly returns the YYYY-MM-DD part of the row's date.
func (f DateRangeForecast) DateOnly() string {
	if len(f.Date) >= 10 {
		return f.Date[:10]
	}
	return f.Date
}
