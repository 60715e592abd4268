// internal/app/features/inventory/types.go
package inventory

import (
	"html/template"
	"net/url"

	"github.com/dalemusser/stratastock/internal/app/system/formval"
	"github.com/dalemusser/stratastock/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratastock/internal/app/system/paging"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/shopspring/decimal"
)

// ItemVM is an item prepared for display.
type ItemVM struct {
	models.Item
	Level       string
	PriceText   string
	Description template.HTML
}

func toItemVM(it models.Item) ItemVM {
	return ItemVM{
		Item:        it,
		Level:       it.StockLevel(),
		PriceText:   decimal.NewFromFloat(it.Price).StringFixed(2),
		Description: htmlsanitize.PrepareForDisplay(it.Description),
	}
}

// ListVM is the view model for the inventory list.
type ListVM struct {
	viewdata.BaseVM
	Items     []ItemVM
	Pager     paging.Pager
	LowStock  bool
	Error     string
	ExportURL string
}

// DetailVM is the view model for the item detail and delete pages.
type DetailVM struct {
	viewdata.BaseVM
	Item     ItemVM
	NotFound bool
	Error    string
}

// FormVM is the view model for the create and edit forms.
type FormVM struct {
	viewdata.BaseVM
	Action  string
	Submit  string
	Values  url.Values
	Invalid *formval.ValidationError
	Error   string
}

// Value returns the submitted or pre-filled value for a field.
func (vm FormVM) Value(name string) string {
	return vm.Values.Get(name)
}

// FieldError returns the validation message for a field, or "".
func (vm FormVM) FieldError(name string) string {
	return vm.Invalid.For(name)
}
