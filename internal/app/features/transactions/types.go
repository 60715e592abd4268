// internal/app/features/transactions/types.go
package transactions

import (
	"net/url"
	"strconv"

	"github.com/dalemusser/stratastock/internal/app/system/formval"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/stratastock/internal/domain/models"
)

// TypeOption is one entry in the transaction type select.
type TypeOption struct {
	Value string
	Label string
}

func typeOptions() []TypeOption {
	labels := map[string]string{
		models.TransactionIn:         "IN – Incoming",
		models.TransactionOut:        "OUT – Outgoing",
		models.TransactionAdjustment: "ADJUSTMENT – Manual fix",
	}
	var out []TypeOption
	for _, t := range models.AllTransactionTypes() {
		out = append(out, TypeOption{Value: t, Label: labels[t]})
	}
	return out
}

// FormVM is the view model for the transaction form.
type FormVM struct {
	viewdata.BaseVM
	Items      []models.Item
	ItemsError string
	Types      []TypeOption
	Values     url.Values
	Invalid    *formval.ValidationError
	Error      string
}

// Value returns the submitted value for a field.
func (vm FormVM) Value(name string) string {
	return vm.Values.Get(name)
}

// FieldError returns the validation message for a field, or "".
func (vm FormVM) FieldError(name string) string {
	return vm.Invalid.For(name)
}

// Selected reports whether an item id is the chosen one.
func (vm FormVM) Selected(id int) bool {
	return vm.Values.Get("item_id") == strconv.Itoa(id)
}
