// internal/app/features/inventory/list.go
package inventory

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/paging"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/stratastock/internal/app/system/xlsx"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

func listOptions(r *http.Request) backend.ListOptions {
	low, _ := strconv.ParseBool(query.Get(r, "low_stock"))
	return backend.ListOptions{LowStock: low}
}

// ServeList handles GET /inventory.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)

	res := h.items(r)
	state := res.Submit(r.Context(), backend.Request{Query: opts.Query()})
	view := res.GoToPage(paging.ParsePage(r))

	q := url.Values{}
	if opts.LowStock {
		q.Set("low_stock", "true")
	}

	vm := ListVM{
		LowStock:  opts.LowStock,
		Pager:     paging.Links(view, "/inventory", q),
		ExportURL: "/inventory/export.xlsx?" + q.Encode(),
	}
	for _, it := range view.Items {
		vm.Items = append(vm.Items, toItemVM(it))
	}
	if state.IsError() {
		vm.Error = state.ErrorMessage
	}
	vm.BaseVM = viewdata.NewBaseVM(r, "Inventory", "/")

	templates.Render(w, r, "inventory/list", vm)
}

// ServeExport handles GET /inventory/export.xlsx.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	items, err := h.Client.ListItems(r.Context(), opts)
	if err != nil {
		h.ErrLog.Log(r, "inventory export failed", err)
		h.Errors.Backend(w, r, err)
		return
	}

	sheet := xlsx.Sheet{
		Name: "Inventory",
		Headers: []string{
			"ID", "Walmart item ID", "Name", "Brand", "Category",
			"Quantity", "Unit", "Price", "Current stock", "Min", "Max", "Level",
		},
	}
	for _, it := range items {
		level := it.StockLevel()
		sheet.Rows = append(sheet.Rows, []any{
			it.ID, it.WalmartItemID, it.Name, it.Brand, it.Category,
			it.Quantity, it.Unit, it.Price, it.CurrentStock,
			it.MinStockThreshold, it.MaxStockThreshold, level,
		})
		sheet.Labels = append(sheet.Labels, level)
	}

	name := "inventory.xlsx"
	if opts.LowStock {
		name = "inventory-low-stock.xlsx"
	}
	h.Log.Debug("exporting inventory", zap.Int("rows", len(items)))
	xlsx.Serve(w, name, h.Log, sheet)
}
