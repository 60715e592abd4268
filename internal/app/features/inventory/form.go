// internal/app/features/inventory/form.go
package inventory

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/formval"
	"github.com/dalemusser/stratastock/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/stratastock/internal/app/system/viewmodel"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemSchema is the create/update form. Update sends the full set too.
func ItemSchema() formval.Schema {
	return formval.Schema{
		formval.Text("walmart_item_id", "Walmart item ID").Required().MaxLen(64),
		formval.Text("name", "Name").Required().MaxLen(200),
		formval.Text("brand", "Brand").MaxLen(100),
		formval.Text("category", "Category").Required().MaxLen(100),
		formval.Text("description", "Description").MaxLen(2000),
		formval.Integer("quantity", "Quantity").Required().Min(0),
		formval.Text("unit", "Unit").Default(models.DefaultUnit).MaxLen(32),
		formval.Decimal("price", "Price").Required().Above(0),
		formval.Integer("current_stock", "Current stock").Required().Min(0),
		formval.Integer("min_stock_threshold", "Minimum stock threshold").
			Default(strconv.Itoa(models.DefaultMinStockThreshold)).Min(0),
		formval.Integer("max_stock_threshold", "Maximum stock threshold").
			Default(strconv.Itoa(models.DefaultMaxStockThreshold)).Above(0),
	}
}

// cleanPayload strips markup from plain fields and sanitizes the
// description before the payload leaves the app.
func cleanPayload(p formval.Payload) {
	for _, name := range []string{"walmart_item_id", "name", "brand", "category", "unit"} {
		if s, ok := p[name].(string); ok {
			p[name] = htmlsanitize.PlainText(s)
		}
	}
	if s, ok := p["description"].(string); ok {
		p["description"] = htmlsanitize.Description(s)
	}
}

// itemValues pre-fills the edit form from a loaded item.
func itemValues(it models.Item) url.Values {
	return url.Values{
		"walmart_item_id":     {it.WalmartItemID},
		"name":                {it.Name},
		"brand":               {it.Brand},
		"category":            {it.Category},
		"description":         {it.Description},
		"quantity":            {strconv.Itoa(it.Quantity)},
		"unit":                {it.Unit},
		"price":               {strconv.FormatFloat(it.Price, 'f', -1, 64)},
		"current_stock":       {strconv.Itoa(it.CurrentStock)},
		"min_stock_threshold": {strconv.Itoa(it.MinStockThreshold)},
		"max_stock_threshold": {strconv.Itoa(it.MaxStockThreshold)},
	}
}

func (h *Handler) writer(r *http.Request, ep backend.Endpoint) *viewmodel.Resource[models.Item] {
	return viewmodel.New(viewmodel.Config[models.Item]{
		Name:     "inventory_write",
		Fetch:    viewmodel.Remote[models.Item](h.Client, ep),
		Schema:   ItemSchema(),
		Notifier: toast.From(r.Context()),
		Logger:   h.Log,
	}).Bind(r.Context())
}

// renderForm builds the base view model before writing status so queued
// toasts and their cookie make it into the response.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, vm FormVM, title, back string) {
	vm.BaseVM = viewdata.NewBaseVM(r, title, back)
	w.WriteHeader(status)
	templates.Render(w, r, "inventory/form", vm)
}

// ServeNew handles GET /inventory/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, FormVM{
		Action: "/inventory/new",
		Submit: "Create item",
		Values: url.Values{
			"unit":                {models.DefaultUnit},
			"min_stock_threshold": {strconv.Itoa(models.DefaultMinStockThreshold)},
			"max_stock_threshold": {strconv.Itoa(models.DefaultMaxStockThreshold)},
		},
	}, "New item", "/inventory")
}

// HandleCreate handles POST /inventory/new.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	vm := FormVM{Action: "/inventory/new", Submit: "Create item"}
	created, status := h.save(r, backend.CreateItem, nil, &vm)
	if status != http.StatusOK {
		h.renderForm(w, r, status, vm, "New item", "/inventory")
		return
	}

	h.Log.Info("inventory item created", zap.Int("id", created.ID), zap.String("name", created.Name))
	bag := toast.From(r.Context())
	bag.Success("Item created.")
	if created.ID > 0 {
		bag.Redirect(w, r, "/inventory/"+strconv.Itoa(created.ID))
		return
	}
	bag.Redirect(w, r, "/inventory")
}

// ServeEdit handles GET /inventory/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	detail, status := h.loadDetail(r, "Edit item")
	if status != http.StatusOK {
		w.WriteHeader(status)
		templates.Render(w, r, "inventory/detail", detail)
		return
	}

	id := strconv.Itoa(detail.Item.ID)
	h.renderForm(w, r, http.StatusOK, FormVM{
		Action: "/inventory/" + id + "/edit",
		Submit: "Save changes",
		Values: itemValues(detail.Item.Item),
	}, "Edit item", "/inventory/"+id)
}

// HandleUpdate handles POST /inventory/{id}/edit.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(chi.URLParam(r, "id"))
	if !ok {
		h.Errors.NotFound(w, r)
		return
	}

	vm := FormVM{Action: "/inventory/" + id + "/edit", Submit: "Save changes"}
	if _, status := h.save(r, backend.UpdateItem, backend.Params{"id": id}, &vm); status != http.StatusOK {
		h.renderForm(w, r, status, vm, "Edit item", "/inventory/"+id)
		return
	}

	h.Log.Info("inventory item updated", zap.String("id", id))
	bag := toast.From(r.Context())
	bag.Success("Item updated.")
	bag.Redirect(w, r, "/inventory/"+id)
}

// save validates the posted form and sends it to ep. Any status other
// than 200 means vm has been filled for re-rendering with that status.
func (h *Handler) save(r *http.Request, ep backend.Endpoint, params backend.Params, vm *FormVM) (models.Item, int) {
	if err := r.ParseForm(); err != nil {
		vm.Error = "The form could not be read."
		return models.Item{}, http.StatusBadRequest
	}
	vm.Values = r.PostForm

	res := h.writer(r, ep)
	payload, err := res.Validate(r.PostForm)
	if err != nil {
		var verr *formval.ValidationError
		if errors.As(err, &verr) {
			vm.Invalid = verr
			vm.Error = verr.First()
		}
		return models.Item{}, http.StatusUnprocessableEntity
	}
	cleanPayload(payload)

	state := res.Submit(r.Context(), backend.Request{Params: params, Body: payload})
	if state.IsError() {
		vm.Error = state.ErrorMessage
		return models.Item{}, errorsfeature.StatusFor(state.ErrorKind)
	}

	it, _ := state.First()
	return it, http.StatusOK
}
