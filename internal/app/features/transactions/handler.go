// internal/app/features/transactions/handler.go
package transactions

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/formval"
	"github.com/dalemusser/stratastock/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/stratastock/internal/app/system/viewmodel"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the stock transaction form.
type Handler struct {
	Client *backend.Client
	Log    *zap.Logger
}

// NewHandler creates a transactions handler.
func NewHandler(client *backend.Client, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Log: logger}
}

// Schema is the stock transaction form.
func Schema() formval.Schema {
	return formval.Schema{
		formval.Integer("item_id", "Item").Required().Min(1),
		formval.Choice("transaction_type", "Transaction type", models.AllTransactionTypes()...).Required(),
		formval.Integer("quantity", "Quantity").Required().Above(0),
		formval.Text("reason", "Reason").MaxLen(500),
		formval.Text("performed_by", "Performed by").MaxLen(100),
	}
}

// loadItems fills the item dropdown. A failure leaves the list empty
// and queues an error toast.
func (h *Handler) loadItems(r *http.Request, vm *FormVM) {
	res := viewmodel.New(viewmodel.Config[models.Item]{
		Name:     "transaction_items",
		Fetch:    viewmodel.Remote[models.Item](h.Client, backend.ListItems),
		Notifier: toast.From(r.Context()),
		Logger:   h.Log,
	}).Bind(r.Context())

	state := res.Submit(r.Context(), backend.Request{})
	if state.IsError() {
		vm.ItemsError = "Failed to load inventory list. " + state.ErrorMessage
		return
	}
	vm.Items = state.Data
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, vm FormVM) {
	vm.Types = typeOptions()
	vm.BaseVM = viewdata.NewBaseVM(r, "New stock transaction", "/inventory")
	w.WriteHeader(status)
	templates.Render(w, r, "transactions/new", vm)
}

// ServeNew handles GET /transactions/new. ?item_id preselects an item.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	vm := FormVM{Values: url.Values{}}
	if id := r.URL.Query().Get("item_id"); id != "" {
		vm.Values.Set("item_id", id)
	}
	h.loadItems(r, &vm)
	h.render(w, r, http.StatusOK, vm)
}

// HandleCreate handles POST /transactions/new.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		vm := FormVM{Values: url.Values{}, Error: "The form could not be read."}
		h.loadItems(r, &vm)
		h.render(w, r, http.StatusBadRequest, vm)
		return
	}

	vm := FormVM{Values: r.PostForm}
	res := viewmodel.New(viewmodel.Config[models.StockTransaction]{
		Name:     "stock_transaction",
		Fetch:    viewmodel.Remote[models.StockTransaction](h.Client, backend.CreateTransaction),
		Schema:   Schema(),
		Notifier: toast.From(r.Context()),
		Logger:   h.Log,
	}).Bind(r.Context())

	payload, err := res.Validate(r.PostForm)
	if err != nil {
		var verr *formval.ValidationError
		if errors.As(err, &verr) {
			vm.Invalid = verr
			vm.Error = verr.First()
		}
		h.loadItems(r, &vm)
		h.render(w, r, http.StatusUnprocessableEntity, vm)
		return
	}
	for _, name := range []string{"reason", "performed_by"} {
		payload[name] = htmlsanitize.PlainText(payload.Text(name))
	}

	state := res.Submit(r.Context(), backend.Request{Body: payload})
	if state.IsError() {
		vm.Error = state.ErrorMessage
		h.loadItems(r, &vm)
		h.render(w, r, errorsfeature.StatusFor(state.ErrorKind), vm)
		return
	}

	tx, _ := state.First()
	h.Log.Info("stock transaction recorded",
		zap.Int("item_id", payload.Int("item_id")),
		zap.String("type", payload.Text("transaction_type")),
		zap.Int("quantity", payload.Int("quantity")),
		zap.Int("new_stock", tx.NewStock))

	bag := toast.From(r.Context())
	bag.Success(fmt.Sprintf("Stock transaction created. Stock is now %d (was %d).", tx.NewStock, tx.PreviousStock))
	bag.Redirect(w, r, "/inventory")
}
