// internal/app/features/inventory/handler.go
package inventory

import (
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/stratastock/internal/app/system/viewmodel"
	"github.com/dalemusser/stratastock/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the inventory pages.
type Handler struct {
	Client   *backend.Client
	Errors   *errorsfeature.Handler
	ErrLog   *errorsfeature.ErrorLogger
	Log      *zap.Logger
	PageSize int
}

// NewHandler creates an inventory handler.
func NewHandler(client *backend.Client, errLog *errorsfeature.ErrorLogger, logger *zap.Logger, pageSize int) *Handler {
	return &Handler{
		Client:   client,
		Errors:   errorsfeature.NewHandler(),
		ErrLog:   errLog,
		Log:      logger,
		PageSize: pageSize,
	}
}

// items builds the list resource for one request.
func (h *Handler) items(r *http.Request) *viewmodel.Resource[models.Item] {
	return viewmodel.New(viewmodel.Config[models.Item]{
		Name:     "inventory",
		Fetch:    viewmodel.Remote[models.Item](h.Client, backend.ListItems),
		Delete:   viewmodel.RemoteDelete(h.Client, backend.DeleteItem, "id"),
		Key:      func(it models.Item) string { return strconv.Itoa(it.ID) },
		PageSize: h.PageSize,
		Notifier: toast.From(r.Context()),
		Logger:   h.Log,
	}).Bind(r.Context())
}

// item builds the single-record resource for one request.
func (h *Handler) item(r *http.Request) *viewmodel.Resource[models.Item] {
	return viewmodel.New(viewmodel.Config[models.Item]{
		Name:     "inventory_item",
		Fetch:    viewmodel.Remote[models.Item](h.Client, backend.GetItem),
		Delete:   viewmodel.RemoteDelete(h.Client, backend.DeleteItem, "id"),
		Notifier: toast.From(r.Context()),
		Logger:   h.Log,
	}).Bind(r.Context())
}

// itemID returns the {id} path value when it is a positive integer.
func itemID(raw string) (string, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return "", false
	}
	return strconv.Itoa(n), true
}
