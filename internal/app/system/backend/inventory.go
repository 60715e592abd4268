// internal/app/system/backend/inventory.go
package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dalemusser/stratastock/internal/domain/models"
)

// ListOptions filters the inventory list.
type ListOptions struct {
	LowStock bool
	Skip     int
	Limit    int
}

// Query encodes the options for the list endpoint.
func (o ListOptions) Query() url.Values {
	q := url.Values{}
	if o.LowStock {
		q.Set("low_stock", "true")
	}
	if o.Skip > 0 {
		q.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

// ListItems returns inventory items.
func (c *Client) ListItems(ctx context.Context, opts ListOptions) ([]models.Item, error) {
	return Fetch[models.Item](ctx, c, ListItems, Request{Query: opts.Query()})
}

// GetItem returns one item. A missing item matches ErrNotFound.
func (c *Client) GetItem(ctx context.Context, id string) (models.Item, error) {
	return FetchOne[models.Item](ctx, c, GetItem, Request{Params: Params{"id": id}})
}

// DeleteItem deletes one item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	_, err := c.Do(ctx, DeleteItem, Request{Params: Params{"id": id}})
	return err
}

// Stats returns inventory totals.
func (c *Client) Stats(ctx context.Context) (models.InventoryStats, error) {
	return FetchOne[models.InventoryStats](ctx, c, InventoryStats, Request{})
}

type messageResponse struct {
	Message string `json:"message"`
}

// ReloadModel asks the backend to reload its forecasting model and
// returns the backend's message.
func (c *Client) ReloadModel(ctx context.Context) (string, error) {
	out, err := FetchOne[messageResponse](ctx, c, ReloadModel, Request{})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Ping checks the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, Health, Request{})
	return err
}
