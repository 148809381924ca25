// internal/adapters/api/orders.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

const ordersPath = "/orders/"

func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var o domain.Order
	if err := c.doJSON(ctx, http.MethodPost, ordersPath, nil, req, &o); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, &DecodeError{Endpoint: ordersPath, Err: err}
	}
	return &o, nil
}

// ListOrders fetches one page of orders. Empty filters are not sent.
func (c *Client) ListOrders(ctx context.Context, f domain.OrderFilters) (*domain.Page[domain.Order], error) {
	q := url.Values{}
	for key, v := range map[string]string{
		"status":     f.Status,
		"search":     f.Search,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if v != "" {
			q.Set(key, v)
		}
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return decodePage(ctx, c, ordersPath, q, (*domain.Order).Validate)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	path := ordersPath + strconv.FormatInt(id, 10) + "/update_status/"
	body := map[string]domain.OrderStatus{"status": status}

	var o domain.Order
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, body, &o); err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	if err := o.Validate(); err != nil {
		return nil, &DecodeError{Endpoint: path, Err: err}
	}
	return &o, nil
}
