// internal/core/services/order_board.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

// OrderBoard holds the dashboard's order list and its filters
type OrderBoard struct {
	api    ports.OrderAPI
	logger *slog.Logger

	mu        sync.Mutex
	orders    []domain.Order
	filters   domain.OrderFilters
	meta      OrderMeta
	loading   bool
	lastError string
}

func NewOrderBoard(api ports.OrderAPI, logger *slog.Logger) *OrderBoard {
	return &OrderBoard{
		api:     api,
		orders:  []domain.Order{},
		filters: domain.DefaultOrderFilters(),
		logger:  logger.With(slog.String("service", "order_board")),
	}
}

// SetFilters merges the non-empty fields of f and returns to page 1
func (b *OrderBoard) SetFilters(f domain.OrderFilters) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f.Status != "" {
		b.filters.Status = f.Status
	}
	if f.Search != "" {
		b.filters.Search = f.Search
	}
	if f.StartDate != "" {
		b.filters.StartDate = f.StartDate
	}
	if f.EndDate != "" {
		b.filters.EndDate = f.EndDate
	}
	if f.PageSize > 0 {
		b.filters.PageSize = f.PageSize
	}
	b.filters.Page = 1
}

// ClearFilters drops every filter and returns to page 1
func (b *OrderBoard) ClearFilters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	size := b.filters.PageSize
	b.filters = domain.DefaultOrderFilters()
	b.filters.PageSize = size
}

func (b *OrderBoard) SetPage(p int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p < 1 {
		p = 1
	}
	b.filters.Page = p
}

func (b *OrderBoard) Filters() domain.OrderFilters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

// Refresh reloads the list for the current filters
func (b *OrderBoard) Refresh(ctx context.Context) error {
	b.mu.Lock()
	filters := b.filters
	b.loading = true
	b.mu.Unlock()

	page, err := b.api.ListOrders(ctx, filters)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		b.lastError = err.Error()
		return fmt.Errorf("failed to load orders: %w", err)
	}
	b.lastError = ""
	b.orders = append([]domain.Order{}, page.Results...)
	b.meta = OrderMeta{Count: page.Count, Next: page.Next, Previous: page.Previous}
	return nil
}

// Upsert replaces the order with the same id, or puts it first when absent
func (b *OrderBoard) Upsert(o domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.orders {
		if b.orders[i].ID == o.ID {
			b.orders[i] = o
			return
		}
	}
	b.orders = append([]domain.Order{o}, b.orders...)
}

// UpdateStatus moves an order to status and takes the server's record
func (b *OrderBoard) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	updated, err := b.api.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		b.mu.Lock()
		b.lastError = err.Error()
		b.mu.Unlock()
		return nil, err
	}

	b.mu.Lock()
	for i := range b.orders {
		if b.orders[i].ID == updated.ID {
			b.orders[i] = *updated
		}
	}
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "order status updated",
		slog.Int64("order_id", id),
		slog.String("status", string(updated.Status)))
	return updated, nil
}

// PlaceOrder submits the cart as an order. The cart is cleared only when the
// order was accepted.
func (b *OrderBoard) PlaceOrder(ctx context.Context, cart *CartStore) (*domain.Order, error) {
	req := cart.OrderRequest()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order, err := b.api.CreateOrder(ctx, req)
	if err != nil {
		b.mu.Lock()
		b.lastError = err.Error()
		b.mu.Unlock()
		b.logger.ErrorContext(ctx, "failed to place order", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cart.ClearCart(); err != nil {
		b.logger.WarnContext(ctx, "order placed but cart not cleared", slog.String("error", err.Error()))
	}
	b.Upsert(*order)

	b.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", order.ID),
		slog.Int("lines", len(req.Items)))
	return order, nil
}

// Orders returns a copy of the list
func (b *OrderBoard) Orders() []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Order{}, b.orders...)
}

func (b *OrderBoard) Meta() OrderMeta {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meta
}

func (b *OrderBoard) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}
