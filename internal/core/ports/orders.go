// internal/core/ports/orders.go
package ports

import (
	"context"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

// OrderAPI defines the order endpoints of the backend
type OrderAPI interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, filters domain.OrderFilters) (*domain.Page[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}
