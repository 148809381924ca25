// internal/core/domain/order.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderReviewing OrderStatus = "reviewing"
	OrderProcess   OrderStatus = "process"
	OrderShipping  OrderStatus = "shipping"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// orderFlow is the forward path a seller moves an order through
var orderFlow = []OrderStatus{
	OrderPending,
	OrderReviewing,
	OrderProcess,
	OrderShipping,
	OrderCompleted,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	if s == OrderCancelled {
		return true
	}
	for _, st := range orderFlow {
		if st == s {
			return true
		}
	}
	return false
}

// Next returns the following status in the flow. Terminal states return
// themselves with ok=false.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range orderFlow {
		if st == s && i+1 < len(orderFlow) {
			return orderFlow[i+1], true
		}
	}
	return s, false
}

// Terminal reports whether no further transitions are expected
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// ParseOrderStatus validates a raw status string
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// OrderItem is a product line within an order
type OrderItem struct {
	ID         int64           `json:"id"`
	Product    Product         `json:"product"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// Order is an order as returned by the orders endpoints
type Order struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      OrderStatus     `json:"status"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `json:"items"`
	Buyer       User            `json:"buyer"`
}

// Validate checks the fields every order record must carry
func (o *Order) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("order id must be positive")
	}
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	return nil
}

// OrderLine is a single line of an order creation request
type OrderLine struct {
	ProductID  int64           `json:"product_id"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// CreateOrderRequest is the body posted to create an order
type CreateOrderRequest struct {
	Items []OrderLine `json:"items"`
}

// Validate rejects empty orders and non-positive quantities
func (r *CreateOrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyCart
	}
	for _, line := range r.Items {
		if line.ProductID <= 0 {
			return fmt.Errorf("product_id must be positive")
		}
		if !line.QuantityKg.IsPositive() {
			return fmt.Errorf("%w: product %d", ErrInvalidQuantity, line.ProductID)
		}
	}
	return nil
}

// OrderFilters are the list parameters for the orders endpoint
type OrderFilters struct {
	Status    string `json:"status,omitempty"`
	Search    string `json:"search,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

// DefaultOrderFilters returns the first page with the default page size
func DefaultOrderFilters() OrderFilters {
	return OrderFilters{Page: 1, PageSize: 20}
}

// Event types pushed by the live order transport
const (
	EventOrderUpdate = "order_update"
	EventNewOrder    = "new_order"
)

// OrderEvent is one frame received from the live order transport
type OrderEvent struct {
	Type  string `json:"type"`
	Order *Order `json:"order"`
}

// IsOrderChange reports whether the event carries an order to merge
func (e *OrderEvent) IsOrderChange() bool {
	return e.Type == EventOrderUpdate || e.Type == EventNewOrder
}
