// internal/core/services/cart.go
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/pkg/metrics"
)

// CartStore holds the buyer's cart and writes every mutation through to
// storage before returning.
type CartStore struct {
	mu      sync.Mutex
	items   []domain.CartItem
	storage ports.StorageAdapter
	logger  *slog.Logger
}

// NewCartStore creates a cart hydrated from storage. Missing or malformed
// data yields an empty cart.
func NewCartStore(storage ports.StorageAdapter, logger *slog.Logger) *CartStore {
	c := &CartStore{
		storage: storage,
		logger:  logger.With(slog.String("service", "cart")),
	}
	c.items = c.hydrate()
	return c
}

func (c *CartStore) hydrate() []domain.CartItem {
	raw, ok, err := c.storage.Get(ports.StorageKeyCart)
	if err != nil {
		c.logger.Warn("failed to read stored cart", slog.String("error", err.Error()))
		return []domain.CartItem{}
	}
	if !ok {
		return []domain.CartItem{}
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("discarding malformed stored cart", slog.String("error", err.Error()))
		return []domain.CartItem{}
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items
}

// persist must be called with mu held
func (c *CartStore) persist(op string) error {
	metrics.CartMutations.WithLabelValues(op).Inc()

	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := c.storage.Set(ports.StorageKeyCart, string(data)); err != nil {
		c.logger.Error("failed to persist cart",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func (c *CartStore) find(id int64) int {
	for i := range c.items {
		if c.items[i].Product.ID == id {
			return i
		}
	}
	return -1
}

// AddToCart adds one unit of product, creating the line on first add
func (c *CartStore) AddToCart(product domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.find(product.ID); i >= 0 {
		c.items[i].Quantity++
	} else {
		c.items = append(c.items, domain.CartItem{Product: product, Quantity: 1})
	}
	return c.persist("add")
}

func (c *CartStore) IncrementQuantity(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(id)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity++
	return c.persist("increment")
}

// DecrementQuantity lowers the quantity by one but never below 1
func (c *CartStore) DecrementQuantity(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(id)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = max(1, c.items[i].Quantity-1)
	return c.persist("decrement")
}

// SetQuantity sets the quantity, clamped to a minimum of 1
func (c *CartStore) SetQuantity(id int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(id)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = max(1, quantity)
	return c.persist("set")
}

// UpdateQuantity sets the quantity verbatim. The list is persisted even when
// id is not in the cart.
func (c *CartStore) UpdateQuantity(id int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.find(id); i >= 0 {
		c.items[i].Quantity = quantity
	}
	return c.persist("update")
}

func (c *CartStore) RemoveFromCart(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, item := range c.items {
		if item.Product.ID != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	return c.persist("remove")
}

// ClearCart empties the cart and deletes the storage key
func (c *CartStore) ClearCart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = []domain.CartItem{}
	metrics.CartMutations.WithLabelValues("clear").Inc()
	if err := c.storage.Remove(ports.StorageKeyCart); err != nil {
		c.logger.Error("failed to clear stored cart", slog.String("error", err.Error()))
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Items returns a copy of the cart lines
func (c *CartStore) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Quantity returns the quantity for id, or 0 when absent
func (c *CartStore) Quantity(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.find(id); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalKg sums the quantities of all lines
func (c *CartStore) TotalKg() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(decimal.NewFromInt(int64(item.Quantity)))
	}
	return total
}

// OrderRequest builds an order from the current lines
func (c *CartStore) OrderRequest() domain.CreateOrderRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := domain.CreateOrderRequest{Items: make([]domain.OrderLine, 0, len(c.items))}
	for _, item := range c.items {
		req.Items = append(req.Items, item.Line())
	}
	return req
}
