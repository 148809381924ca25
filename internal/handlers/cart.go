// internal/handlers/cart.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/core/services"
)

// Cart quantity operations accepted by PATCH /cart/{id}
const (
	CartOpIncrement = "increment"
	CartOpDecrement = "decrement"
	CartOpSet       = "set" // clamped to 1
	CartOpRemove    = "remove"
)

// CartHandler exposes the buyer's cart
type CartHandler struct {
	base
	cart    *services.CartStore
	catalog ports.CatalogAPI
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cart *services.CartStore, catalog ports.CatalogAPI, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		base:    base{logger: logger.With(slog.String("handler", "cart"))},
		cart:    cart,
		catalog: catalog,
	}
}

// CartResponse is the rendered cart
type CartResponse struct {
	Items   []domain.CartItem `json:"items"`
	Count   int               `json:"count"`
	TotalKg decimal.Decimal   `json:"total_kg"`
}

// AddToCartRequest names the product to add
type AddToCartRequest struct {
	ProductID int64 `json:"product_id"`
}

// UpdateCartRequest is a quantity operation on one line
type UpdateCartRequest struct {
	Op       string `json:"op"`
	Quantity int    `json:"quantity,omitempty"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.render())
}

// AddToCart handles POST /cart. The product is fetched so the cart keeps a
// current snapshot of it.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProductID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "product_id is required")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		h.respondServiceError(w, r, "get product", err)
		return
	}

	if err := h.cart.AddToCart(*product); err != nil {
		h.logger.WarnContext(ctx, "cart not persisted", slog.String("error", err.Error()))
	}

	h.respondJSON(w, http.StatusCreated, h.render())
}

// UpdateItem handles PATCH /cart/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateCartRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if h.cart.Quantity(id) == 0 {
		h.respondError(w, r, http.StatusNotFound, fmt.Sprintf("product %d is not in the cart", id))
		return
	}

	switch req.Op {
	case CartOpIncrement:
		err = h.cart.IncrementQuantity(id)
	case CartOpDecrement:
		err = h.cart.DecrementQuantity(id)
	case CartOpSet:
		err = h.cart.SetQuantity(id, req.Quantity)
	case CartOpRemove:
		err = h.cart.RemoveFromCart(id)
	default:
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown op %q", req.Op))
		return
	}

	// The in-memory transition stands even when the write fails
	if err != nil {
		h.logger.WarnContext(ctx, "cart not persisted",
			slog.String("op", req.Op),
			slog.String("error", err.Error()))
	}

	h.respondJSON(w, http.StatusOK, h.render())
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.ClearCart(); err != nil {
		h.logger.WarnContext(r.Context(), "cart not cleared from storage",
			slog.String("error", err.Error()))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) render() CartResponse {
	items := h.cart.Items()
	return CartResponse{
		Items:   items,
		Count:   len(items),
		TotalKg: h.cart.TotalKg(),
	}
}
