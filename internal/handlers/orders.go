// internal/handlers/orders.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
)

// OrderHandler exposes the order board
type OrderHandler struct {
	base
	board *services.OrderBoard
	cart  *services.CartStore
	stats *services.StatsService
}

// NewOrderHandler creates the handler. stats may be nil; when set, cached
// aggregates are dropped after every order change.
func NewOrderHandler(board *services.OrderBoard, cart *services.CartStore, stats *services.StatsService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		base:  base{logger: logger.With(slog.String("handler", "orders"))},
		board: board,
		cart:  cart,
		stats: stats,
	}
}

// OrderListResponse is one page of orders with the filters that produced it
type OrderListResponse struct {
	Orders  []domain.Order      `json:"orders"`
	Meta    services.OrderMeta  `json:"meta"`
	Filters domain.OrderFilters `json:"filters"`
}

// StatusRequest moves an order to a new status
type StatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// ListOrders handles GET /orders. Any filter in the query replaces the
// board's filters and returns to page 1 unless page is also given.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Has("status") || q.Has("search") || q.Has("start_date") || q.Has("end_date") {
		if status := q.Get("status"); status != "" {
			if _, err := domain.ParseOrderStatus(status); err != nil {
				h.respondError(w, r, http.StatusBadRequest, err.Error())
				return
			}
		}
		h.board.SetFilters(domain.OrderFilters{
			Status:    q.Get("status"),
			Search:    q.Get("search"),
			StartDate: q.Get("start_date"),
			EndDate:   q.Get("end_date"),
		})
	}

	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if page > 0 {
		h.board.SetPage(page)
	}

	if err := h.board.Refresh(r.Context()); err != nil {
		h.respondServiceError(w, r, "list orders", err)
		return
	}

	h.respondJSON(w, http.StatusOK, OrderListResponse{
		Orders:  h.board.Orders(),
		Meta:    h.board.Meta(),
		Filters: h.board.Filters(),
	})
}

// ClearFilters handles DELETE /orders/filters
func (h *OrderHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.board.ClearFilters()
	h.respondJSON(w, http.StatusOK, h.board.Filters())
}

// UpdateStatus handles PATCH /orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.board.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondServiceError(w, r, "update order status", err)
		return
	}
	h.invalidateStats(r)
	h.respondJSON(w, http.StatusOK, order)
}

// PlaceOrder handles POST /orders. The cart is submitted as is.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.board.PlaceOrder(r.Context(), h.cart)
	if err != nil {
		h.respondServiceError(w, r, "place order", err)
		return
	}
	h.invalidateStats(r)
	h.respondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) invalidateStats(r *http.Request) {
	if h.stats == nil {
		return
	}
	// Failures are logged by the service
	_ = h.stats.Invalidate(r.Context())
}
