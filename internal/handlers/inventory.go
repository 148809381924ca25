// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
)

// InventoryHandler handles the seller's product table
type InventoryHandler struct {
	base
	rows   *services.SellerInventory
	editor *services.StockEditor

	mu   sync.Mutex
	view services.InventoryView
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(rows *services.SellerInventory, editor *services.StockEditor, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		base:   base{logger: logger.With(slog.String("handler", "inventory"))},
		rows:   rows,
		editor: editor,
		view:   services.NewInventoryView(),
	}
}

// StockRequest carries the raw stock input. Both "12.5" and 12.5 are accepted.
type StockRequest struct {
	StockKg json.RawMessage `json:"stock_kg"`
}

// StockResponse is the row after the edit was applied locally
type StockResponse struct {
	Product domain.Product     `json:"product"`
	Edit    services.EditState `json:"edit"`
}

// ListInventory handles GET /inventory. page (zero based) and page_size
// shape this response only; the stored sort order is read, never changed.
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	view := h.view
	h.mu.Unlock()

	if err := pageFromQuery(r, &view); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, h.page(view))
}

// SortInventory handles POST /inventory/sort?key=<column>. It behaves like a
// header click: the active column flips direction, a new column starts
// ascending.
func (h *InventoryHandler) SortInventory(w http.ResponseWriter, r *http.Request) {
	key, err := services.ParseSortKey(r.URL.Query().Get("key"))
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	h.view.ToggleSort(key)
	view := h.view
	h.mu.Unlock()

	if err := pageFromQuery(r, &view); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, h.page(view))
}

func (h *InventoryHandler) page(view services.InventoryView) services.InventoryPage {
	rows := h.rows.Rows()
	return services.InventoryPage{
		Rows:     view.Apply(rows),
		Total:    len(rows),
		Page:     view.Page,
		PageSize: view.PageSize,
		SortKey:  view.SortKey,
		Desc:     view.Desc,
	}
}

// pageFromQuery applies page_size then page from the query string to view
func pageFromQuery(r *http.Request, view *services.InventoryView) error {
	page, err := queryInt(r, "page", -1)
	if err != nil {
		return err
	}
	size, err := queryInt(r, "page_size", 0)
	if err != nil {
		return err
	}
	if size > 0 {
		view.SetPageSize(size)
	}
	if page >= 0 {
		view.SetPage(page)
	}
	return nil
}

// Reload handles POST /inventory/reload
func (h *InventoryHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.rows.Reload(r.Context()); err != nil {
		h.respondServiceError(w, r, "reload inventory", err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.rows.Rows())
}

// CreateProduct handles POST /inventory
func (h *InventoryHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := input.ValidateCreate(); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.rows.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, "create product", err)
		return
	}
	h.respondJSON(w, http.StatusCreated, product)
}

// DeleteProduct handles DELETE /inventory/{id}
func (h *InventoryHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.rows.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock handles PATCH /inventory/{id}/stock. The new value shows
// immediately; the write happens after the debounce window.
func (h *InventoryHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req StockRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := rawStock(req.StockKg)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	row, ok := h.rows.Row(id)
	if !ok {
		h.respondError(w, r, http.StatusNotFound, fmt.Sprintf("product %d not found", id))
		return
	}

	if err := h.editor.ScheduleStockSave(row, raw); err != nil {
		h.respondServiceError(w, r, "schedule stock save", err)
		return
	}

	updated, _ := h.rows.Row(id)
	h.respondJSON(w, http.StatusAccepted, StockResponse{
		Product: updated,
		Edit:    h.editor.State(id),
	})
}

// ToggleAvailability handles POST /inventory/{id}/toggle
func (h *InventoryHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.rows.ToggleAvailability(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, "toggle availability", err)
		return
	}
	h.respondJSON(w, http.StatusOK, product)
}

// rawStock returns the text the seller typed, whether it arrived as a JSON
// string or a JSON number
func rawStock(msg json.RawMessage) (string, error) {
	if len(msg) == 0 {
		return "", fmt.Errorf("stock_kg is required")
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return "", fmt.Errorf("invalid stock_kg: %w", err)
		}
		return s, nil
	}
	if _, err := strconv.ParseFloat(string(msg), 64); err != nil {
		return "", fmt.Errorf("invalid stock_kg %s", msg)
	}
	return string(msg), nil
}
