// internal/handlers/catalog.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/poultry-storefront/internal/core/services"
)

// catalogLoadTimeout bounds a page fetch that outlives its request
const catalogLoadTimeout = 15 * time.Second

// CatalogHandler drives the buyer's paged product list
type CatalogHandler struct {
	base
	loader *services.ProductLoader
}

func NewCatalogHandler(loader *services.ProductLoader, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		base:   base{logger: logger.With(slog.String("handler", "catalog"))},
		loader: loader,
	}
}

// GetCatalog handles GET /catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.loader.Snapshot())
}

// LoadNext handles POST /catalog/next. Load failures are part of the
// snapshot, not the status code.
func (h *CatalogHandler) LoadNext(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := loadContext(r)
	defer cancel()
	h.loader.LoadNext(ctx)
	h.respondJSON(w, http.StatusOK, h.loader.Snapshot())
}

// Reload handles POST /catalog/reload
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := loadContext(r)
	defer cancel()
	h.loader.ReloadFirst(ctx)
	h.respondJSON(w, http.StatusOK, h.loader.Snapshot())
}

// loadContext keeps request values but not the client's cancellation, so a
// dropped connection does not count against the loader's retries.
func loadContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), catalogLoadTimeout)
}
