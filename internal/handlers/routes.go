// internal/handlers/routes.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/handlers/middleware"
	"github.com/ammerola/poultry-storefront/internal/pkg/config"
)

// Handlers groups the control API handlers
type Handlers struct {
	Health    *HealthHandler
	Session   *SessionHandler
	Cart      *CartHandler
	Catalog   *CatalogHandler
	Inventory *InventoryHandler
	Orders    *OrderHandler
	Reports   *ReportHandler
}

// RegisterRoutes mounts every route on mux
func RegisterRoutes(mux *http.ServeMux, h Handlers, enableMetrics bool) {
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("GET /session", h.Session.GetSession)
	mux.HandleFunc("POST /session", h.Session.Login)
	mux.HandleFunc("DELETE /session", h.Session.Logout)
	mux.HandleFunc("POST /session/register", h.Session.Register)
	mux.HandleFunc("GET /preferences", h.Session.GetPreferences)
	mux.HandleFunc("POST /preferences/mode", h.Session.ToggleMode)

	// Buyer
	mux.HandleFunc("GET /cart", h.Cart.GetCart)
	mux.HandleFunc("POST /cart", h.Cart.AddToCart)
	mux.HandleFunc("DELETE /cart", h.Cart.ClearCart)
	mux.HandleFunc("PATCH /cart/{id}", h.Cart.UpdateItem)
	mux.HandleFunc("GET /catalog", h.Catalog.GetCatalog)
	mux.HandleFunc("POST /catalog/next", h.Catalog.LoadNext)
	mux.HandleFunc("POST /catalog/reload", h.Catalog.Reload)

	// Seller
	mux.HandleFunc("GET /inventory", h.Inventory.ListInventory)
	mux.HandleFunc("POST /inventory", h.Inventory.CreateProduct)
	mux.HandleFunc("POST /inventory/reload", h.Inventory.Reload)
	mux.HandleFunc("POST /inventory/sort", h.Inventory.SortInventory)
	mux.HandleFunc("DELETE /inventory/{id}", h.Inventory.DeleteProduct)
	mux.HandleFunc("PATCH /inventory/{id}/stock", h.Inventory.UpdateStock)
	mux.HandleFunc("POST /inventory/{id}/toggle", h.Inventory.ToggleAvailability)

	mux.HandleFunc("GET /orders", h.Orders.ListOrders)
	mux.HandleFunc("POST /orders", h.Orders.PlaceOrder)
	mux.HandleFunc("DELETE /orders/filters", h.Orders.ClearFilters)
	mux.HandleFunc("PATCH /orders/{id}/status", h.Orders.UpdateStatus)

	mux.HandleFunc("GET /stats", h.Reports.GetStats)
	mux.HandleFunc("GET /reports", h.Reports.ListReports)
	mux.HandleFunc("POST /reports", h.Reports.CreateReport)
	mux.HandleFunc("GET /reports/{id}/summary", h.Reports.Summary)
	mux.HandleFunc("POST /reports/{id}/archive", h.Reports.Archive)

	if enableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
}

// NewServer builds the control API server with the middleware chain applied.
// ctx bounds the rate limiter's background cleanup.
func NewServer(ctx context.Context, cfg *config.Config, h Handlers, session ports.SessionReader, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h, cfg.Server.EnableMetrics)

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Session(session),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Metrics,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.SecureHeaders,
	}
	if cfg.Server.RateLimitRequests > 0 {
		mws = append(mws, middleware.RateLimit(ctx, cfg.Server.RateLimitRequests, cfg.Server.RateLimitDuration))
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, mws...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
