// internal/core/services/product_loader.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/pkg/metrics"
)

const (
	DefaultCatalogPageSize = 12
	maxLoadRetries         = 2
	defaultLoadError       = "failed to load products"
)

// ProductLoader pages through the public catalog for buyers
type ProductLoader struct {
	catalog  ports.CatalogAPI
	session  ports.SessionReader
	pageSize int
	logger   *slog.Logger

	// inFlight guards against overlapping requests independently of the
	// exposed loading flag
	inFlight atomic.Bool

	mu         sync.Mutex
	pages      [][]domain.Product
	page       int
	hasMore    bool
	loading    bool
	lastError  string
	retryCount int
}

// NewProductLoader creates a loader. pageSize <= 0 selects the default.
func NewProductLoader(catalog ports.CatalogAPI, session ports.SessionReader, pageSize int, logger *slog.Logger) *ProductLoader {
	if pageSize <= 0 {
		pageSize = DefaultCatalogPageSize
	}
	return &ProductLoader{
		catalog:  catalog,
		session:  session,
		pageSize: pageSize,
		page:     1,
		hasMore:  true,
		logger:   logger.With(slog.String("service", "product_loader")),
	}
}

// Start performs the initial load. Sellers skip it.
func (l *ProductLoader) Start(ctx context.Context) {
	if l.isSeller() {
		return
	}
	l.ReloadFirst(ctx)
}

// ReloadFirst fetches page 1 and replaces the accumulated pages
func (l *ProductLoader) ReloadFirst(ctx context.Context) {
	l.load(ctx, 1)
}

// LoadNext fetches the page after the current one and appends it
func (l *ProductLoader) LoadNext(ctx context.Context) {
	l.mu.Lock()
	hasMore, target := l.hasMore, l.page+1
	l.mu.Unlock()

	if !hasMore {
		return
	}
	l.load(ctx, target)
}

func (l *ProductLoader) isSeller() bool {
	return l.session != nil && l.session.CurrentUser().IsSeller()
}

func (l *ProductLoader) load(ctx context.Context, target int) {
	if l.isSeller() {
		return
	}
	if !l.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer l.inFlight.Store(false)

	l.mu.Lock()
	if !l.hasMore && target != 1 {
		l.mu.Unlock()
		return
	}
	l.loading = true
	l.lastError = ""
	l.mu.Unlock()

	page, err := l.catalog.ListProducts(ctx, target, l.pageSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	defer func() { l.loading = false }()

	if err != nil {
		l.handleError(ctx, target, err)
		return
	}

	if len(page.Results) == 0 && target != 1 {
		l.hasMore = false
		return
	}

	if target == 1 {
		l.pages = [][]domain.Product{page.Results}
	} else {
		l.pages = append(l.pages, page.Results)
	}
	l.hasMore = page.HasNext()
	l.page = target
	l.retryCount = 0
	metrics.CatalogPagesLoaded.Inc()

	l.logger.DebugContext(ctx, "catalog page loaded",
		slog.Int("page", target),
		slog.Int("count", len(page.Results)),
		slog.Bool("has_more", l.hasMore))
}

// handleError must be called with mu held
func (l *ProductLoader) handleError(ctx context.Context, target int, err error) {
	// an abandoned caller is neither a failure nor a retry
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		l.logger.DebugContext(ctx, "catalog page abandoned",
			slog.Int("page", target),
			slog.String("error", err.Error()))
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		metrics.CatalogLoadFailures.WithLabelValues(metrics.FailureNotFound).Inc()
		l.hasMore = false
		return
	}

	metrics.CatalogLoadFailures.WithLabelValues(metrics.FailureError).Inc()
	l.lastError = err.Error()
	if l.lastError == "" {
		l.lastError = defaultLoadError
	}
	if l.retryCount < maxLoadRetries {
		l.retryCount++
	} else {
		l.hasMore = false
	}

	l.logger.WarnContext(ctx, "catalog page failed",
		slog.Int("page", target),
		slog.Int("retry_count", l.retryCount),
		slog.Bool("has_more", l.hasMore),
		slog.String("error", err.Error()))
}

// Snapshot returns the current loader state
func (l *ProductLoader) Snapshot() LoaderSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	products := make([]domain.Product, 0)
	for _, p := range l.pages {
		products = append(products, p...)
	}
	return LoaderSnapshot{
		Products:   products,
		Page:       l.page,
		HasMore:    l.hasMore,
		Loading:    l.loading,
		LastError:  l.lastError,
		RetryCount: l.retryCount,
	}
}
