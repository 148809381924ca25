// internal/core/services/seller_inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

const DefaultSellerPageSize = 100

// SellerInventory is the seller's editable product table
type SellerInventory struct {
	catalog  ports.CatalogAPI
	pageSize int
	logger   *slog.Logger

	mu        sync.Mutex
	rows      []domain.Product
	loading   bool
	lastError string
}

func NewSellerInventory(catalog ports.CatalogAPI, pageSize int, logger *slog.Logger) *SellerInventory {
	if pageSize <= 0 {
		pageSize = DefaultSellerPageSize
	}
	return &SellerInventory{
		catalog:  catalog,
		pageSize: pageSize,
		rows:     []domain.Product{},
		logger:   logger.With(slog.String("service", "seller_inventory")),
	}
}

// Reload replaces all rows with the first page of the catalog
func (s *SellerInventory) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()

	page, err := s.catalog.ListProducts(ctx, 1, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastError = err.Error()
		s.logger.ErrorContext(ctx, "failed to load inventory", slog.String("error", err.Error()))
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	s.rows = append([]domain.Product{}, page.Results...)
	return nil
}

// Create posts a new product and puts it at the top of the table
func (s *SellerInventory) Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	created, err := s.catalog.CreateProduct(ctx, input)
	if err != nil {
		s.setError(err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.mu.Lock()
	s.rows = append([]domain.Product{*created}, s.rows...)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", created.ID),
		slog.String("name", created.Name))
	return created, nil
}

// Update sends an edit form and replaces the row with the server result
func (s *SellerInventory) Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	updated, err := s.catalog.UpdateProduct(ctx, id, input)
	if err != nil {
		s.setError(err)
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	s.Replace(*updated)
	return updated, nil
}

// Delete removes the row once the server confirms
func (s *SellerInventory) Delete(ctx context.Context, id int64) error {
	if err := s.catalog.DeleteProduct(ctx, id); err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]domain.Product, 0, len(s.rows))
	for _, p := range s.rows {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.rows = kept
	return nil
}

// ToggleAvailability flips is_available on the server and takes its result
func (s *SellerInventory) ToggleAvailability(ctx context.Context, id int64) (*domain.Product, error) {
	row, ok := s.Row(id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return s.Update(ctx, id, domain.AvailabilityPatch(!row.IsAvailable))
}

// Replace swaps in a server-confirmed record. It reports whether the row exists.
func (s *SellerInventory) Replace(p domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == p.ID {
			s.rows[i] = p
			return true
		}
	}
	return false
}

// ApplyStock sets a row's stock locally without contacting the server
func (s *SellerInventory) ApplyStock(id int64, kg decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].StockKg = kg
			return true
		}
	}
	return false
}

func (s *SellerInventory) Row(id int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.rows {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Rows returns a copy of the table
func (s *SellerInventory) Rows() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Product{}, s.rows...)
}

// Seed replaces the rows without a fetch
func (s *SellerInventory) Seed(rows []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]domain.Product{}, rows...)
}

func (s *SellerInventory) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SellerInventory) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *SellerInventory) setError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}
