// internal/core/ports/catalog.go
package ports

import (
	"context"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

// CatalogAPI defines the product endpoints of the backend
type CatalogAPI interface {
	ListProducts(ctx context.Context, page, pageSize int) (*domain.Page[domain.Product], error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) (*domain.Page[domain.Product], error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}
