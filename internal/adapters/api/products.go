// internal/adapters/api/products.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

const productsPath = "/api/products/"

func productPath(id int64) string {
	return productsPath + strconv.FormatInt(id, 10) + "/"
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	return q
}

// ListProducts fetches one page of the catalog
func (c *Client) ListProducts(ctx context.Context, page, pageSize int) (*domain.Page[domain.Product], error) {
	return decodePage(ctx, c, productsPath, pageQuery(page, pageSize), (*domain.Product).Validate)
}

// SearchProducts fetches one page of catalog matches for query
func (c *Client) SearchProducts(ctx context.Context, query string, page, pageSize int) (*domain.Page[domain.Product], error) {
	q := pageQuery(page, pageSize)
	if query != "" {
		q.Set("search", query)
	}
	return decodePage(ctx, c, productsPath, q, (*domain.Product).Validate)
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.doJSON(ctx, http.MethodGet, productPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return validProduct(productPath(id), &p)
}

func (c *Client) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	if err := input.ValidateCreate(); err != nil {
		return nil, err
	}
	var p domain.Product
	if err := c.doJSON(ctx, http.MethodPost, productsPath, nil, input, &p); err != nil {
		return nil, err
	}
	return validProduct(productsPath, &p)
}

// UpdateProduct sends a partial update; nil fields of input are left unchanged
func (c *Client) UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	if err := input.ValidatePatch(); err != nil {
		return nil, err
	}
	var p domain.Product
	if err := c.doJSON(ctx, http.MethodPatch, productPath(id), nil, input, &p); err != nil {
		return nil, err
	}
	return validProduct(productPath(id), &p)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := c.send(ctx, http.MethodDelete, productPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

func validProduct(path string, p *domain.Product) (*domain.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, &DecodeError{Endpoint: path, Err: err}
	}
	return p, nil
}
