// internal/core/domain/product.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductType is the cut of poultry a product represents
type ProductType string

const (
	ProductTypeLeg    ProductType = "leg"
	ProductTypeWing   ProductType = "wing"
	ProductTypeBreast ProductType = "breast"
)

// Valid reports whether t is one of the known cuts
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeLeg, ProductTypeWing, ProductTypeBreast:
		return true
	}
	return false
}

// Product is a catalog record as served by the products endpoint
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	ProductType ProductType     `json:"product_type"`
	Description string          `json:"description"`
	IsAvailable bool            `json:"is_available"`
	StockKg     decimal.Decimal `json:"stock_kg"`
	Image       *string         `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the fields the catalog guarantees for every record
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidProduct)
	}
	if p.ProductType != "" && !p.ProductType.Valid() {
		return fmt.Errorf("%w: unknown product_type %q", ErrInvalidProduct, p.ProductType)
	}
	if p.StockKg.IsNegative() {
		return fmt.Errorf("%w: stock_kg cannot be negative", ErrInvalidProduct)
	}
	return nil
}

// ProductInput carries a create payload or a partial update.
// Nil fields are omitted from the request body.
type ProductInput struct {
	Name        *string          `json:"name,omitempty"`
	ProductType *ProductType     `json:"product_type,omitempty"`
	Description *string          `json:"description,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
	StockKg     *decimal.Decimal `json:"stock_kg,omitempty"`
	Image       *string          `json:"image,omitempty"`
}

// ValidateCreate checks that a create payload carries the required fields
func (in *ProductInput) ValidateCreate() error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.ProductType == nil || !in.ProductType.Valid() {
		return fmt.Errorf("%w: product_type must be one of leg, wing, breast", ErrInvalidProduct)
	}
	return in.validateCommon()
}

// ValidatePatch checks a partial update
func (in *ProductInput) ValidatePatch() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("%w: name cannot be blank", ErrInvalidProduct)
	}
	if in.ProductType != nil && !in.ProductType.Valid() {
		return fmt.Errorf("%w: unknown product_type %q", ErrInvalidProduct, *in.ProductType)
	}
	return in.validateCommon()
}

func (in *ProductInput) validateCommon() error {
	if in.StockKg != nil && in.StockKg.IsNegative() {
		return ErrInvalidStock
	}
	return nil
}

// StockPatch builds the partial update used by inline stock edits
func StockPatch(kg decimal.Decimal) ProductInput {
	return ProductInput{StockKg: &kg}
}

// AvailabilityPatch builds the partial update used by the availability toggle
func AvailabilityPatch(available bool) ProductInput {
	return ProductInput{IsAvailable: &available}
}

// ParseStock parses user input into a stock value. Blank, non-numeric and
// negative input is rejected.
func ParseStock(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrInvalidStock
	}
	kg, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidStock, raw)
	}
	if kg.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidStock, kg)
	}
	return kg, nil
}
