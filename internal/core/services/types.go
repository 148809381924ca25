// internal/core/services/types.go
package services

import (
	"github.com/shopspring/decimal"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

// LoaderSnapshot is the observable state of the catalog loader
type LoaderSnapshot struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	HasMore    bool             `json:"has_more"`
	Loading    bool             `json:"loading"`
	LastError  string           `json:"last_error,omitempty"`
	RetryCount int              `json:"retry_count"`
}

// EditState is the inline stock edit state of one row
type EditState struct {
	Pending *decimal.Decimal `json:"pending,omitempty"`
	Saving  bool             `json:"saving"`
}

// SessionState is what session listeners observe
type SessionState struct {
	Token string       `json:"-"`
	User  *domain.User `json:"user"`
}

// Authenticated reports whether both a token and a user are present
func (s SessionState) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// OrderMeta is the pagination envelope of the order list
type OrderMeta struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// InventoryPage is one rendered page of the seller table
type InventoryPage struct {
	Rows     []domain.Product `json:"rows"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	SortKey  SortKey          `json:"sort_key"`
	Desc     bool             `json:"desc"`
}
