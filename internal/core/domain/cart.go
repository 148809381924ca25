// internal/core/domain/cart.go
package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartItem is one product line in the buyer's cart
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// UnmarshalJSON accepts the older quantity_kg key written by earlier clients
func (c *CartItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Product    Product `json:"product"`
		Quantity   *int    `json:"quantity"`
		QuantityKg *int    `json:"quantity_kg"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Product = raw.Product
	switch {
	case raw.Quantity != nil:
		c.Quantity = *raw.Quantity
	case raw.QuantityKg != nil:
		c.Quantity = *raw.QuantityKg
	default:
		c.Quantity = 0
	}
	return nil
}

// Line converts the cart item into an order line
func (c CartItem) Line() OrderLine {
	return OrderLine{
		ProductID:  c.Product.ID,
		QuantityKg: decimal.NewFromInt(int64(c.Quantity)),
	}
}
