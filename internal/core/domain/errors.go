// internal/core/domain/errors.go
package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidStock     = errors.New("stock must be a finite number >= 0")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrInvalidReport    = errors.New("invalid report request")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyCart        = errors.New("cart is empty")
)
