// internal/core/ports/session.go
package ports

import "github.com/ammerola/poultry-storefront/internal/core/domain"

// SessionReader exposes the signed-in user, or nil when signed out
type SessionReader interface {
	CurrentUser() *domain.User
}
