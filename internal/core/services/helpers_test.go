// internal/core/services/helpers_test.go
package services_test

import (
	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

type stubSession struct {
	user *domain.User
}

func (s stubSession) CurrentUser() *domain.User { return s.user }

var (
	buyer  = stubSession{user: &domain.User{ID: 7, Username: "buyer", Role: domain.RoleBuyer}}
	seller = stubSession{user: &domain.User{ID: 3, Username: "seller", Role: domain.RoleSeller}}
)
