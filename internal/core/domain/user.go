// internal/core/domain/user.go
package domain

import (
	"encoding/json"
	"fmt"
)

// Role distinguishes buyers from sellers
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// User is the authenticated account profile
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// IsSeller reports whether the user manages inventory
func (u *User) IsSeller() bool {
	return u != nil && u.Role == RoleSeller
}

// roleKeys lists the fields the backend has used for the role, in priority order
var roleKeys = []string{"role", "user_role", "userRole", "type"}

// NormalizeUser builds a User from a loosely shaped profile object.
// The role is taken from the first non-empty role field, defaulting to buyer.
func NormalizeUser(raw json.RawMessage) (*User, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	u := &User{
		Username:    stringField(fields, "username"),
		Email:       stringField(fields, "email"),
		FirstName:   stringField(fields, "first_name"),
		LastName:    stringField(fields, "last_name"),
		PhoneNumber: stringField(fields, "phone_number"),
		Address:     stringField(fields, "address"),
		Role:        RoleBuyer,
	}
	if id, ok := fields["id"].(float64); ok {
		u.ID = int64(id)
	}
	for _, k := range roleKeys {
		if r := stringField(fields, k); r != "" {
			u.Role = Role(r)
			break
		}
	}
	return u, nil
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
