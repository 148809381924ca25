// internal/core/ports/auth.go
package ports

import (
	"context"
	"encoding/json"
)

// LoginResult is the raw login response. The user object is kept raw so the
// session can normalize the role field.
type LoginResult struct {
	Access string          `json:"access"`
	User   json.RawMessage `json:"user"`
}

// RegisterRequest is the body posted to create an account
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Role        string `json:"role"`
}

// AuthAPI defines the account endpoints
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) error
}

// TokenSource supplies the bearer token for outgoing API calls
type TokenSource interface {
	Token() string
}
