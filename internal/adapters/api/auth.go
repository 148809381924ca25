// internal/adapters/api/auth.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

const (
	loginPath    = "/auth/login/"
	registerPath = "/auth/register/"
)

func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	var res ports.LoginResult
	if err := c.doJSON(ctx, http.MethodPost, loginPath, nil, body, &res); err != nil {
		return nil, err
	}
	if res.Access == "" || len(res.User) == 0 {
		return nil, &DecodeError{Endpoint: loginPath, Err: errors.New("access token or user missing")}
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, req ports.RegisterRequest) error {
	_, err := c.send(ctx, http.MethodPost, registerPath, nil, req)
	return err
}
