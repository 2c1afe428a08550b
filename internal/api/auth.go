package api

import (
	"context"
	"net/http"

	"github.com/agenticauto/autobuilder/internal/automation"
)

// Signup creates an account and returns its session
func (c *Client) Signup(ctx context.Context, creds automation.Credentials) (*automation.Session, error) {
	var s automation.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", creds, &s, "sign up"); err != nil {
		return nil, err
	}
	return &s, nil
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, creds automation.Credentials) (*automation.Session, error) {
	var s automation.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &s, "log in"); err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout invalidates the current token on the backend
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, "log out")
}
