package apiclient

import (
	"context"
	"net/http"

	"github.com/panaghia/restaurant/pkg/transport"
)

func (c *Client) Login(ctx context.Context, email, password string) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, transport.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, transport.RefreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout sends the tokens directly; it never triggers a refresh.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	body, err := encode(transport.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, "/api/auth/logout", nil, body, accessToken, nil)
}

func (c *Client) Me(ctx context.Context) (*transport.User, error) {
	var out transport.User
	if err := c.doAuth(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	in := transport.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return c.doAuth(ctx, http.MethodPost, "/api/auth/change-password", nil, in, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/password-reset/request", nil, transport.PasswordResetRequest{Email: email}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	in := transport.PasswordResetConfirm{Token: token, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/password-reset/confirm", nil, in, nil)
}
