// Package auth guards the admin API with bearer access tokens.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/service"
	"github.com/panaghia/restaurant/internal/tokens"
	"github.com/panaghia/restaurant/pkg/transport"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

const unauthorized = "Could not validate credentials"

// UserLoader resolves the subject of a valid access token to an active
// account. service.AuthService implements it.
type UserLoader interface {
	ActiveUser(ctx context.Context, userID string) (*transport.User, error)
}

type Guard struct {
	Secret []byte
	Users  UserLoader
}

// JWT verifies the Authorization: Bearer header and stores the parsed
// token in the echo context.
func (g *Guard) JWT() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    g.Secret,
		SigningMethod: "HS256",
		ContextKey:    tokenKey,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(tokens.AccessClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).
				Warn("auth_error", "status", 401, "reason", "bad bearer token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, unauthorized)
		},
	})
}

// RequireAdmin runs after JWT. It checks the token type and that the user
// still exists and is active.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth.require_admin")

		tok, ok := c.Get(tokenKey).(*jwt.Token)
		if !ok {
			l.Warn("auth_error", "status", 401, "reason", "no token in context")
			return echo.NewHTTPError(http.StatusUnauthorized, unauthorized)
		}
		claims, ok := tok.Claims.(*tokens.AccessClaims)
		if !ok || claims.Type != tokens.TypeAccess || claims.Subject == "" {
			l.Warn("auth_error", "status", 401, "reason", "not an access token")
			return echo.NewHTTPError(http.StatusUnauthorized, unauthorized)
		}

		user, err := g.Users.ActiveUser(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				l.Warn("auth_error", "status", 401, "reason", "unknown or inactive user", "user_id", claims.Subject)
				return echo.NewHTTPError(http.StatusUnauthorized, unauthorized)
			}
			l.Error("auth_error", "status", 500, "reason", "cannot load user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
		}

		c.Set(userKey, user)
		scoped := logging.FromContext(ctx).With("user_id", user.ID)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, scoped)))
		return next(c)
	}
}

// CurrentUser returns the user RequireAdmin stored, or nil.
func CurrentUser(c echo.Context) *transport.User {
	u, _ := c.Get(userKey).(*transport.User)
	return u
}

// SetUser is used by handler tests that bypass the middleware.
func SetUser(c echo.Context, u *transport.User) {
	c.Set(userKey, u)
}
