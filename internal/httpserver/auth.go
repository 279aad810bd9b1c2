package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/middleware/auth"
	"github.com/panaghia/restaurant/internal/service"
	"github.com/panaghia/restaurant/pkg/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}
	resp, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err, "cannot log in")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "refresh_error", err)
	}
	if req.RefreshToken == "" {
		l.Warn("refresh_error", "status", 400, "reason", "refresh_token required")
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token required")
	}
	resp, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(l, "refresh_error", err, "cannot refresh session")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "logout_error", err)
	}
	user := auth.CurrentUser(c)
	if err := h.Svc.Logout(ctx, user.ID, req.RefreshToken); err != nil {
		return fail(l, "logout_error", err, "cannot log out")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.CurrentUser(c))
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "change_password_error", err)
	}
	user := auth.CurrentUser(c)
	if err := h.Svc.ChangePassword(ctx, user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(l, "change_password_error", err, "cannot change password")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Password changed"})
}

func (h *AuthHTTP) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.password_reset_request")

	var req transport.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "password_reset_error", err)
	}
	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return fail(l, "password_reset_error", err, "cannot start password reset")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "If the account exists, a reset code was sent"})
}

func (h *AuthHTTP) ConfirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.password_reset_confirm")

	var req transport.PasswordResetConfirm
	if err := c.Bind(&req); err != nil {
		return badBody(l, "password_reset_error", err)
	}
	if err := h.Svc.ConfirmPasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		return fail(l, "password_reset_error", err, "cannot reset password")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Password reset"})
}

type DashboardHTTP struct {
	Svc *service.DashboardService
}

func (h *DashboardHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	d, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return fail(l, "dashboard_error", err, "cannot build dashboard")
	}
	return c.JSON(http.StatusOK, d)
}
