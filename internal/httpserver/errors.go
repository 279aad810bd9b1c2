package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/service"
)

var statusOf = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrInvalidResetToken, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrAccountLocked, http.StatusLocked},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests},
}

// fail logs err under event and turns it into the matching HTTP error.
// Unknown errors become a 500 with publicMsg.
func fail(l *slog.Logger, event string, err error, publicMsg string) error {
	for _, m := range statusOf {
		if errors.Is(err, m.err) {
			l.Warn(event, "status", m.status, "reason", err.Error())
			return echo.NewHTTPError(m.status, err.Error())
		}
	}
	l.Error(event, "status", http.StatusInternalServerError, "reason", publicMsg, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, publicMsg)
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be true or false")
	}
	return &b, nil
}
