package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/middleware/auth"
	"github.com/panaghia/restaurant/pkg/transport"
)

func serveLogged(t *testing.T, level, method, target string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewTo(&buf, level)))

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/health/live", ok)
	e.GET("/api/orders/:id", ok)
	e.GET("/api/orders/number/:number", ok)
	e.GET("/api/admin/dashboard", func(c echo.Context) error {
		auth.SetUser(c, &transport.User{ID: "u1", Email: "admin@panaghia.ro"})
		return c.JSON(http.StatusOK, map[string]int{"orders": 1})
	})
	e.GET("/api/menu/items/:id", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Menu item not found")
	})
	e.GET("/api/restaurant/info", func(echo.Context) error { return errors.New("db down") })

	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	line := strings.TrimSpace(buf.String())
	if line == "" {
		return nil
	}
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "request_completed", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	return rec
}

func TestRequestLogger(t *testing.T) {
	t.Run("order route carries the order", func(t *testing.T) {
		rec := serveLogged(t, "info", http.MethodGet, "/api/orders/o-42")
		require.NotNil(t, rec)
		assert.Equal(t, "INFO", rec["level"])
		assert.Equal(t, "orders", rec["area"])
		assert.Equal(t, "/api/orders/:id", rec["route"])
		assert.Equal(t, "o-42", rec["order"])
		assert.EqualValues(t, 200, rec["status"])
	})

	t.Run("lookup by number", func(t *testing.T) {
		rec := serveLogged(t, "info", http.MethodGet, "/api/orders/number/ORD-1")
		require.NotNil(t, rec)
		assert.Equal(t, "ORD-1", rec["order"])
	})

	t.Run("admin route carries the account", func(t *testing.T) {
		rec := serveLogged(t, "info", http.MethodGet, "/api/admin/dashboard")
		require.NotNil(t, rec)
		assert.Equal(t, "admin", rec["area"])
		assert.Equal(t, "u1", rec["user_id"])
		assert.Equal(t, "admin@panaghia.ro", rec["admin"])
		assert.NotContains(t, rec, "order")
	})

	t.Run("client error is a warning", func(t *testing.T) {
		rec := serveLogged(t, "info", http.MethodGet, "/api/menu/items/x")
		require.NotNil(t, rec)
		assert.Equal(t, "WARN", rec["level"])
		assert.EqualValues(t, 404, rec["status"])
	})

	t.Run("server error keeps the cause", func(t *testing.T) {
		rec := serveLogged(t, "info", http.MethodGet, "/api/restaurant/info")
		require.NotNil(t, rec)
		assert.Equal(t, "ERROR", rec["level"])
		assert.Equal(t, "db down", rec["error"])
	})

	t.Run("health checks stay out of info logs", func(t *testing.T) {
		assert.Nil(t, serveLogged(t, "info", http.MethodGet, "/health/live"))
		rec := serveLogged(t, "debug", http.MethodGet, "/health/live")
		require.NotNil(t, rec)
		assert.Equal(t, "health", rec["area"])
	})
}

func TestArea(t *testing.T) {
	assert.Equal(t, "admin", Area("/api/admin/orders/:id/status"))
	assert.Equal(t, "auth", Area("/api/auth/login"))
	assert.Equal(t, "menu", Area("/api/menu/search"))
	assert.Equal(t, "other", Area(""))
}
