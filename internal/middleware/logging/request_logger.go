package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/middleware/auth"
)

// Area names the part of the API a route belongs to.
func Area(route string) string {
	switch {
	case strings.HasPrefix(route, "/health"):
		return "health"
	case strings.HasPrefix(route, "/api/admin"):
		return "admin"
	case strings.HasPrefix(route, "/api/auth"):
		return "auth"
	case strings.HasPrefix(route, "/api/orders"):
		return "orders"
	case strings.HasPrefix(route, "/api/menu"):
		return "menu"
	case strings.HasPrefix(route, "/api/restaurant"):
		return "restaurant"
	}
	return "other"
}

// RequestLogger puts a request-scoped logger into the request context and
// writes one request_completed line after the error handler has run. Lines
// for admin routes carry the staff account; order routes carry the order.
// Successful health checks are logged at debug.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			route := c.Path()
			area := Area(route)
			l := base.With(
				"method", req.Method,
				"route", route,
				"area", area,
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status

			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			if u := auth.CurrentUser(c); u != nil {
				attrs = append(attrs, "user_id", u.ID, "admin", u.Email)
			}
			if id := orderRef(c, area); id != "" {
				attrs = append(attrs, "order", id)
			}

			switch {
			case status >= 500:
				l.Error("request_completed", append(attrs, "error", errString(err))...)
			case status >= 400:
				l.Warn("request_completed", attrs...)
			case area == "health":
				l.Debug("request_completed", attrs...)
			default:
				l.Info("request_completed", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}

// orderRef is the order id or number a route addresses, if any.
func orderRef(c echo.Context, area string) string {
	if n := c.Param("number"); n != "" {
		return n
	}
	if area == "orders" || strings.Contains(c.Path(), "/orders/") {
		return c.Param("id")
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
