package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/middleware/auth"
)

type Deps struct {
	Menu       *MenuHTTP
	Orders     *OrderHTTP
	Restaurant *RestaurantHTTP
	Auth       *AuthHTTP
	Dashboard  *DashboardHTTP
	Guard      *auth.Guard

	// Ready backs /health/ready. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	protected := []echo.MiddlewareFunc{d.Guard.JWT(), d.Guard.RequireAdmin}

	menu := api.Group("/menu")
	menu.GET("/categories", d.Menu.Categories)
	menu.GET("/items", d.Menu.Items)
	menu.GET("/items/:id", d.Menu.Item)
	menu.GET("/daily", d.Menu.Daily)
	menu.GET("/daily/:day", d.Menu.DailyFor)
	menu.GET("/search", d.Menu.Search)

	orders := api.Group("/orders")
	orders.POST("", d.Orders.Create)
	orders.GET("/number/:number", d.Orders.ByNumber)
	orders.GET("/:id", d.Orders.Get)
	orders.PATCH("/:id/status", d.Orders.UpdateStatus)
	orders.DELETE("/:id", d.Orders.Cancel)

	restaurant := api.Group("/restaurant")
	restaurant.GET("/info", d.Restaurant.Info)
	restaurant.GET("/reviews", d.Restaurant.Reviews)
	restaurant.POST("/reviews", d.Restaurant.SubmitReview)

	authg := api.Group("/auth")
	authg.POST("/login", d.Auth.Login)
	authg.POST("/refresh", d.Auth.Refresh)
	authg.POST("/password-reset/request", d.Auth.RequestPasswordReset)
	authg.POST("/password-reset/confirm", d.Auth.ConfirmPasswordReset)
	authg.POST("/logout", d.Auth.Logout, protected...)
	authg.GET("/me", d.Auth.Me, protected...)
	authg.POST("/change-password", d.Auth.ChangePassword, protected...)

	admin := api.Group("/admin", protected...)
	admin.GET("/dashboard", d.Dashboard.Dashboard)

	admin.GET("/orders", d.Orders.List)
	admin.PATCH("/orders/:id/status", d.Orders.UpdateStatus)
	admin.GET("/delivery/orders", d.Orders.Deliveries)
	admin.PATCH("/delivery/orders/:id/coordinates", d.Orders.SetCoordinates)

	admin.GET("/menu/categories", d.Menu.AdminCategories)
	admin.POST("/menu/categories", d.Menu.CreateCategory)
	admin.PUT("/menu/categories/:id", d.Menu.UpdateCategory)
	admin.DELETE("/menu/categories/:id", d.Menu.DeleteCategory)
	admin.GET("/menu/items", d.Menu.AdminItems)
	admin.POST("/menu/items", d.Menu.CreateItem)
	admin.PUT("/menu/items/:id", d.Menu.UpdateItem)
	admin.DELETE("/menu/items/:id", d.Menu.DeleteItem)
	admin.POST("/menu/daily", d.Menu.CreateDaily)
	admin.PUT("/menu/daily/:id", d.Menu.UpdateDaily)

	admin.GET("/reviews", d.Restaurant.AdminReviews)
	admin.PATCH("/reviews/:id/approve", d.Restaurant.ApproveReview)
	admin.DELETE("/reviews/:id", d.Restaurant.DeleteReview)

	admin.PUT("/restaurant/info", d.Restaurant.UpdateInfo)
}
