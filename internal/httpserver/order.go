package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/middleware/auth"
	"github.com/panaghia/restaurant/internal/service"
	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_order_error", err)
	}
	order, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		return fail(l, "create_order_error", err, "cannot create order")
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	order, err := h.Svc.Order(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_order_error", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ByNumber(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.by_number")

	order, err := h.Svc.OrderByNumber(ctx, c.Param("number"))
	if err != nil {
		return fail(l, "get_order_error", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus serves both the public and the admin route; the admin one
// records who made the change.
func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var in transport.StatusUpdate
	if err := c.Bind(&in); err != nil {
		return badBody(l, "update_status_error", err)
	}
	by := ""
	if u := auth.CurrentUser(c); u != nil {
		by = u.Email
	}
	order, err := h.Svc.UpdateStatus(ctx, c.Param("id"), in.Status, by)
	if err != nil {
		return fail(l, "update_status_error", err, "cannot update order status")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	if _, err := h.Svc.Cancel(ctx, c.Param("id"), ""); err != nil {
		return fail(l, "cancel_order_error", err, "cannot cancel order")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Order cancelled"})
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders.list")

	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	skip, err := queryInt(c, "skip")
	if err != nil {
		return err
	}
	list, err := h.Svc.List(ctx, transport.OrderFilter{
		Status:    orderstatus.Status(c.QueryParam("status")),
		OrderType: transport.OrderType(c.QueryParam("order_type")),
		DateFrom:  c.QueryParam("date_from"),
		DateTo:    c.QueryParam("date_to"),
		Limit:     limit,
		Skip:      skip,
	})
	if err != nil {
		return fail(l, "list_orders_error", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHTTP) Deliveries(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delivery.list")

	list, err := h.Svc.Deliveries(ctx, orderstatus.Status(c.QueryParam("status")))
	if err != nil {
		return fail(l, "list_deliveries_error", err, "cannot list deliveries")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHTTP) SetCoordinates(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delivery.coordinates")

	var at transport.Coordinates
	if err := c.Bind(&at); err != nil {
		return badBody(l, "set_coordinates_error", err)
	}
	if err := h.Svc.SetCoordinates(ctx, c.Param("id"), at); err != nil {
		return fail(l, "set_coordinates_error", err, "cannot save coordinates")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Coordinates updated"})
}
