package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/service"
	"github.com/panaghia/restaurant/pkg/transport"
)

type RestaurantHTTP struct {
	Svc *service.RestaurantService
}

func (h *RestaurantHTTP) Info(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "restaurant.info")

	info, err := h.Svc.Info(ctx)
	if err != nil {
		return fail(l, "get_info_error", err, "cannot get restaurant info")
	}
	return c.JSON(http.StatusOK, info)
}

func (h *RestaurantHTTP) UpdateInfo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.restaurant.update_info")

	var in transport.RestaurantInfoInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "update_info_error", err)
	}
	info, err := h.Svc.UpdateInfo(ctx, in)
	if err != nil {
		return fail(l, "update_info_error", err, "cannot update restaurant info")
	}
	return c.JSON(http.StatusOK, info)
}

func (h *RestaurantHTTP) Reviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "restaurant.reviews")

	approved := true
	list, err := h.Svc.Reviews(ctx, &approved)
	if err != nil {
		return fail(l, "list_reviews_error", err, "cannot list reviews")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RestaurantHTTP) SubmitReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "restaurant.submit_review")

	var in transport.ReviewInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "submit_review_error", err)
	}
	rv, err := h.Svc.SubmitReview(ctx, in)
	if err != nil {
		return fail(l, "submit_review_error", err, "cannot save review")
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *RestaurantHTTP) AdminReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.reviews.list")

	approved, err := queryBool(c, "approved")
	if err != nil {
		return err
	}
	list, err := h.Svc.Reviews(ctx, approved)
	if err != nil {
		return fail(l, "list_reviews_error", err, "cannot list reviews")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RestaurantHTTP) ApproveReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.reviews.approve")

	var in transport.ReviewApproval
	if err := c.Bind(&in); err != nil {
		return badBody(l, "approve_review_error", err)
	}
	if err := h.Svc.SetReviewApproved(ctx, c.Param("id"), in.IsApproved); err != nil {
		return fail(l, "approve_review_error", err, "cannot update review")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Review updated"})
}

func (h *RestaurantHTTP) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.reviews.delete")

	if err := h.Svc.DeleteReview(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_review_error", err, "cannot delete review")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Review deleted"})
}
