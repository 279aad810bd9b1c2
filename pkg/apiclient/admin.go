package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

func (c *Client) Dashboard(ctx context.Context) (*transport.Dashboard, error) {
	var out transport.Dashboard
	if err := c.doAuth(ctx, http.MethodGet, "/api/admin/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminOrders(ctx context.Context, f transport.OrderFilter) (*transport.OrderList, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.OrderType != "" {
		q.Set("order_type", string(f.OrderType))
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	var out transport.OrderList
	if err := c.doAuth(ctx, http.MethodGet, "/api/admin/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetOrderStatus implements orderstatus.Updater over the admin endpoint.
func (c *Client) SetOrderStatus(ctx context.Context, id string, s orderstatus.Status) error {
	return c.doAuth(ctx, http.MethodPatch, "/api/admin/orders/"+url.PathEscape(id)+"/status", nil, transport.StatusUpdate{Status: s}, nil)
}

func (c *Client) DeliveryOrders(ctx context.Context, status orderstatus.Status) (*transport.DeliveryList, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var out transport.DeliveryList
	if err := c.doAuth(ctx, http.MethodGet, "/api/admin/delivery/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetDeliveryCoordinates(ctx context.Context, id string, at transport.Coordinates) error {
	return c.doAuth(ctx, http.MethodPatch, "/api/admin/delivery/orders/"+url.PathEscape(id)+"/coordinates", nil, at, nil)
}

// AdminCategories lists every category, inactive ones included.
func (c *Client) AdminCategories(ctx context.Context) ([]transport.MenuCategory, error) {
	var out []transport.MenuCategory
	if err := c.doAuth(ctx, http.MethodGet, "/api/admin/menu/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminItems lists every item, unavailable ones included.
func (c *Client) AdminItems(ctx context.Context, categoryID string) ([]transport.MenuItem, error) {
	q := url.Values{}
	if categoryID != "" {
		q.Set("category_id", categoryID)
	}
	var out []transport.MenuItem
	if err := c.doAuth(ctx, http.MethodGet, "/api/admin/menu/items", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in transport.CategoryInput) (*transport.MenuCategory, error) {
	var out transport.MenuCategory
	if err := c.doAuth(ctx, http.MethodPost, "/api/admin/menu/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in transport.CategoryInput) (*transport.MenuCategory, error) {
	var out transport.MenuCategory
	if err := c.doAuth(ctx, http.MethodPut, "/api/admin/menu/categories/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.doAuth(ctx, http.MethodDelete, "/api/admin/menu/categories/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) CreateMenuItem(ctx context.Context, in transport.MenuItemInput) (*transport.MenuItem, error) {
	var out transport.MenuItem
	if err := c.doAuth(ctx, http.MethodPost, "/api/admin/menu/items", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, id string, in transport.MenuItemInput) (*transport.MenuItem, error) {
	var out transport.MenuItem
	if err := c.doAuth(ctx, http.MethodPut, "/api/admin/menu/items/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	return c.doAuth(ctx, http.MethodDelete, "/api/admin/menu/items/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) CreateDailyMenu(ctx context.Context, in transport.DailyMenuInput) (*transport.DailyMenu, error) {
	var out transport.DailyMenu
	if err := c.doAuth(ctx, http.MethodPost, "/api/admin/menu/daily", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDailyMenu(ctx context.Context, id string, in transport.DailyMenuInput) (*transport.DailyMenu, error) {
	var out transport.DailyMenu
	if err := c.doAuth(ctx, http.MethodPut, "/api/admin/menu/daily/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminReviews lists reviews; approved nil means all.
func (c *Client) AdminReviews(ctx context.Context, approved *bool) (*transport.ReviewList, error) {
	q := url.Values{}
	if approved != nil {
		q.Set("approved", strconv.FormatBool(*approved))
	}
	var out transport.ReviewList
	if err := c.doAuth(ctx, http.MethodGet, "/api/admin/reviews", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveReview(ctx context.Context, id string, approved bool) error {
	return c.doAuth(ctx, http.MethodPatch, "/api/admin/reviews/"+url.PathEscape(id)+"/approve", nil, transport.ReviewApproval{IsApproved: approved}, nil)
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.doAuth(ctx, http.MethodDelete, "/api/admin/reviews/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) UpdateRestaurantInfo(ctx context.Context, in transport.RestaurantInfoInput) (*transport.RestaurantInfo, error) {
	var out transport.RestaurantInfo
	if err := c.doAuth(ctx, http.MethodPut, "/api/admin/restaurant/info", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
