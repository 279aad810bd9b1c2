package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/ready", nil, nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]transport.MenuCategory, error) {
	var out []transport.MenuCategory
	if err := c.do(ctx, http.MethodGet, "/api/menu/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MenuItems(ctx context.Context, categoryID string, popularOnly bool) ([]transport.MenuItem, error) {
	q := url.Values{}
	if categoryID != "" {
		q.Set("category_id", categoryID)
	}
	if popularOnly {
		q.Set("popular_only", "true")
	}
	var out []transport.MenuItem
	if err := c.do(ctx, http.MethodGet, "/api/menu/items", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MenuItem(ctx context.Context, id string) (*transport.MenuItem, error) {
	var out transport.MenuItem
	if err := c.do(ctx, http.MethodGet, "/api/menu/items/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchMenu(ctx context.Context, query string, limit int) (*transport.MenuSearchResult, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out transport.MenuSearchResult
	if err := c.do(ctx, http.MethodGet, "/api/menu/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DailyMenu(ctx context.Context) ([]transport.DailyMenu, error) {
	var out []transport.DailyMenu
	if err := c.do(ctx, http.MethodGet, "/api/menu/daily", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DailyMenuFor(ctx context.Context, day string) (*transport.DailyMenu, error) {
	var out transport.DailyMenu
	if err := c.do(ctx, http.MethodGet, "/api/menu/daily/"+url.PathEscape(day), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*transport.Order, error) {
	var out transport.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Order(ctx context.Context, id string) (*transport.Order, error) {
	var out transport.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrderByNumber(ctx context.Context, number string) (*transport.Order, error) {
	var out transport.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/number/"+url.PathEscape(number), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, s orderstatus.Status) (*transport.Order, error) {
	var out transport.Order
	err := c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(id)+"/status", nil, transport.StatusUpdate{Status: s}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) RestaurantInfo(ctx context.Context) (*transport.RestaurantInfo, error) {
	var out transport.RestaurantInfo
	if err := c.do(ctx, http.MethodGet, "/api/restaurant/info", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reviews(ctx context.Context) (*transport.ReviewList, error) {
	var out transport.ReviewList
	if err := c.do(ctx, http.MethodGet, "/api/restaurant/reviews", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitReview(ctx context.Context, in transport.ReviewInput) (*transport.Review, error) {
	var out transport.Review
	if err := c.do(ctx, http.MethodPost, "/api/restaurant/reviews", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
