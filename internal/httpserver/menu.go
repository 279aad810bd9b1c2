package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/service"
	"github.com/panaghia/restaurant/pkg/transport"
)

type MenuHTTP struct {
	Svc *service.MenuService
}

func (h *MenuHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.categories")

	cats, err := h.Svc.Categories(ctx, true)
	if err != nil {
		return fail(l, "list_categories_error", err, "cannot list categories")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *MenuHTTP) Items(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.items")

	popular, err := queryBool(c, "popular_only")
	if err != nil {
		return err
	}
	items, err := h.Svc.Items(ctx, c.QueryParam("category_id"), popular != nil && *popular, true)
	if err != nil {
		return fail(l, "list_items_error", err, "cannot list menu items")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHTTP) Item(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.item")

	item, err := h.Svc.Item(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_item_error", err, "cannot get menu item")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.search")

	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	res, err := h.Svc.Search(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return fail(l, "search_error", err, "search failed")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MenuHTTP) Daily(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.daily")

	menus, err := h.Svc.DailyMenus(ctx)
	if err != nil {
		return fail(l, "list_daily_error", err, "cannot list daily menus")
	}
	return c.JSON(http.StatusOK, menus)
}

func (h *MenuHTTP) DailyFor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.daily_for")

	menu, err := h.Svc.DailyMenuFor(ctx, c.Param("day"))
	if err != nil {
		return fail(l, "get_daily_error", err, "cannot get daily menu")
	}
	return c.JSON(http.StatusOK, menu)
}

func (h *MenuHTTP) AdminCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.categories")

	cats, err := h.Svc.Categories(ctx, false)
	if err != nil {
		return fail(l, "list_categories_error", err, "cannot list categories")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *MenuHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.create_category")

	var in transport.CategoryInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "create_category_error", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, in)
	if err != nil {
		return fail(l, "create_category_error", err, "cannot create category")
	}
	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *MenuHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.update_category")

	var in transport.CategoryInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "update_category_error", err)
	}
	cat, err := h.Svc.UpdateCategory(ctx, c.Param("id"), in)
	if err != nil {
		return fail(l, "update_category_error", err, "cannot update category")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *MenuHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.delete_category")

	if err := h.Svc.DeleteCategory(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_category_error", err, "cannot delete category")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Category deleted"})
}

func (h *MenuHTTP) AdminItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.items")

	items, err := h.Svc.Items(ctx, c.QueryParam("category_id"), false, false)
	if err != nil {
		return fail(l, "list_items_error", err, "cannot list menu items")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.create_item")

	var in transport.MenuItemInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "create_item_error", err)
	}
	item, err := h.Svc.CreateItem(ctx, in)
	if err != nil {
		return fail(l, "create_item_error", err, "cannot create menu item")
	}
	l.Info("create_item_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *MenuHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.update_item")

	var in transport.MenuItemInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "update_item_error", err)
	}
	item, err := h.Svc.UpdateItem(ctx, c.Param("id"), in)
	if err != nil {
		return fail(l, "update_item_error", err, "cannot update menu item")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.delete_item")

	if err := h.Svc.DeleteItem(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_item_error", err, "cannot delete menu item")
	}
	return c.JSON(http.StatusOK, transport.Message{Message: "Menu item deleted"})
}

func (h *MenuHTTP) CreateDaily(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.create_daily")

	var in transport.DailyMenuInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "create_daily_error", err)
	}
	menu, err := h.Svc.CreateDailyMenu(ctx, in)
	if err != nil {
		return fail(l, "create_daily_error", err, "cannot create daily menu")
	}
	return c.JSON(http.StatusCreated, menu)
}

func (h *MenuHTTP) UpdateDaily(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.menu.update_daily")

	var in transport.DailyMenuInput
	if err := c.Bind(&in); err != nil {
		return badBody(l, "update_daily_error", err)
	}
	menu, err := h.Svc.UpdateDailyMenu(ctx, c.Param("id"), in)
	if err != nil {
		return fail(l, "update_daily_error", err, "cannot update daily menu")
	}
	return c.JSON(http.StatusOK, menu)
}
