package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/panaghia/restaurant/internal/events"
	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/models"
	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/pkg/transport"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// SearchIndex is the full-text side of the menu. internal/search.Index
// implements it.
type SearchIndex interface {
	IndexItem(ctx context.Context, item transport.MenuItem) error
	DeleteItem(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []transport.MenuItem, error)
}

type MenuService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Index is optional; search falls back to the database without it.
	Index SearchIndex
}

func (s *MenuService) Categories(ctx context.Context, activeOnly bool) ([]transport.MenuCategory, error) {
	cats, err := s.Repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]transport.MenuCategory, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.DTO())
	}
	return out, nil
}

func (s *MenuService) CreateCategory(ctx context.Context, in transport.CategoryInput) (*transport.MenuCategory, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if in.Slug == nil || strings.TrimSpace(*in.Slug) == "" {
		return nil, fmt.Errorf("%w: slug required", ErrValidation)
	}
	c := models.MenuCategory{IsActive: true}
	applyCategory(&c, in)
	if err := s.ensureSlugFree(ctx, c.Slug, ""); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	dto := c.DTO()
	return &dto, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, id string, in transport.CategoryInput) (*transport.MenuCategory, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, mapRepo(err, "category")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	applyCategory(c, in)
	if in.Slug != nil {
		if err := s.ensureSlugFree(ctx, c.Slug, c.ID); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		return nil, err
	}
	dto := c.DTO()
	return &dto, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, id string) error {
	return mapRepo(s.Repo.DeleteCategory(ctx, id), "category")
}

func (s *MenuService) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.Repo.CategoryBySlug(ctx, slug)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return fmt.Errorf("%w: slug %q already used", ErrConflict, slug)
	}
	return nil
}

func applyCategory(c *models.MenuCategory, in transport.CategoryInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		c.Slug = strings.ToLower(strings.TrimSpace(*in.Slug))
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
	}
	if in.Order != nil {
		c.SortOrder = *in.Order
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

// Items lists menu items. Public callers pass availableOnly.
func (s *MenuService) Items(ctx context.Context, categoryID string, popularOnly, availableOnly bool) ([]transport.MenuItem, error) {
	items, err := s.Repo.ListItems(ctx, repo.ItemFilter{
		CategoryID:    categoryID,
		PopularOnly:   popularOnly,
		AvailableOnly: availableOnly,
	})
	if err != nil {
		return nil, err
	}
	out := make([]transport.MenuItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.DTO())
	}
	return out, nil
}

func (s *MenuService) Item(ctx context.Context, id string) (*transport.MenuItem, error) {
	it, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		return nil, mapRepo(err, "menu item")
	}
	dto := it.DTO()
	return &dto, nil
}

func (s *MenuService) CreateItem(ctx context.Context, in transport.MenuItemInput) (*transport.MenuItem, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if in.CategoryID == nil || *in.CategoryID == "" {
		return nil, fmt.Errorf("%w: category_id required", ErrValidation)
	}
	if in.Price == nil {
		return nil, fmt.Errorf("%w: price required", ErrValidation)
	}
	it := models.MenuItem{IsAvailable: true}
	if err := s.applyItem(ctx, &it, in); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateItem(ctx, &it); err != nil {
		return nil, err
	}
	dto := it.DTO()
	s.afterItemChange(ctx, events.MenuItemCreated, dto)
	return &dto, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, id string, in transport.MenuItemInput) (*transport.MenuItem, error) {
	it, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		return nil, mapRepo(err, "menu item")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if err := s.applyItem(ctx, it, in); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveItem(ctx, it); err != nil {
		return nil, err
	}
	dto := it.DTO()
	s.afterItemChange(ctx, events.MenuItemUpdated, dto)
	return &dto, nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id string) error {
	if err := s.Repo.DeleteItem(ctx, id); err != nil {
		return mapRepo(err, "menu item")
	}
	if s.Index != nil {
		if err := s.Index.DeleteItem(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "op", "delete", "item_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicMenu, id, events.MenuEvent{
		Type:   events.MenuItemDeleted,
		ItemID: id,
		At:     time.Now().UTC(),
	})
	return nil
}

func (s *MenuService) applyItem(ctx context.Context, it *models.MenuItem, in transport.MenuItemInput) error {
	if in.CategoryID != nil && *in.CategoryID != it.CategoryID {
		if _, err := s.Repo.GetCategory(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: unknown category %q", ErrValidation, *in.CategoryID)
			}
			return err
		}
		it.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
		it.Price = in.Price.Round(2)
	}
	if in.Name != nil {
		it.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Image != nil {
		it.Image = *in.Image
	}
	if in.IsPopular != nil {
		it.IsPopular = *in.IsPopular
	}
	if in.IsAvailable != nil {
		it.IsAvailable = *in.IsAvailable
	}
	return nil
}

func (s *MenuService) afterItemChange(ctx context.Context, kind string, item transport.MenuItem) {
	if s.Index != nil {
		if err := s.Index.IndexItem(ctx, item); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "op", "index", "item_id", item.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicMenu, item.ID, events.MenuEvent{
		Type:   kind,
		ItemID: item.ID,
		Name:   item.Name,
		At:     time.Now().UTC(),
	})
}

// Search queries the index and falls back to a database scan when the index
// is missing or failing.
func (s *MenuService) Search(ctx context.Context, query string, limit int) (*transport.MenuSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q required", ErrValidation)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, 0, limit)
		if err == nil {
			return &transport.MenuSearchResult{Query: query, Total: total, Items: items}, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "op", "search", "error", err)
	}

	found, err := s.Repo.SearchItems(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	items := make([]transport.MenuItem, 0, len(found))
	for _, it := range found {
		items = append(items, it.DTO())
	}
	return &transport.MenuSearchResult{Query: query, Total: int64(len(items)), Items: items}, nil
}

// Reindex pushes every menu item into the search index.
func (s *MenuService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	items, err := s.Repo.ListItems(ctx, repo.ItemFilter{})
	if err != nil {
		return 0, err
	}
	for _, it := range items {
		if err := s.Index.IndexItem(ctx, it.DTO()); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func (s *MenuService) DailyMenus(ctx context.Context) ([]transport.DailyMenu, error) {
	menus, err := s.Repo.ListDailyMenus(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]transport.DailyMenu, 0, len(menus))
	for _, d := range menus {
		out = append(out, d.DTO())
	}
	return out, nil
}

func (s *MenuService) DailyMenuFor(ctx context.Context, day string) (*transport.DailyMenu, error) {
	d, err := s.Repo.DailyMenuByDay(ctx, strings.TrimSpace(day))
	if err != nil {
		return nil, mapRepo(err, "daily menu")
	}
	dto := d.DTO()
	return &dto, nil
}

func (s *MenuService) CreateDailyMenu(ctx context.Context, in transport.DailyMenuInput) (*transport.DailyMenu, error) {
	if in.Day == nil || strings.TrimSpace(*in.Day) == "" {
		return nil, fmt.Errorf("%w: day required", ErrValidation)
	}
	d := models.DailyMenu{IsActive: true}
	applyDaily(&d, in)
	if err := s.Repo.CreateDailyMenu(ctx, &d); err != nil {
		return nil, err
	}
	dto := d.DTO()
	return &dto, nil
}

func (s *MenuService) UpdateDailyMenu(ctx context.Context, id string, in transport.DailyMenuInput) (*transport.DailyMenu, error) {
	d, err := s.Repo.GetDailyMenu(ctx, id)
	if err != nil {
		return nil, mapRepo(err, "daily menu")
	}
	if in.Day != nil && strings.TrimSpace(*in.Day) == "" {
		return nil, fmt.Errorf("%w: day must not be empty", ErrValidation)
	}
	applyDaily(d, in)
	if err := s.Repo.SaveDailyMenu(ctx, d); err != nil {
		return nil, err
	}
	dto := d.DTO()
	return &dto, nil
}

func applyDaily(d *models.DailyMenu, in transport.DailyMenuInput) {
	if in.Day != nil {
		d.Day = strings.ToLower(strings.TrimSpace(*in.Day))
	}
	if in.Soup != nil {
		d.Soup = *in.Soup
	}
	if in.Main != nil {
		d.Main = *in.Main
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
}

// mapRepo turns repo.ErrNotFound into ErrNotFound naming what was missing.
func mapRepo(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
