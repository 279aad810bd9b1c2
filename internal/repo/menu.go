package repo

import (
	"context"
	"strings"

	"github.com/panaghia/restaurant/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context, activeOnly bool) ([]models.MenuCategory, error) {
	q := r.DB.WithContext(ctx).Model(&models.MenuCategory{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.MenuCategory
	if err := q.Order("sort_order ASC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id string) (*models.MenuCategory, error) {
	var c models.MenuCategory
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.MenuCategory) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.MenuCategory) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuCategory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type ItemFilter struct {
	CategoryID    string
	PopularOnly   bool
	AvailableOnly bool
}

func (r *GormRepo) ListItems(ctx context.Context, f ItemFilter) ([]models.MenuItem, error) {
	q := r.DB.WithContext(ctx).Model(&models.MenuItem{})
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.PopularOnly {
		q = q.Where("is_popular = ?", true)
	}
	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	var out []models.MenuItem
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var it models.MenuItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (r *GormRepo) CreateItem(ctx context.Context, it *models.MenuItem) error {
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *GormRepo) SaveItem(ctx context.Context, it *models.MenuItem) error {
	return r.DB.WithContext(ctx).Save(it).Error
}

func (r *GormRepo) DeleteItem(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchItems is the database fallback of the search index. It matches
// available items by name or description.
func (r *GormRepo) SearchItems(ctx context.Context, query string, limit int) ([]models.MenuItem, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var out []models.MenuItem
	err := r.DB.WithContext(ctx).
		Where("is_available = ?", true).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Order("is_popular DESC").Order("name ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) ListDailyMenus(ctx context.Context, activeOnly bool) ([]models.DailyMenu, error) {
	q := r.DB.WithContext(ctx).Model(&models.DailyMenu{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.DailyMenu
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) DailyMenuByDay(ctx context.Context, day string) (*models.DailyMenu, error) {
	var d models.DailyMenu
	err := r.DB.WithContext(ctx).
		Where("LOWER(day) = ? AND is_active = ?", strings.ToLower(day), true).
		First(&d).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *GormRepo) GetDailyMenu(ctx context.Context, id string) (*models.DailyMenu, error) {
	var d models.DailyMenu
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *GormRepo) CreateDailyMenu(ctx context.Context, d *models.DailyMenu) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *GormRepo) SaveDailyMenu(ctx context.Context, d *models.DailyMenu) error {
	return r.DB.WithContext(ctx).Save(d).Error
}

func (r *GormRepo) CategoryBySlug(ctx context.Context, slug string) (*models.MenuCategory, error) {
	var c models.MenuCategory
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
