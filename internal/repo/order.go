package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/panaghia/restaurant/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormRepo) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("idempotency_key = ?", key).First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormRepo) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("order_number = ?", number).First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// UpdateOrderStatus applies check to the current status inside a
// transaction, so two concurrent updates cannot both pass it.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id, status, by string, check func(current string) error) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&o).Error; err != nil {
			return notFound(err)
		}
		if err := check(o.Status); err != nil {
			return err
		}
		return tx.Model(&o).Updates(map[string]any{"status": status, "updated_by": by}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(ctx, id)
}

func (r *GormRepo) SetOrderCoordinates(ctx context.Context, id string, lat, lng float64) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]any{"lat": lat, "lng": lng})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type OrderFilter struct {
	Statuses  []string
	OrderType string
	From, To  *time.Time
	Limit     int
	Offset    int
}

func (r *GormRepo) orderQuery(ctx context.Context, f OrderFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

// ListOrders returns a page of orders, newest first, and the total match count.
func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	var total int64
	if err := r.orderQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.orderQuery(ctx, f).Preload("Items").Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []models.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AllOrders loads every order with items for dashboard aggregation.
func (r *GormRepo) AllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
