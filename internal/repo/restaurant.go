package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/panaghia/restaurant/internal/models"
)

// RestaurantInfo returns the stored row or ErrNotFound.
func (r *GormRepo) RestaurantInfo(ctx context.Context) (*models.RestaurantInfo, error) {
	var info models.RestaurantInfo
	if err := r.DB.WithContext(ctx).Order("id ASC").First(&info).Error; err != nil {
		return nil, notFound(err)
	}
	return &info, nil
}

func (r *GormRepo) SaveRestaurantInfo(ctx context.Context, info *models.RestaurantInfo) error {
	return r.DB.WithContext(ctx).Save(info).Error
}

func (r *GormRepo) ListReviews(ctx context.Context, approved *bool) ([]models.Review, error) {
	q := r.DB.WithContext(ctx).Model(&models.Review{})
	if approved != nil {
		q = q.Where("is_approved = ?", *approved)
	}
	var out []models.Review
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReview stores the review and refreshes the rating summary on the
// restaurant row in the same transaction.
func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review, defaults models.RestaurantInfo) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rv).Error; err != nil {
			return err
		}
		return refreshRating(tx, defaults)
	})
}

func (r *GormRepo) SetReviewApproved(ctx context.Context, id string, approved bool, defaults models.RestaurantInfo) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Review{}).Where("id = ?", id).Update("is_approved", approved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return refreshRating(tx, defaults)
	})
}

func (r *GormRepo) DeleteReview(ctx context.Context, id string, defaults models.RestaurantInfo) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Review{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return refreshRating(tx, defaults)
	})
}

// refreshRating recomputes rating and review count from approved reviews.
func refreshRating(tx *gorm.DB, defaults models.RestaurantInfo) error {
	var approved []models.Review
	if err := tx.Where("is_approved = ?", true).Find(&approved).Error; err != nil {
		return err
	}
	sum := 0
	for _, rv := range approved {
		sum += rv.Rating
	}
	rating := 0.0
	if len(approved) > 0 {
		rating = float64(sum*10/len(approved)) / 10
	}

	var info models.RestaurantInfo
	err := tx.Order("id ASC").First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		info = defaults
	} else if err != nil {
		return err
	}
	info.Rating = rating
	info.ReviewCount = len(approved)
	return tx.Save(&info).Error
}
