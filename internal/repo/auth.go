package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/panaghia/restaurant/internal/models"
)

var ErrTokenRevoked = errors.New("token expired or revoked")

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id string) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.AdminUser) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", id).Updates(fields).Error
}

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func refreshExpiredOrRevoked(tx *gorm.DB, jti string, now time.Time) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := tx.Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	if t.Revoked || t.ExpiresAt < now.Unix() {
		return nil, ErrTokenRevoked
	}
	return &t, nil
}

// RotateRefreshToken revokes oldJTI and stores next. The stored hash of the
// old token must match tokenHash.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, tokenHash string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := refreshExpiredOrRevoked(tx, oldJTI, time.Now())
		if err != nil {
			return err
		}
		if old.Token != tokenHash {
			return ErrTokenRevoked
		}
		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}
		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ?", jti).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeUserTokens(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (r *GormRepo) CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// ConsumeResetToken marks a valid token used and returns it.
func (r *GormRepo) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ?", tokenHash).First(&t).Error; err != nil {
			return notFound(err)
		}
		if t.Used || now.After(t.ExpiresAt) {
			return ErrTokenRevoked
		}
		return tx.Model(&t).Update("used", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}
