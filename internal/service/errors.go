package service

import (
	"context"
	"errors"

	"github.com/panaghia/restaurant/internal/events"
	"github.com/panaghia/restaurant/internal/logging"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409

	ErrInvalidCredentials  = errors.New("invalid credentials")   // 401
	ErrInvalidRefreshToken = errors.New("invalid refresh token") // 401
	ErrInvalidResetToken   = errors.New("invalid reset token")   // 400
	ErrAccountLocked       = errors.New("account locked")        // 423
	ErrTooManyAttempts     = errors.New("too many attempts")     // 429
)

// publish sends an event and only logs a failure.
func publish(ctx context.Context, pub events.Publisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "topic", topic, "key", key, "error", err)
	}
}
