package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/panaghia/restaurant/internal/hash"
	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/models"
	"github.com/panaghia/restaurant/internal/notify"
	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/internal/tokens"
	"github.com/panaghia/restaurant/pkg/transport"
)

const (
	MinPasswordLength = 8
	ResetTokenTTL     = time.Hour
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens tokens.Issuer

	// Limiter throttles failed logins per email in memory.
	Limiter *LoginLimiter
	// MaxAttempts consecutive failures lock the account row for Lockout.
	MaxAttempts int
	Lockout     time.Duration

	Notifier notify.Notifier
	Now      func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*transport.TokenResponse, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}
	if s.Limiter != nil {
		if ok, wait := s.Limiter.Allowed(email); !ok {
			l.Warn("login_failed", "status", 429, "reason", "rate limited", "retry_in", wait.String())
			return nil, fmt.Errorf("%w: retry in %s", ErrTooManyAttempts, wait.Round(time.Second))
		}
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		s.failLimiter(email)
		l.Warn("login_failed", "status", 401, "reason", "unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		l.Warn("login_failed", "status", 401, "reason", "inactive user")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		l.Warn("login_failed", "status", 423, "reason", "account locked")
		return nil, ErrAccountLocked
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		s.failLimiter(email)
		return nil, s.recordFailure(ctx, user, now)
	}

	if s.Limiter != nil {
		s.Limiter.Reset(email)
	}
	if err := s.Repo.UpdateUser(ctx, user.ID, map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login":            now.UTC(),
	}); err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	l.Info("login_ok", "user_id", user.ID)
	return resp, nil
}

func (s *AuthService) failLimiter(email string) {
	if s.Limiter != nil {
		s.Limiter.Fail(email)
	}
}

// recordFailure bumps the persistent counter and locks the account once it
// reaches MaxAttempts.
func (s *AuthService) recordFailure(ctx context.Context, user *models.AdminUser, now time.Time) error {
	l := logging.FromContext(ctx).With("svc", "auth.login", "user_id", user.ID)

	attempts := user.FailedLoginAttempts + 1
	fields := map[string]any{"failed_login_attempts": attempts}
	locked := s.MaxAttempts > 0 && attempts >= s.MaxAttempts
	if locked {
		fields["failed_login_attempts"] = 0
		fields["locked_until"] = now.Add(s.Lockout).UTC()
	}
	if err := s.Repo.UpdateUser(ctx, user.ID, fields); err != nil {
		return err
	}
	if locked {
		l.Warn("login_failed", "status", 423, "reason", "account locked after failures")
		return ErrAccountLocked
	}
	l.Warn("login_failed", "status", 401, "reason", "wrong password", "attempts", attempts)
	return ErrInvalidCredentials
}

func (s *AuthService) newTokens(user *models.AdminUser) (*transport.TokenResponse, *models.RefreshToken, error) {
	access, _, err := s.Tokens.Access(user.ID, user.Email, user.IsSuperadmin)
	if err != nil {
		return nil, nil, err
	}
	refresh, jti, exp, err := s.Tokens.Refresh(user.ID)
	if err != nil {
		return nil, nil, err
	}
	row := &models.RefreshToken{
		UserID:    user.ID,
		Token:     hash.Sha256Hex(refresh),
		JTI:       jti,
		ExpiresAt: exp.Unix(),
	}
	return &transport.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.Tokens.AccessTTL.Seconds()),
		User:         user.DTO(),
	}, row, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.AdminUser) (*transport.TokenResponse, error) {
	resp, row, err := s.newTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, row); err != nil {
		return nil, err
	}
	return resp, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Tokens.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "bad token", "error", err)
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.Repo.UserByID(ctx, claims.Subject)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !user.IsActive) {
		l.Warn("refresh_failed", "status", 401, "reason", "unknown or inactive user")
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	resp, next, err := s.newTokens(user)
	if err != nil {
		return nil, err
	}
	err = s.Repo.RotateRefreshToken(ctx, claims.ID, hash.Sha256Hex(refreshToken), next)
	if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, repo.ErrNotFound) {
		l.Warn("refresh_failed", "status", 401, "reason", "revoked or unknown jti", "jti", claims.ID)
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout revokes refreshToken when it belongs to userID. An unusable token
// is ignored.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Tokens.RefreshSecret)
	if err != nil || claims.Subject != userID {
		logging.FromContext(ctx).Info("logout_token_ignored", "user_id", userID)
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, claims.ID)
}

// ActiveUser loads userID and fails with ErrInvalidCredentials unless the
// account exists and is active.
func (s *AuthService) ActiveUser(ctx context.Context, userID string) (*transport.User, error) {
	u, err := s.Repo.UserByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	dto := u.DTO()
	return &dto, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return fmt.Errorf("%w: new password must have at least %d characters", ErrValidation, MinPasswordLength)
	}
	u, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return mapRepo(err, "user")
	}
	if !hash.CheckPassword(u.PasswordHash, current) {
		return fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}
	return s.setPassword(ctx, u.ID, next)
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdateUser(ctx, userID, map[string]any{
		"password_hash":         pwHash,
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}); err != nil {
		return err
	}
	return s.Repo.RevokeUserTokens(ctx, userID)
}

// RequestPasswordReset issues a single-use token for an active account and
// hands it to the notifier. Unknown emails get the same silent success.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email required", ErrValidation)
	}
	l := logging.FromContext(ctx).With("svc", "auth.reset_request")

	u, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !u.IsActive) {
		l.Info("reset_request_ignored", "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	raw := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	now := s.now()
	if err := s.Repo.CreateResetToken(ctx, &models.PasswordResetToken{
		Email:     u.Email,
		TokenHash: hash.Sha256Hex(raw),
		ExpiresAt: now.Add(ResetTokenTTL).UTC(),
	}); err != nil {
		return err
	}
	if s.Notifier != nil {
		err := s.Notifier.Notify(ctx, notify.Message{
			Kind:       notify.KindPasswordReset,
			Email:      u.Email,
			ResetToken: raw,
			At:         now.UTC(),
		})
		if err != nil {
			l.Warn("notify_error", "email", email, "error", err)
		}
	}
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, next string) error {
	if len(next) < MinPasswordLength {
		return fmt.Errorf("%w: new password must have at least %d characters", ErrValidation, MinPasswordLength)
	}
	rt, err := s.Repo.ConsumeResetToken(ctx, hash.Sha256Hex(strings.TrimSpace(token)), s.now().UTC())
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrTokenRevoked) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	u, err := s.Repo.UserByEmail(ctx, rt.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return s.setPassword(ctx, u.ID, next)
}

// SeedAdmin creates the superadmin account on first start. It is a no-op
// when email is empty or the account exists.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	if _, err := s.Repo.UserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: admin password must have at least %d characters", ErrValidation, MinPasswordLength)
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.Repo.CreateUser(ctx, &models.AdminUser{
		Email:        email,
		PasswordHash: pwHash,
		IsActive:     true,
		IsSuperadmin: true,
	}); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("admin_seeded", "email", email)
	return nil
}
