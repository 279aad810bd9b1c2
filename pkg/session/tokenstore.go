package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/panaghia/restaurant/pkg/storage"
	"github.com/panaghia/restaurant/pkg/transport"
)

// TokenStore reads and writes the persisted session keys.
type TokenStore struct {
	KV storage.Store
}

type persisted struct {
	AccessToken  string
	RefreshToken string
	UserJSON     string
}

func (t TokenStore) load(ctx context.Context) (persisted, error) {
	var p persisted
	var err error
	if p.AccessToken, err = t.get(ctx, storage.KeyAccessToken); err != nil {
		return p, err
	}
	if p.RefreshToken, err = t.get(ctx, storage.KeyRefreshToken); err != nil {
		return p, err
	}
	if p.UserJSON, err = t.get(ctx, storage.KeyUser); err != nil {
		return p, err
	}
	return p, nil
}

func (t TokenStore) get(ctx context.Context, key string) (string, error) {
	v, err := t.KV.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

func (t TokenStore) RefreshToken(ctx context.Context) (string, error) {
	return t.get(ctx, storage.KeyRefreshToken)
}

func (t TokenStore) Save(ctx context.Context, access, refresh string, user transport.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := t.KV.Set(ctx, storage.KeyAccessToken, access); err != nil {
		return err
	}
	if err := t.KV.Set(ctx, storage.KeyRefreshToken, refresh); err != nil {
		return err
	}
	return t.KV.Set(ctx, storage.KeyUser, string(raw))
}

func (t TokenStore) Clear(ctx context.Context) error {
	return t.KV.Delete(ctx, storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser)
}

// Consent values for storage.KeyCookieConsent.
const (
	ConsentAccepted = "accepted"
	ConsentRefused  = "refused"
)

var ErrInvalidConsent = errors.New("consent must be accepted or refused")

// CookieConsent returns the stored choice or "" when the user has not chosen.
func CookieConsent(ctx context.Context, kv storage.Store) (string, error) {
	return TokenStore{KV: kv}.get(ctx, storage.KeyCookieConsent)
}

func SetCookieConsent(ctx context.Context, kv storage.Store, choice string) error {
	if choice != ConsentAccepted && choice != ConsentRefused {
		return ErrInvalidConsent
	}
	return kv.Set(ctx, storage.KeyCookieConsent, choice)
}
