// Package storage is the durable key/value store behind the client session
// and cart. Values are opaque strings; there is no schema versioning.
package storage

import (
	"context"
	"errors"
	"sync"
)

const (
	KeyAccessToken   = "adminToken"
	KeyRefreshToken  = "refreshToken"
	KeyUser          = "adminUser"
	KeyCookieConsent = "cookieConsent"
	KeyCart          = "cart"
	KeyCheckoutNonce = "checkoutNonce"
)

var ErrNotFound = errors.New("storage: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Memory keeps values for the life of the process.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.m, k)
	}
	return nil
}
