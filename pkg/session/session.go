// Package session owns the admin login state: restore from storage, login,
// logout and token refresh.
//
// Restore is optimistic: a persisted access token is trusted without asking
// the server until the first authenticated call comes back 401, at which
// point the API client calls Refresh.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/panaghia/restaurant/pkg/storage"
	"github.com/panaghia/restaurant/pkg/transport"
)

type State int

const (
	Unknown State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

var (
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrRefreshFailed  = errors.New("session refresh failed")
)

// AuthAPI is the subset of the REST client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*transport.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

type Snapshot struct {
	State       State
	AccessToken string
	User        *transport.User
}

func (s Snapshot) IsAuthenticated() bool {
	return s.State == Authenticated && s.AccessToken != ""
}

type Manager struct {
	api    AuthAPI
	tokens TokenStore
	log    *slog.Logger
	flight singleflight.Group

	mu      sync.RWMutex
	state   State
	access  string
	user    *transport.User
	lastErr string
}

func NewManager(api AuthAPI, kv storage.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{api: api, tokens: TokenStore{KV: kv}, log: log.With("component", "session")}
}

// Restore reads the persisted session. It never calls the server.
func (m *Manager) Restore(ctx context.Context) error {
	p, err := m.tokens.load(ctx)
	if err != nil {
		m.setAnonymous()
		return err
	}
	if p.AccessToken == "" || p.UserJSON == "" {
		m.setAnonymous()
		return nil
	}

	var u transport.User
	if err := json.Unmarshal([]byte(p.UserJSON), &u); err != nil {
		m.log.Warn("session_restore_error", "reason", "corrupt user record", "error", err)
		m.setAnonymous()
		return m.tokens.Clear(ctx)
	}
	if u.ID == "" || u.Email == "" {
		m.log.Warn("session_restore_error", "reason", "empty user record")
		m.setAnonymous()
		return m.tokens.Clear(ctx)
	}

	m.setAuthenticated(p.AccessToken, u)
	return nil
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	res, err := m.api.Login(ctx, email, password)
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if err != nil {
		m.mu.Lock()
		m.lastErr = err.Error()
		if m.state == Unknown {
			m.state = Anonymous
		}
		m.mu.Unlock()
		m.log.Warn("login_failed", "error", err)
		return err
	}

	if err := m.tokens.Save(ctx, res.AccessToken, res.RefreshToken, res.User); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.setAuthenticated(res.AccessToken, res.User)
	m.log.Info("login_success", "email", res.User.Email)
	return nil
}

// Logout always ends the local session. The server call is best effort and
// the returned error only reports a storage failure.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.RLock()
	access := m.access
	m.mu.RUnlock()

	refresh, _ := m.tokens.RefreshToken(ctx)
	if access != "" || refresh != "" {
		if err := m.api.Logout(ctx, access, refresh); err != nil {
			m.log.Info("logout_notify_failed", "error", err)
		}
	}

	m.setAnonymous()
	return m.tokens.Clear(context.WithoutCancel(ctx))
}

// Refresh renews the token pair. Any failure logs the session out.
// Concurrent callers share one request.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.flight.Do("refresh", func() (any, error) {
		return nil, m.refresh(ctx)
	})
	return err
}

func (m *Manager) refresh(ctx context.Context) error {
	rt, err := m.tokens.RefreshToken(ctx)
	if err != nil || rt == "" {
		_ = m.Logout(ctx)
		if err != nil {
			return err
		}
		return ErrNoRefreshToken
	}

	res, err := m.api.Refresh(ctx, rt)
	if err == nil {
		// The server revoked rt when it answered, so the new pair is kept
		// even when the caller has already given up.
		if serr := m.tokens.Save(context.WithoutCancel(ctx), res.AccessToken, res.RefreshToken, res.User); serr != nil {
			_ = m.Logout(ctx)
			return fmt.Errorf("persist session: %w", serr)
		}
		m.setAuthenticated(res.AccessToken, res.User)
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if err != nil {
		m.log.Warn("refresh_failed", "error", err)
		_ = m.Logout(ctx)
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return nil
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

func (m *Manager) User() *transport.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// LastError is the message of the last failed login.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{State: m.state, AccessToken: m.access}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

func (m *Manager) Guard() Decision {
	return Guard(m.State())
}

func (m *Manager) setAuthenticated(access string, u transport.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Authenticated
	m.access = access
	m.user = &u
	m.lastErr = ""
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Anonymous
	m.access = ""
	m.user = nil
}

// Decision is what an admin-only view does for a session state.
type Decision int

const (
	ShowLoading Decision = iota
	RedirectLogin
	Allow
)

func Guard(s State) Decision {
	switch s {
	case Authenticated:
		return Allow
	case Anonymous:
		return RedirectLogin
	}
	return ShowLoading
}
