// Package testenv starts the full HTTP API on an in-memory database for
// handler and client tests.
package testenv

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/panaghia/restaurant/internal/db"
	"github.com/panaghia/restaurant/internal/events"
	"github.com/panaghia/restaurant/internal/httpserver"
	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/middleware/auth"
	"github.com/panaghia/restaurant/internal/notify"
	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/internal/service"
	"github.com/panaghia/restaurant/internal/tokens"
)

const (
	AdminEmail    = "admin@panaghia.ro"
	AdminPassword = "parola-admin-1"
)

var (
	AccessSecret  = []byte("test-access-secret")
	RefreshSecret = []byte("test-refresh-secret")
)

type Env struct {
	URL    string
	Server *httptest.Server
	Repo   *repo.GormRepo
	Events *events.Recorder
	Notes  *notify.Recorder

	Menu   *service.MenuService
	Orders *service.OrderService
	Auth   *service.AuthService
}

type Option func(*service.AuthService)

// WithAccessTTL shortens access tokens, e.g. to exercise refresh on 401.
func WithAccessTTL(d time.Duration) Option {
	return func(s *service.AuthService) { s.Tokens.AccessTTL = d }
}

func New(t testing.TB, opts ...Option) *Env {
	t.Helper()

	gdb, err := db.OpenMemory(context.Background())
	require.NoError(t, err)

	r := &repo.GormRepo{DB: gdb}
	rec := &events.Recorder{}
	notes := &notify.Recorder{}

	menuSvc := &service.MenuService{Repo: r, Events: rec}
	orderSvc := &service.OrderService{Repo: r, Events: rec, Notifier: notes}
	authSvc := &service.AuthService{
		Repo: r,
		Tokens: tokens.Issuer{
			AccessSecret:  AccessSecret,
			RefreshSecret: RefreshSecret,
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
		},
		Limiter:     service.NewLoginLimiter(5, 15*time.Minute, 15*time.Minute),
		MaxAttempts: 5,
		Lockout:     15 * time.Minute,
		Notifier:    notes,
	}
	for _, o := range opts {
		o(authSvc)
	}
	require.NoError(t, authSvc.SeedAdmin(context.Background(), AdminEmail, AdminPassword))

	e := httpserver.New(logging.Discard(), nil, &httpserver.Deps{
		Menu:       &httpserver.MenuHTTP{Svc: menuSvc},
		Orders:     &httpserver.OrderHTTP{Svc: orderSvc},
		Restaurant: &httpserver.RestaurantHTTP{Svc: &service.RestaurantService{Repo: r, Events: rec}},
		Auth:       &httpserver.AuthHTTP{Svc: authSvc},
		Dashboard:  &httpserver.DashboardHTTP{Svc: &service.DashboardService{Repo: r}},
		Guard:      &auth.Guard{Secret: AccessSecret, Users: authSvc},
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &Env{
		URL:    srv.URL,
		Server: srv,
		Repo:   r,
		Events: rec,
		Notes:  notes,
		Menu:   menuSvc,
		Orders: orderSvc,
		Auth:   authSvc,
	}
}
