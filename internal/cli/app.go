// Package cli is the terminal front-end of the restaurant: customers browse
// the menu, fill a cart and place orders; staff manage orders after logging
// in. State that a browser would keep in localStorage lives in a SQLite file.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/panaghia/restaurant/internal/config"
	"github.com/panaghia/restaurant/pkg/apiclient"
	"github.com/panaghia/restaurant/pkg/cart"
	"github.com/panaghia/restaurant/pkg/session"
	"github.com/panaghia/restaurant/pkg/storage"
)

type Config struct {
	APIURL      string
	StatePath   string
	PersistCart bool
	LogLevel    string
}

func LoadConfig() Config {
	config.LoadDotEnv()
	return Config{
		APIURL:      config.EnvDefault("PANAGHIA_API_URL", "http://localhost:8000"),
		StatePath:   config.EnvDefault("PANAGHIA_STATE", defaultStatePath()),
		PersistCart: config.EnvBoolDefault("PANAGHIA_PERSIST_CART", true),
		LogLevel:    config.EnvDefault("LOG_LEVEL", "warn"),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "panaghia-state.db"
	}
	return filepath.Join(dir, "panaghia", "state.db")
}

// App wires the client stores for one CLI invocation.
type App struct {
	API     *apiclient.Client
	KV      storage.Store
	Session *session.Manager
	Cart    *cart.Store
	Log     *slog.Logger

	// Carts nil means the cart lives only for this process.
	Carts *cart.Persister
}

// NewApp binds the API client and the session to each other on top of kv.
func NewApp(api *apiclient.Client, kv storage.Store, persistCart bool, log *slog.Logger) *App {
	a := &App{
		API:     api,
		KV:      kv,
		Session: session.NewManager(api, kv, log),
		Cart:    cart.New(),
		Log:     log,
	}
	api.SetTokenSource(a.Session)
	if persistCart {
		a.Carts = &cart.Persister{Store: kv}
	}
	return a
}

// Open creates the state file and the App on top of it. The returned closer
// releases the state file.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*App, func() error, error) {
	if dir := filepath.Dir(cfg.StatePath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("state dir: %w", err)
		}
	}
	kv, err := storage.OpenFile(ctx, cfg.StatePath)
	if err != nil {
		return nil, nil, err
	}
	return NewApp(apiclient.New(cfg.APIURL), kv, cfg.PersistCart, log), kv.Close, nil
}

// load restores the session and the saved cart.
func (a *App) load(ctx context.Context) error {
	if err := a.Session.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if a.Carts == nil {
		return nil
	}
	c, err := a.Carts.Load(ctx)
	if err != nil {
		return err
	}
	a.Cart = c
	return nil
}

func (a *App) saveCart(ctx context.Context) error {
	if a.Carts == nil {
		return nil
	}
	return a.Carts.Save(ctx, a.Cart.Snapshot())
}
