package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panaghia/restaurant/internal/config"
	"github.com/panaghia/restaurant/internal/db"
	"github.com/panaghia/restaurant/internal/events"
	"github.com/panaghia/restaurant/internal/httpserver"
	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/middleware/auth"
	"github.com/panaghia/restaurant/internal/notify"
	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/internal/search"
	"github.com/panaghia/restaurant/internal/service"
	"github.com/panaghia/restaurant/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "panaghia.db"
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	r := &repo.GormRepo{DB: gdb}

	var (
		pub  events.Publisher = events.Nop{}
		prod *events.Producer
	)
	if len(cfg.KafkaBrokers) > 0 {
		prod = events.NewProducer(cfg.KafkaBrokers)
		pub = prod
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	var (
		notifier notify.Notifier = notify.Nop{}
		mq       *notify.Client
	)
	if cfg.RabbitMQURL != "" {
		mq, err = notify.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("rabbitmq init: %v", err)
		}
		notifier = mq
		logger.Info("rabbitmq_enabled")
	}

	menuSvc := &service.MenuService{Repo: r, Events: pub}
	if cfg.ES.URL != "" {
		esClient, err := search.NewClient(cfg.ES)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		idx := search.New(esClient, cfg.ES.Index)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.Warn("search_index_error", "reason", "ensure index failed, using database search", "error", err)
		} else {
			menuSvc.Index = idx
			n, err := menuSvc.Reindex(ctx)
			if err != nil {
				logger.Warn("search_reindex_error", "error", err)
			}
			logger.Info("search_enabled", "index", cfg.ES.Index, "items", n)
		}
	}

	authSvc := &service.AuthService{
		Repo: r,
		Tokens: tokens.Issuer{
			AccessSecret:  cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
		},
		Limiter:     service.NewLoginLimiter(cfg.MaxLoginAttempts, cfg.LoginLockout, cfg.LoginLockout),
		MaxAttempts: cfg.MaxLoginAttempts,
		Lockout:     cfg.LoginLockout,
		Notifier:    notifier,
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}

	e := httpserver.New(logger, cfg.CORSOrigins, &httpserver.Deps{
		Menu:       &httpserver.MenuHTTP{Svc: menuSvc},
		Orders:     &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: pub, Notifier: notifier}},
		Restaurant: &httpserver.RestaurantHTTP{Svc: &service.RestaurantService{Repo: r, Events: pub}},
		Auth:       &httpserver.AuthHTTP{Svc: authSvc},
		Dashboard:  &httpserver.DashboardHTTP{Svc: &service.DashboardService{Repo: r}},
		Guard:      &auth.Guard{Secret: cfg.JWTAccessSecret, Users: authSvc},
		Ready: func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			if mq != nil {
				return mq.Ping()
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if mq != nil {
		mq.Close()
	}

	logger.Info("shutdown_complete")
}
