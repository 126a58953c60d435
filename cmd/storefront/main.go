package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/poller"
	"github.com/fjod/go_cart/storefront/internal/prefs"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/fjod/go_cart/storefront/internal/ui"
	"github.com/fjod/go_cart/storefront/internal/view"
)

type prefsStore interface {
	ui.Preferences
	io.Closer
}

func openPrefs(ctx context.Context, cfg *config.Config) (prefsStore, error) {
	switch cfg.Prefs.Backend {
	case "sqlite":
		return prefs.NewSQLiteStore(cfg.Prefs.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return prefs.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown PREFS_BACKEND %q", cfg.Prefs.Backend)
	}
}

func main() {
	cfg := config.Load()

	zl, err := logger.New(logger.Config{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	p, err := openPrefs(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to open preference store", zap.String("backend", cfg.Prefs.Backend), zap.Error(err))
	}
	defer p.Close()
	zl.Info("preference store ready", zap.String("backend", cfg.Prefs.Backend))

	st := store.New(store.Config{
		API: api.Config{
			BaseURL:            cfg.API.BaseURL,
			Timeout:            cfg.API.Timeout,
			BreakerMaxFailures: cfg.API.BreakerMaxFailures,
			BreakerOpenTimeout: cfg.API.BreakerOpenTimeout,
		},
		Token:     cfg.API.AuthToken,
		Freshness: cfg.Catalog.Freshness,
	}, p, zl)
	st.Init(ctx)

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	dashboardPoller := poller.NewPoller("dashboard", poller.RefreshFunc(func(ctx context.Context) error {
		if !auth.IsAuthenticated(st.Auth.State()) {
			return nil
		}
		return st.Dashboard.Refresh(ctx)
	}), cfg.Dashboard.RefreshInterval, zl)
	go dashboardPoller.Run(pollCtx)

	h := view.NewHandler(st, cfg.Server.RequestTimeout, zl)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront view server starting",
			zap.String("port", cfg.Server.HTTPPort),
			zap.String("api", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	stopPolling()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}
