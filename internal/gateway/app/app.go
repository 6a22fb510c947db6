// Package app wires the movevote API gateway: configuration, logging, the
// JWKS-backed token verifier and the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gatewayhttp "github.com/movevote/movevote/internal/gateway/http"
	"github.com/movevote/movevote/pkg/httpx"
	"github.com/movevote/movevote/pkg/jwtx"
	"github.com/movevote/movevote/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application is the gateway with its dependencies wired.
type Application struct {
	cfg    Config
	logger *slog.Logger

	keys     *jwtx.RemoteKeySet
	verifier *jwtx.TokenVerifier

	server *http.Server
	router *gatewayhttp.Router
}

// New creates an Application from config.
func New(cfg Config) (*Application, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("app: AUTH_ISSUER is required")
	}
	if cfg.JWKSURL == "" {
		return nil, errors.New("app: AUTH_JWKS_URL is required when no issuer-derived default applies")
	}

	logger := slogx.New(slogx.Config{
		Service: "movevote-gateway",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	keys := jwtx.NewRemoteKeySet(
		cfg.JWKSURL,
		jwtx.WithRefreshCooldown(cfg.JWKSRefreshCooldown),
	)
	verifier := jwtx.NewTokenVerifier(keys, cfg.Issuer, cfg.Audience)

	router := gatewayhttp.NewRouter(keys, verifier, BuildVersion, logger, httpx.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitRequests,
		Window:            cfg.RateLimitWindow,
		Burst:             cfg.RateLimitBurst,
	})
	router.ApplyRoutes()

	return &Application{
		cfg:      cfg,
		logger:   logger,
		keys:     keys,
		verifier: verifier,
		router:   router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Run starts the gateway and blocks until shutdown is requested.
func (app *Application) Run() error {
	// Warm the key cache so the first authenticated request doesn't pay
	// for the fetch. Failure is not fatal, resolution retries on demand.
	warmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := app.keys.Refresh(warmCtx); err != nil {
		app.logger.Warn("jwks warmup failed", "err", err)
	}
	cancel()

	app.logger.Info("gateway starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
		defer cancel()

		if err := app.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
