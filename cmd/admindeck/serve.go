// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/admindeck/admindeck/internal/auth"
	authpg "github.com/admindeck/admindeck/internal/auth/postgres"
	"github.com/admindeck/admindeck/internal/config"
	"github.com/admindeck/admindeck/internal/httpapi"
	"github.com/admindeck/admindeck/internal/logging"
	"github.com/admindeck/admindeck/internal/observability"
	"github.com/admindeck/admindeck/internal/store"
	"github.com/admindeck/admindeck/internal/users"
	userspg "github.com/admindeck/admindeck/internal/users/postgres"
)

const (
	shutdownTimeout  = 5 * time.Second
	readinessTimeout = 2 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server and, unless disabled, the metrics and
health server. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	cmd.Flags().String("http-addr", config.DefaultHTTPAddr, "API listen address")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Bool("auto-migrate", false, "apply pending migrations before serving")

	return cmd
}

func (d *ServeDeps) setDefaults() {
	if d.DatabaseFactory == nil {
		d.DatabaseFactory = func(ctx context.Context, url string) (Database, error) {
			return store.Connect(ctx, url)
		}
	}
	if d.MigratorFactory == nil {
		d.MigratorFactory = migratorFactory
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if d.APIServerFactory == nil {
		d.APIServerFactory = func(addr string, handler http.Handler) APIServer {
			return httpapi.NewServer(addr, handler, slog.Default())
		}
	}
}

// runServeWithDeps starts the servers with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	deps.setDefaults()

	if err := cfg.RequireDatabaseURL(); err != nil {
		return err //nolint:wrapcheck // already coded
	}

	logger := logging.SetDefault(serviceName, version, cfg.Log.Format, cfg.Log.Level)
	logger.Info("starting server",
		"environment", cfg.Environment,
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.HTTP.MetricsAddr)

	if cfg.AutoMigrate {
		if err := autoMigrate(deps, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	db, err := deps.DatabaseFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()
	logger.Info("connected to database")

	obsServer := deps.ObservabilityServerFactory(cfg.HTTP.MetricsAddr, store.PingChecker(db, readinessTimeout))
	metrics := obsServer.Metrics()

	router, err := buildRouter(cfg, db, metrics, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	apiServer := deps.APIServerFactory(cfg.HTTP.Addr, router)
	apiErrChan, err := apiServer.Start()
	if err != nil {
		return oops.With("operation", "start API server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")
	logger.Info("API server started", "addr", apiServer.Addr())

	metricsEnabled := cfg.HTTP.MetricsAddr != ""
	if metricsEnabled {
		obsErrChan, err := obsServer.Start()
		if err != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if stopErr := apiServer.Stop(shutdownCtx); stopErr != nil {
				logger.Warn("failed to stop API server during cleanup", "error", stopErr)
			}
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("AdminDeck server started")

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping API server", "error", err)
	}
	if metricsEnabled {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// autoMigrate applies pending migrations before the pool is opened.
func autoMigrate(deps *ServeDeps, databaseURL string, logger *slog.Logger) error {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "auto-migrate").Wrap(err)
	}
	version, _, err := migrator.Version()
	if err != nil {
		return oops.With("operation", "read migration version").Wrap(err)
	}
	logger.Info("database schema is current", "version", version)
	return nil
}

// buildServices wires repositories and services on top of db.
func buildServices(cfg *config.Config, db Database, metrics auth.MetricsRecorder, logger *slog.Logger) (*auth.Service, *users.Service, error) {
	policy, err := auth.NewPasswordPolicy(cfg.PasswordConfig())
	if err != nil {
		return nil, nil, oops.With("operation", "create password policy").Wrap(err)
	}
	logger.Debug("password policy configured", "bcrypt_cost", policy.Cost())

	userRepo := userspg.NewUserRepository(db)
	sessionRepo := authpg.NewSessionRepository(db)

	authenticator, err := auth.NewAuthenticator(userRepo, policy,
		auth.WithAuthenticatorLogger(logger),
		auth.WithAuthenticatorMetrics(metrics),
		auth.WithPasswordUpgrade(userRepo))
	if err != nil {
		return nil, nil, oops.With("operation", "create authenticator").Wrap(err)
	}
	sessions, err := auth.NewSessionStore(sessionRepo, cfg.SessionConfig(),
		auth.WithSessionLogger(logger),
		auth.WithSessionMetrics(metrics))
	if err != nil {
		return nil, nil, oops.With("operation", "create session store").Wrap(err)
	}
	authService, err := auth.NewService(authenticator, sessions, policy)
	if err != nil {
		return nil, nil, oops.With("operation", "create auth service").Wrap(err)
	}

	userService, err := users.NewService(userRepo, policy, users.WithLogger(logger))
	if err != nil {
		return nil, nil, oops.With("operation", "create user service").Wrap(err)
	}
	return authService, userService, nil
}

// buildRouter assembles the API handler.
func buildRouter(cfg *config.Config, db Database, metrics *observability.Metrics, logger *slog.Logger) (http.Handler, error) {
	authService, userService, err := buildServices(cfg, db, metrics, logger)
	if err != nil {
		return nil, err
	}

	router, err := httpapi.NewRouter(httpapi.Deps{
		Auth:    authService,
		Users:   userService,
		Cookie:  httpapi.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.IsProduction()},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, oops.With("operation", "create router").Wrap(err)
	}
	return router, nil
}

// monitorServerErrors cancels ctx when a server reports an error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
