// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/config"
	"codeberg.org/oliverandrich/mylife/internal/database"
	"codeberg.org/oliverandrich/mylife/internal/handlers"
	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/services/auth"
	"codeberg.org/oliverandrich/mylife/internal/services/email"
	"codeberg.org/oliverandrich/mylife/internal/services/recovery"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/services/tasks"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

const shutdownTimeout = 10 * time.Second

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"debug", cfg.App.Debug,
	)

	// Database, migrated on open
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	users, err := repository.New(db).CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	slog.Info("database_ready", "users", users)

	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	e, err := newEcho(cfg, db)
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(ctx, e, cfg)
}

// newEcho wires services, middleware and routes onto a fresh Echo instance.
func newEcho(cfg *config.Config, db *sqlx.DB) (*echo.Echo, error) {
	if cfg.Session.HashKey == "" && !cfg.App.Debug {
		return nil, errors.New("SESSION_HASH_KEY is required outside debug mode")
	}
	sessions, err := session.NewManager(&cfg.Session, strings.HasPrefix(cfg.Server.BaseURL, "https://"))
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	repo := repository.New(db)
	authSvc := auth.NewService(repo)
	recoverySvc := recovery.NewService(repo, authSvc.PasswordValidator(), time.Now)

	opts := handlers.AuthOptions{BaseURL: cfg.Server.BaseURL, Debug: cfg.App.Debug}
	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	switch {
	case errors.Is(err, email.ErrDisabled):
		slog.Warn("email_disabled", "hint", "set MAIL_SERVER, MAIL_USERNAME and MAIL_PASSWORD to send recovery links")
	case err != nil:
		return nil, fmt.Errorf("failed to configure email: %w", err)
	default:
		opts.Mailer = mailer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler(cfg.App.Debug)

	setupMiddleware(e, cfg, sessions, repo)
	setupRoutes(e, routeHandlers{
		base:    handlers.New(repo),
		auth:    handlers.NewAuth(authSvc, recoverySvc, repo, sessions, opts),
		tasks:   handlers.NewTasks(tasks.NewService(repo), sessions, cfg.App.Debug, time.Now),
		profile: handlers.NewProfile(authSvc, repo, sessions, cfg.App.Debug),
	}, sessions)

	return e, nil
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	setup, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)
	serve := func(start func() error) {
		if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	var challengeServer *http.Server

	switch setup.Mode {
	case TLSModeOff:
		go serve(func() error { return e.Start(addr) })
	case TLSModeACME:
		go serve(func() error { return startTLSServer(e, ":443", setup.TLSConfig) })
		challengeServer = &http.Server{
			Addr:              ":80",
			Handler:           setup.ChallengeHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go serve(challengeServer.ListenAndServe)
	default:
		go serve(func() error { return startTLSServer(e, addr, setup.TLSConfig) })
	}
	slog.Info("server running", "url", cfg.Server.BaseURL)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}
	if challengeServer != nil {
		if err := challengeServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown challenge server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.TLSServer.Serve(e.TLSListener)
}
