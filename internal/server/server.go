// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and HTTP routing
// together and runs the process.
package server

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

	"codeberg.org/oliverandrich/notes-backend/internal/config"
	"codeberg.org/oliverandrich/notes-backend/internal/database"
	"codeberg.org/oliverandrich/notes-backend/internal/handlers"
	"codeberg.org/oliverandrich/notes-backend/internal/i18n"
	"codeberg.org/oliverandrich/notes-backend/internal/repository"
	authsvc "codeberg.org/oliverandrich/notes-backend/internal/services/auth"
	"codeberg.org/oliverandrich/notes-backend/internal/services/email"
	"codeberg.org/oliverandrich/notes-backend/internal/services/googleauth"
	"codeberg.org/oliverandrich/notes-backend/internal/services/otp"
	"codeberg.org/oliverandrich/notes-backend/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	repo := repository.New(db)

	tokens, err := token.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry, cfg.JWT.RememberExpiry)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	mailer, err := newMailer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}

	otps := otp.NewService(repo, time.Duration(cfg.OTP.ValidityMinutes)*time.Minute)
	google := googleauth.NewService(cfg.Google.ClientID)
	auth := authsvc.NewService(repo, otps, tokens, google, mailer)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, handlers.New(auth, repo), tokens, repo)

	return startWithGracefulShutdown(ctx, e, cfg)
}

// newMailer returns the SMTP sender, or the log-only sender when no SMTP
// host is configured.
func newMailer(cfg *config.Config) (email.Sender, error) {
	if cfg.SMTP.Host == "" {
		slog.Warn("no smtp host configured, logging passcodes instead of sending mail")
		return email.LogSender{}, nil
	}
	return email.NewService(&cfg.SMTP, cfg.OTP.ValidityMinutes)
}

// CleanupOTPs removes expired and consumed passcodes. Invoked via the
// cleanup-otps subcommand, typically from a scheduler.
func CleanupOTPs(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close(db)
	}()

	repo := repository.New(db)
	otps := otp.NewService(repo, time.Duration(cfg.OTP.ValidityMinutes)*time.Minute)

	removed, err := otps.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge passcodes: %w", err)
	}

	slog.Info("purged passcodes", "removed", removed)
	return nil
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("server running", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
