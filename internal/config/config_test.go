// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/notes-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func loadConfig(t *testing.T, args []string) *config.Config {
	t.Helper()
	var cfg *config.Config
	cmd := &cli.Command{
		Flags: config.Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg = config.NewFromCLI(cmd)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"notes-backend"}, args...)))
	require.NotNil(t, cfg)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := loadConfig(t, nil)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Server.MaxBodySize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "./data/notes.db", cfg.Database.DSN)
	assert.Empty(t, cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.TLS)
	assert.Equal(t, "notes-backend", cfg.JWT.Issuer)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RememberExpiry)
	assert.Equal(t, 10, cfg.OTP.ValidityMinutes)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg := loadConfig(t, []string{
		"--port", "9090",
		"--log-format", "json",
		"--database-dsn", ":memory:",
		"--jwt-secret", "s3cret",
		"--jwt-expiry", "1h",
		"--google-client-id", "client-123",
	})

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "client-123", cfg.Google.ClientID)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg := loadConfig(t, nil)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}
