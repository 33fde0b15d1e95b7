// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	JWT      JWTConfig
	Google   GoogleConfig
	OTP      OTPConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	From     string
	FromName string
	Username string
	Password string
	TLS      bool
}

type JWTConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Secret         string
	Issuer         string
	Expiry         time.Duration // standard session lifetime
	RememberExpiry time.Duration // lifetime when the client asks to be remembered
}

type GoogleConfig struct {
	ClientID string
}

type OTPConfig struct {
	ValidityMinutes int
}

func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		JWT: JWTConfig{
			Secret:         cmd.String("jwt-secret"),
			Issuer:         cmd.String("jwt-issuer"),
			Expiry:         cmd.Duration("jwt-expiry"),
			RememberExpiry: cmd.Duration("jwt-remember-expiry"),
		},
		Google: GoogleConfig{
			ClientID: cmd.String("google-client-id"),
		},
		OTP: OTPConfig{
			ValidityMinutes: int(cmd.Int("otp-validity-minutes")),
		},
	}
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/notes.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host (empty logs OTP mails instead of sending)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Sender address for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "Notes App",
			Usage:   "Sender display name for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP connections",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "HMAC secret for session tokens (required)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_SECRET"), toml.TOML("jwt.secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "jwt-issuer",
			Value:   "notes-backend",
			Usage:   "Issuer claim for session tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_ISSUER"), toml.TOML("jwt.issuer", configFile)),
		},
		&cli.DurationFlag{
			Name:    "jwt-expiry",
			Value:   7 * 24 * time.Hour,
			Usage:   "Session token lifetime",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_EXPIRY"), toml.TOML("jwt.expiry", configFile)),
		},
		&cli.DurationFlag{
			Name:    "jwt-remember-expiry",
			Value:   30 * 24 * time.Hour,
			Usage:   "Session token lifetime when remember-me is requested",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_REMEMBER_EXPIRY"), toml.TOML("jwt.remember_expiry", configFile)),
		},
		&cli.StringFlag{
			Name:    "google-client-id",
			Usage:   "OAuth client ID used as the ID token audience",
			Sources: cli.NewValueSourceChain(cli.EnvVar("GOOGLE_CLIENT_ID"), toml.TOML("google.client_id", configFile)),
		},
		&cli.IntFlag{
			Name:    "otp-validity-minutes",
			Value:   10,
			Usage:   "Minutes a one-time passcode stays valid",
			Sources: cli.NewValueSourceChain(cli.EnvVar("OTP_VALIDITY_MINUTES"), toml.TOML("otp.validity_minutes", configFile)),
		},
	}
}
