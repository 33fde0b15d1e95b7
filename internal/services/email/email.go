// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email dispatches one-time passcodes by mail.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/notes-backend/internal/config"
	"codeberg.org/oliverandrich/notes-backend/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Purpose selects the mail template for an OTP dispatch.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeLogin  Purpose = "login"
)

// Sender dispatches a passcode to a recipient. Implemented by the SMTP
// service, the dev log sender and test fakes.
type Sender interface {
	SendOTP(ctx context.Context, to, name, code string, purpose Purpose) error
}

// Service sends OTP mail via SMTP using go-mail.
type Service struct {
	cfg             *config.SMTPConfig
	validityMinutes int
}

// NewService creates a new SMTP email service.
func NewService(cfg *config.SMTPConfig, validityMinutes int) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	if validityMinutes <= 0 {
		validityMinutes = 10
	}
	return &Service{cfg: cfg, validityMinutes: validityMinutes}, nil
}

// SendOTP sends the passcode mail for the given purpose.
func (s *Service) SendOTP(ctx context.Context, to, name, code string, purpose Purpose) error {
	subject, body := Compose(ctx, name, code, s.validityMinutes, purpose)
	return s.send(to, subject, body)
}

// Compose builds the localized subject and body for an OTP mail.
func Compose(ctx context.Context, name, code string, validityMinutes int, purpose Purpose) (subject, body string) {
	data := map[string]any{
		"Name":    name,
		"Code":    code,
		"Minutes": validityMinutes,
	}

	switch purpose {
	case PurposeSignup:
		subject = i18n.T(ctx, "otp_signup_subject")
		body = i18n.TData(ctx, "otp_signup_body", data)
	default:
		subject = i18n.T(ctx, "otp_login_subject")
		body = i18n.TData(ctx, "otp_login_body", data)
	}
	return subject, body
}

// send delivers a message via SMTP.
func (s *Service) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS for 465, STARTTLS otherwise
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// LogSender writes passcodes to the log instead of sending mail. Used in
// development when no SMTP host is configured.
type LogSender struct{}

// SendOTP logs the passcode.
func (LogSender) SendOTP(ctx context.Context, to, name, code string, purpose Purpose) error {
	slog.InfoContext(ctx, "otp issued (no smtp configured)",
		"to", to, "purpose", string(purpose), "code", code)
	return nil
}
