// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth orchestrates the signup, login and Google identity flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/notes-backend/internal/models"
	"codeberg.org/oliverandrich/notes-backend/internal/repository"
	"codeberg.org/oliverandrich/notes-backend/internal/services/email"
	"codeberg.org/oliverandrich/notes-backend/internal/services/googleauth"
	"codeberg.org/oliverandrich/notes-backend/internal/services/otp"
	"codeberg.org/oliverandrich/notes-backend/internal/services/token"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid or expired passcode")
	ErrInvalidGoogleToken = errors.New("invalid google token")
)

// Service composes the credential store, passcode issuer, token issuer,
// external identity verifier and mailer into the authentication flows.
type Service struct {
	repo   *repository.Repository
	otps   *otp.Service
	tokens *token.Service
	google *googleauth.Service
	mailer email.Sender
}

// NewService creates the auth orchestrator.
func NewService(repo *repository.Repository, otps *otp.Service, tokens *token.Service, google *googleauth.Service, mailer email.Sender) *Service {
	return &Service{
		repo:   repo,
		otps:   otps,
		tokens: tokens,
		google: google,
		mailer: mailer,
	}
}

// SendSignupOTP issues a signup passcode unless the email is already
// registered.
func (s *Service) SendSignupOTP(ctx context.Context, emailAddr, name string) error {
	exists, err := s.repo.UserExists(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("checking existing user: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	code, err := s.otps.Issue(ctx, emailAddr)
	if err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, emailAddr, name, code, email.PurposeSignup); err != nil {
		return fmt.Errorf("sending signup mail: %w", err)
	}

	slog.Info("signup_otp_sent", "email", emailAddr)
	return nil
}

// Signup verifies the passcode and creates the account. The unique email
// index backs up the pre-check, so a concurrent duplicate insert still
// surfaces as ErrUserExists instead of a raw constraint error.
func (s *Service) Signup(ctx context.Context, name, emailAddr, dob, code string) (*models.User, string, error) {
	valid, err := s.otps.Verify(ctx, emailAddr, code)
	if err != nil {
		return nil, "", fmt.Errorf("verifying passcode: %w", err)
	}
	if !valid {
		return nil, "", ErrInvalidOTP
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Name:  name,
		Email: emailAddr,
		DOB:   dob,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	signed, err := s.tokens.Issue(user.ID, false)
	if err != nil {
		return nil, "", err
	}

	slog.Info("signup_success", "user_id", user.ID, "email", user.Email)
	return user, signed, nil
}

// SendLoginOTP issues a login passcode for an existing account.
func (s *Service) SendLoginOTP(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	code, err := s.otps.Issue(ctx, user.Email)
	if err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.Name, code, email.PurposeLogin); err != nil {
		return fmt.Errorf("sending login mail: %w", err)
	}

	slog.Info("login_otp_sent", "user_id", user.ID)
	return nil
}

// Login verifies the passcode for an existing account and issues a
// session token. The user lookup happens before any passcode check.
// rememberMe selects the longer token lifetime.
func (s *Service) Login(ctx context.Context, emailAddr, code string, rememberMe bool) (*models.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	valid, err := s.otps.Verify(ctx, user.Email, code)
	if err != nil {
		return nil, "", fmt.Errorf("verifying passcode: %w", err)
	}
	if !valid {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "invalid_otp")
		return nil, "", ErrInvalidOTP
	}

	signed, err := s.tokens.Issue(user.ID, rememberMe)
	if err != nil {
		return nil, "", err
	}

	slog.Info("login_success", "user_id", user.ID, "remember_me", rememberMe)
	return user, signed, nil
}

// GoogleAuth validates a Google ID token and signs the user in. An
// existing account for the email gets the external identity linked once;
// an unknown email gets a fresh federated account. No passcode is
// involved in this flow.
func (s *Service) GoogleAuth(ctx context.Context, idToken string) (*models.User, string, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", ErrInvalidGoogleToken
	}

	user, err := s.repo.GetUserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			user, err = s.repo.LinkGoogleAccount(ctx, user.ID, identity.ID)
			if err != nil {
				return nil, "", fmt.Errorf("linking google account: %w", err)
			}
			slog.Info("google_account_linked", "user_id", user.ID)
		}
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.repo.CreateUser(ctx, repository.CreateUserParams{
			Name:         identity.Name,
			Email:        identity.Email,
			GoogleID:     identity.ID,
			IsGoogleUser: true,
		})
		if err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				// Lost a race against a concurrent signup; the account
				// exists now, link it instead.
				existing, lookupErr := s.repo.GetUserByEmail(ctx, identity.Email)
				if lookupErr != nil {
					return nil, "", fmt.Errorf("looking up user after race: %w", lookupErr)
				}
				user, err = s.repo.LinkGoogleAccount(ctx, existing.ID, identity.ID)
				if err != nil {
					return nil, "", fmt.Errorf("linking google account: %w", err)
				}
			} else {
				return nil, "", fmt.Errorf("creating google user: %w", err)
			}
		}
	default:
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	signed, err := s.tokens.Issue(user.ID, false)
	if err != nil {
		return nil, "", err
	}

	slog.Info("google_auth_success", "user_id", user.ID)
	return user, signed, nil
}
