// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package googleauth validates Google-issued ID tokens and extracts a
// canonical identity.
package googleauth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// ErrInvalidToken is the single failure returned for every verification
// problem: malformed token, wrong audience, expiry, provider unreachable.
// Callers must not be able to tell the causes apart.
var ErrInvalidToken = errors.New("invalid google token")

// Identity is the canonical identity extracted from a valid ID token.
type Identity struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// validateFunc matches idtoken.Validate and is swappable in tests.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Service verifies ID tokens against a configured OAuth client ID.
type Service struct {
	clientID string
	validate validateFunc
}

// NewService creates a verifier for the given OAuth client ID.
func NewService(clientID string) *Service {
	return &Service{clientID: clientID, validate: idtoken.Validate}
}

// NewServiceWithValidator creates a verifier with a custom validation
// function. Used by tests to avoid calling Google.
func NewServiceWithValidator(clientID string, validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)) *Service {
	return &Service{clientID: clientID, validate: validate}
}

// Verify validates the raw ID token and returns the identity it asserts.
// Any validation failure collapses to ErrInvalidToken.
func (s *Service) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" || s.clientID == "" {
		return nil, ErrInvalidToken
	}

	payload, err := s.validate(ctx, rawToken, s.clientID)
	if err != nil || payload == nil {
		return nil, ErrInvalidToken
	}

	identity := &Identity{
		ID:      payload.Subject,
		Email:   claimString(payload, "email"),
		Name:    claimString(payload, "name"),
		Picture: claimString(payload, "picture"),
	}
	if identity.ID == "" || identity.Email == "" {
		return nil, ErrInvalidToken
	}

	return identity, nil
}

func claimString(payload *idtoken.Payload, key string) string {
	if v, ok := payload.Claims[key].(string); ok {
		return v
	}
	return ""
}
