// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token mints and verifies signed session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingClaim is returned when the payload lacks the user id claim.
	ErrMissingClaim = errors.New("token payload is missing the user id claim")
)

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// Service issues HS256-signed bearer tokens carrying a user identifier.
// Tokens stay valid for their full lifetime; there is no revocation.
type Service struct {
	secret         []byte
	issuer         string
	expiry         time.Duration
	rememberExpiry time.Duration
	now            func() time.Time
}

// NewService creates a token service. The remember-me expiry applies when
// the caller asks for a long-lived session.
func NewService(secret, issuer string, expiry, rememberExpiry time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	if rememberExpiry <= 0 {
		rememberExpiry = 30 * 24 * time.Hour
	}
	return &Service{
		secret:         []byte(secret),
		issuer:         issuer,
		expiry:         expiry,
		rememberExpiry: rememberExpiry,
		now:            time.Now,
	}, nil
}

// Issue mints a signed token for the user. rememberMe selects the longer
// configured lifetime.
func (s *Service) Issue(userID int64, rememberMe bool) (string, error) {
	ttl := s.expiry
	if rememberMe {
		ttl = s.rememberExpiry
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns the embedded user id.
func (s *Service) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return 0, ErrMissingClaim
	}

	return claims.UserID, nil
}
