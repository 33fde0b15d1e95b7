// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package otp issues and verifies single-use 6-digit passcodes.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"codeberg.org/oliverandrich/notes-backend/internal/repository"
)

// DefaultValidity is used when the configured validity is not positive.
const DefaultValidity = 10 * time.Minute

// Service generates, stores and consumes passcodes.
type Service struct {
	repo     *repository.Repository
	validity time.Duration
}

// NewService creates a new passcode service.
func NewService(repo *repository.Repository, validity time.Duration) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Service{repo: repo, validity: validity}
}

// Issue generates a fresh 6-digit code for the email and persists it,
// replacing any previously issued code for the same address. The code is
// returned so the caller can dispatch it by mail.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", fmt.Errorf("generating passcode: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.validity)
	if err := s.repo.ReplaceOTP(ctx, email, code, expiresAt); err != nil {
		return "", fmt.Errorf("storing passcode: %w", err)
	}

	return code, nil
}

// Verify consumes the passcode and reports whether it was valid. Wrong,
// expired, already-used and never-issued codes are indistinguishable.
func (s *Service) Verify(ctx context.Context, email, code string) (bool, error) {
	return s.repo.ConsumeOTP(ctx, email, code)
}

// PurgeExpired removes expired and consumed passcodes. Invoked explicitly
// as a maintenance operation, never from the request path.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredOTPs(ctx)
}

// GenerateCode returns a uniformly random code in the range
// 100000-999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
