// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// OTP is a single-use 6-digit passcode bound to an email address.
// At most one unused, unexpired row exists per email; issuing a new code
// replaces any previous rows for the same address.
type OTP struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Code      string    `db:"code" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	IsUsed    bool      `db:"is_used" json:"is_used"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
