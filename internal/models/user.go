// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// User is an account holder. Email is unique and stored lowercased.
// PasswordHash stays empty in the OTP flow; the column exists for parity
// with the relational schema.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	DOB          string    `db:"dob" json:"dob,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	GoogleID     string    `db:"google_id" json:"-"`
	IsGoogleUser bool      `db:"is_google_user" json:"is_google_user"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
