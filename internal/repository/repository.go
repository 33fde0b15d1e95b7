// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package repository implements raw-SQL persistence for users, passcodes
// and notes on top of sqlx.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// ErrEmailTaken is returned when an insert violates the unique email index.
var ErrEmailTaken = errors.New("email already taken")

// Repository wraps the database handle for all persistence operations.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying sqlx handle for direct access.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// wrapError converts database/sql errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure. modernc.org/sqlite exposes no typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
