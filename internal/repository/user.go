// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/oliverandrich/notes-backend/internal/models"
)

// CreateUserParams holds the writable fields for a new user row.
type CreateUserParams struct {
	Name         string
	Email        string
	DOB          string
	GoogleID     string
	IsGoogleUser bool
}

// CreateUser inserts a new user. The unique email index is the
// authoritative duplicate guard; a violation surfaces as ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		Name:         strings.TrimSpace(params.Name),
		Email:        NormalizeEmail(params.Email),
		DOB:          params.DOB,
		GoogleID:     params.GoogleID,
		IsGoogleUser: params.IsGoogleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, dob, google_id, is_google_user, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.DOB, user.GoogleID, user.IsGoogleUser, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their case-normalized email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, NormalizeEmail(email))
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UserExists checks if a user with the given email exists.
func (r *Repository) UserExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM users WHERE email = ?`, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LinkGoogleAccount attaches an external identity to an existing user.
// The is_google_user flag is set once and never unset.
func (r *Repository) LinkGoogleAccount(ctx context.Context, userID int64, googleID string) (*models.User, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET google_id = ?, is_google_user = 1, updated_at = ? WHERE id = ?`,
		googleID, time.Now().UTC(), userID)
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, userID)
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
