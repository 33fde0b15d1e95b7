// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/notes-backend/internal/database"
	"codeberg.org/oliverandrich/notes-backend/internal/models"
	"codeberg.org/oliverandrich/notes-backend/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a test user in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, name, email string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), repository.CreateUserParams{
		Name:  name,
		Email: email,
	})
	require.NoError(t, err)
	return user
}

// NewTestNote creates a test note for a user.
func NewTestNote(t *testing.T, repo *repository.Repository, userID int64, title, content string) *models.Note {
	t.Helper()
	note, err := repo.CreateNote(context.Background(), userID, title, content)
	require.NoError(t, err)
	return note
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
