// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/notes-backend/internal/auth"
	"codeberg.org/oliverandrich/notes-backend/internal/handlers"
	"codeberg.org/oliverandrich/notes-backend/internal/models"
	"codeberg.org/oliverandrich/notes-backend/internal/repository"
	authsvc "codeberg.org/oliverandrich/notes-backend/internal/services/auth"
	"codeberg.org/oliverandrich/notes-backend/internal/services/email"
	"codeberg.org/oliverandrich/notes-backend/internal/services/googleauth"
	"codeberg.org/oliverandrich/notes-backend/internal/services/otp"
	"codeberg.org/oliverandrich/notes-backend/internal/services/token"
	"codeberg.org/oliverandrich/notes-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

// captureMailer records the last dispatched passcode.
type captureMailer struct {
	code    string
	purpose email.Purpose
}

func (m *captureMailer) SendOTP(_ context.Context, _, _, code string, purpose email.Purpose) error {
	m.code = code
	m.purpose = purpose
	return nil
}

type testEnv struct {
	e      *echo.Echo
	h      *handlers.Handlers
	repo   *repository.Repository
	tokens *token.Service
	mailer *captureMailer
}

func newTestEnv(t *testing.T, validate func(context.Context, string, string) (*idtoken.Payload, error)) *testEnv {
	t.Helper()

	_, repo := testutil.NewTestDB(t)

	tokens, err := token.NewService("test-secret-0123456789", "notes-backend", 7*24*time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	if validate == nil {
		validate = func(context.Context, string, string) (*idtoken.Payload, error) {
			return nil, errors.New("not configured")
		}
	}

	mailer := &captureMailer{}
	svc := authsvc.NewService(
		repo,
		otp.NewService(repo, 10*time.Minute),
		tokens,
		googleauth.NewServiceWithValidator("client-id", validate),
		mailer,
	)

	return &testEnv{
		e:      echo.New(),
		h:      handlers.New(svc, repo),
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
	}
}

// asUser stores the user in the request context, standing in for the auth
// middleware.
func asUser(c echo.Context, user *models.User) {
	c.SetRequest(c.Request().WithContext(auth.SetUser(c.Request().Context(), user)))
}

// envelope mirrors the wire format for assertions.
type envelope struct { //nolint:govet // test helper
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func dataField[T any](t *testing.T, env envelope, key string) T {
	t.Helper()
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &data))
	raw, ok := data[key]
	require.True(t, ok, "data field %q missing", key)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
