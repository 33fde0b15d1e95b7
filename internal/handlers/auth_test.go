// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/notes-backend/internal/middleware"
	"codeberg.org/oliverandrich/notes-backend/internal/models"
	"codeberg.org/oliverandrich/notes-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestSignupFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	// Request a signup passcode.
	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/send-signup-otp",
		strings.NewReader(`{"email":"alice@example.com","name":"Alice"}`))
	require.NoError(t, env.h.SendSignupOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent to your email. Please check your inbox.", decodeEnvelope(t, rec).Message)
	require.Len(t, env.mailer.code, 6)

	// Complete the signup with the mailed code.
	body := fmt.Sprintf(`{"name":"Alice","email":"alice@example.com","dob":"1990-05-01","otp":%q}`, env.mailer.code)
	c, rec = testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	require.NoError(t, env.h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	env2 := decodeEnvelope(t, rec)
	assert.True(t, env2.Success)
	user := dataField[models.User](t, env2, "user")
	tokenString := dataField[string](t, env2, "token")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsGoogleUser)
	require.NotEmpty(t, tokenString)

	// The issued token authenticates /me through the middleware.
	c, rec = testutil.NewEchoContextWithHeaders(env.e, http.MethodGet, "/api/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + tokenString})
	handler := middleware.RequireAuth(env.tokens, env.repo)(env.h.Me)
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
	me := dataField[models.User](t, decodeEnvelope(t, rec), "user")
	assert.Equal(t, user.ID, me.ID)
}

func TestSendSignupOTP_ExistingUser(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.NewTestUser(t, env.repo, "Alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/send-signup-otp",
		strings.NewReader(`{"email":"alice@example.com","name":"Alice"}`))
	require.NoError(t, env.h.SendSignupOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exists. Please login instead.", decodeEnvelope(t, rec).Message)
}

func TestSendSignupOTP_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/send-signup-otp",
		strings.NewReader(`{"email":"not-an-email","name":"A"}`))
	require.NoError(t, env.h.SendSignupOTP(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeEnvelope(t, rec)
	assert.Equal(t, "Validation failed", got.Message)
	assert.Contains(t, got.Errors, "Please provide a valid email address")
	assert.Contains(t, got.Errors, "Name must be at least 2 characters long")
}

func TestSignup_InvalidOTP(t *testing.T) {
	env := newTestEnv(t, nil)

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","dob":"1990-05-01","otp":"123456"}`))
	require.NoError(t, env.h.Signup(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP. Please request a new one.", decodeEnvelope(t, rec).Message)
}

func TestSignup_Underage(t *testing.T) {
	env := newTestEnv(t, nil)

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"name":"Kid","email":"kid@example.com","dob":"2020-01-01","otp":"123456"}`))
	require.NoError(t, env.h.Signup(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeEnvelope(t, rec)
	assert.Equal(t, "Validation failed", got.Message)
	assert.Contains(t, got.Errors, "You must be at least 13 years old to sign up")
}

func TestSendLoginOTP_UnknownUser(t *testing.T) {
	env := newTestEnv(t, nil)

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/send-login-otp",
		strings.NewReader(`{"email":"nobody@example.com"}`))
	require.NoError(t, env.h.SendLoginOTP(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No account found with this email. Please sign up first.", decodeEnvelope(t, rec).Message)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	user := testutil.NewTestUser(t, env.repo, "Alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/send-login-otp",
		strings.NewReader(`{"email":"alice@example.com"}`))
	require.NoError(t, env.h.SendLoginOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := fmt.Sprintf(`{"email":"alice@example.com","otp":%q,"rememberMe":true}`, env.mailer.code)
	c, rec = testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/login", strings.NewReader(body))
	require.NoError(t, env.h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeEnvelope(t, rec)
	assert.Equal(t, "Login successful!", got.Message)
	assert.Equal(t, user.ID, dataField[models.User](t, got, "user").ID)

	userID, err := env.tokens.Verify(dataField[string](t, got, "token"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLogin_WrongOTP(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.NewTestUser(t, env.repo, "Alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","otp":"123456"}`))
	require.NoError(t, env.h.Login(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP. Please request a new one.", decodeEnvelope(t, rec).Message)
}

func TestGoogleAuth(t *testing.T) {
	env := newTestEnv(t, func(context.Context, string, string) (*idtoken.Payload, error) {
		return &idtoken.Payload{
			Subject: "sub-1",
			Claims:  map[string]any{"email": "g@example.com", "name": "Google User"},
		}, nil
	})

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/google",
		strings.NewReader(`{"idToken":"raw-token"}`))
	require.NoError(t, env.h.GoogleAuth(c))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeEnvelope(t, rec)
	user := dataField[models.User](t, got, "user")
	assert.True(t, user.IsGoogleUser)
	assert.Equal(t, "g@example.com", user.Email)
}

func TestGoogleAuth_InvalidToken(t *testing.T) {
	env := newTestEnv(t, func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("signature mismatch")
	})

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/google",
		strings.NewReader(`{"idToken":"raw-token"}`))
	require.NoError(t, env.h.GoogleAuth(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Google token.", decodeEnvelope(t, rec).Message)
}

func TestGoogleAuth_MissingToken(t *testing.T) {
	env := newTestEnv(t, nil)

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/google",
		strings.NewReader(`{}`))
	require.NoError(t, env.h.GoogleAuth(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Errors, "Google ID token is required")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	c, rec := testutil.NewEchoContext(env.e, http.MethodPost, "/api/auth/logout", nil)
	require.NoError(t, env.h.Logout(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully.", decodeEnvelope(t, rec).Message)
}
