// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/notes-backend/internal/auth"
	authsvc "codeberg.org/oliverandrich/notes-backend/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// SendSignupOTPRequest is the request body for requesting a signup passcode.
type SendSignupOTPRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SendSignupOTP issues and mails a signup passcode.
func (h *Handlers) SendSignupOTP(c echo.Context) error {
	var req SendSignupOTPRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	var errs []string
	if !isValidEmail(req.Email) {
		errs = append(errs, "Please provide a valid email address")
	}
	if !validateName(req.Name) {
		errs = append(errs, "Name must be at least 2 characters long")
	}
	if len(errs) > 0 {
		return respondValidation(c, errs)
	}

	if err := h.auth.SendSignupOTP(c.Request().Context(), req.Email, req.Name); err != nil {
		if errors.Is(err, authsvc.ErrUserExists) {
			return respondError(c, http.StatusBadRequest, "User with this email already exists. Please login instead.")
		}
		slog.Error("send signup otp failed", "error", err)
		return respondInternal(c, "Failed to send OTP. Please try again.")
	}

	return respondOK(c, http.StatusOK, "OTP sent to your email. Please check your inbox.", nil)
}

// SignupRequest is the request body for completing a signup.
type SignupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	DOB   string `json:"dob"`
	OTP   string `json:"otp"`
}

// Signup verifies the passcode and creates the account.
func (h *Handlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	var errs []string
	if !validateName(req.Name) {
		errs = append(errs, "Name must be at least 2 characters long")
	}
	if !isValidEmail(req.Email) {
		errs = append(errs, "Please provide a valid email address")
	}
	if msg, ok := validateDOB(req.DOB, time.Now()); !ok {
		errs = append(errs, msg)
	}
	if !isValidOTP(req.OTP) {
		errs = append(errs, "Please provide a valid 6-digit OTP")
	}
	if len(errs) > 0 {
		return respondValidation(c, errs)
	}

	user, tokenString, err := h.auth.Signup(c.Request().Context(), req.Name, req.Email, req.DOB, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidOTP):
			return respondError(c, http.StatusBadRequest, "Invalid or expired OTP. Please request a new one.")
		case errors.Is(err, authsvc.ErrUserExists):
			return respondError(c, http.StatusBadRequest, "User with this email already exists.")
		}
		slog.Error("signup failed", "error", err)
		return respondInternal(c, "Failed to create account. Please try again.")
	}

	return respondOK(c, http.StatusCreated, "Account created successfully!", map[string]any{
		"user":  user,
		"token": tokenString,
	})
}

// SendLoginOTPRequest is the request body for requesting a login passcode.
type SendLoginOTPRequest struct {
	Email string `json:"email"`
}

// SendLoginOTP issues and mails a login passcode for an existing account.
func (h *Handlers) SendLoginOTP(c echo.Context) error {
	var req SendLoginOTPRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	if !isValidEmail(req.Email) {
		return respondValidation(c, []string{"Please provide a valid email address"})
	}

	if err := h.auth.SendLoginOTP(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, authsvc.ErrUserNotFound) {
			return respondError(c, http.StatusNotFound, "No account found with this email. Please sign up first.")
		}
		slog.Error("send login otp failed", "error", err)
		return respondInternal(c, "Failed to send login OTP. Please try again.")
	}

	return respondOK(c, http.StatusOK, "Login OTP sent to your email.", nil)
}

// LoginRequest is the request body for an OTP login.
type LoginRequest struct {
	Email      string `json:"email"`
	OTP        string `json:"otp"`
	RememberMe bool   `json:"rememberMe"`
}

// Login verifies the passcode and issues a session token. RememberMe
// selects the longer configured token lifetime.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	var errs []string
	if !isValidEmail(req.Email) {
		errs = append(errs, "Please provide a valid email address")
	}
	if !isValidOTP(req.OTP) {
		errs = append(errs, "Please provide a valid 6-digit OTP")
	}
	if len(errs) > 0 {
		return respondValidation(c, errs)
	}

	user, tokenString, err := h.auth.Login(c.Request().Context(), req.Email, req.OTP, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrUserNotFound):
			return respondError(c, http.StatusNotFound, "No account found with this email.")
		case errors.Is(err, authsvc.ErrInvalidOTP):
			return respondError(c, http.StatusBadRequest, "Invalid or expired OTP. Please request a new one.")
		}
		slog.Error("login failed", "error", err)
		return respondInternal(c, "Login failed. Please try again.")
	}

	return respondOK(c, http.StatusOK, "Login successful!", map[string]any{
		"user":  user,
		"token": tokenString,
	})
}

// GoogleAuthRequest is the request body for a Google sign-in.
type GoogleAuthRequest struct {
	IDToken string `json:"idToken"`
}

// GoogleAuth validates a Google ID token and signs the user in, creating
// or linking the account as needed.
func (h *Handlers) GoogleAuth(c echo.Context) error {
	var req GoogleAuthRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	if req.IDToken == "" {
		return respondValidation(c, []string{"Google ID token is required"})
	}

	user, tokenString, err := h.auth.GoogleAuth(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidGoogleToken) {
			return respondError(c, http.StatusBadRequest, "Invalid Google token.")
		}
		slog.Error("google auth failed", "error", err)
		return respondInternal(c, "Google authentication failed. Please try again.")
	}

	return respondOK(c, http.StatusOK, "Login successful!", map[string]any{
		"user":  user,
		"token": tokenString,
	})
}

// Me returns the authenticated user.
func (h *Handlers) Me(c echo.Context) error {
	user := auth.GetUser(c.Request().Context())
	if user == nil {
		return respondError(c, http.StatusUnauthorized, "Access token required")
	}

	return respondOK(c, http.StatusOK, "", map[string]any{"user": user})
}

// Logout acknowledges a logout. Tokens are stateless; the client discards
// the token and no server-side invalidation happens.
func (h *Handlers) Logout(c echo.Context) error {
	return respondOK(c, http.StatusOK, "Logged out successfully.", nil)
}
