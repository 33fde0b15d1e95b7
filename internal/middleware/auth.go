// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides echo middleware for the API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/notes-backend/internal/auth"
	"codeberg.org/oliverandrich/notes-backend/internal/models"
	"github.com/labstack/echo/v4"
)

// TokenVerifier verifies a bearer token and returns the embedded user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserLoader loads the full user record for an id.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireAuth verifies the Authorization bearer token, loads the user and
// stores it in the request context. Missing, malformed and expired tokens
// all produce the same 401.
func RequireAuth(tokens TokenVerifier, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c.Request().Header.Get("Authorization"))
			if tokenString == "" {
				return unauthorized(c, "Access token required")
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				return unauthorized(c, "Invalid token")
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				return unauthorized(c, "Invalid token - user not found")
			}

			ctx := auth.SetUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": message,
	})
}
