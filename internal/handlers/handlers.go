// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains all HTTP handlers for the JSON API.
package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/notes-backend/internal/repository"
	authsvc "codeberg.org/oliverandrich/notes-backend/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	auth *authsvc.Service
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(auth *authsvc.Service, repo *repository.Repository) *Handlers {
	return &Handlers{auth: auth, repo: repo}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
