// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the uniform response body for every API endpoint.
type envelope struct { //nolint:govet // fieldalignment: wire format readability
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
}

func respondOK(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}

func respondValidation(c echo.Context, errs []string) error {
	return c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func respondInternal(c echo.Context, message string) error {
	return respondError(c, http.StatusInternalServerError, message)
}
