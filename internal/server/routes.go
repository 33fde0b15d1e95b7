// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/oliverandrich/notes-backend/internal/handlers"
	"codeberg.org/oliverandrich/notes-backend/internal/middleware"
	"codeberg.org/oliverandrich/notes-backend/internal/repository"
	"codeberg.org/oliverandrich/notes-backend/internal/services/token"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, h *handlers.Handlers, tokens *token.Service, repo *repository.Repository) {
	e.GET("/health", h.Health)

	requireAuth := middleware.RequireAuth(tokens, repo)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/send-signup-otp", h.SendSignupOTP)
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/send-login-otp", h.SendLoginOTP)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/google", h.GoogleAuth)
	authGroup.GET("/me", h.Me, requireAuth)
	authGroup.POST("/logout", h.Logout, requireAuth)

	notes := api.Group("/notes", requireAuth)
	notes.GET("", h.ListNotes)
	notes.POST("", h.CreateNote)
	notes.PUT("/:id", h.UpdateNote)
	notes.DELETE("/:id", h.DeleteNote)
}
