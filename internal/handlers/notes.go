// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/notes-backend/internal/auth"
	"codeberg.org/oliverandrich/notes-backend/internal/models"
	"codeberg.org/oliverandrich/notes-backend/internal/repository"
	"github.com/labstack/echo/v4"
)

// ListNotes returns all notes of the authenticated user, newest first.
func (h *Handlers) ListNotes(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return respondError(c, http.StatusUnauthorized, "Access token required")
	}

	notes, err := h.repo.ListNotes(c.Request().Context(), user.ID)
	if err != nil {
		slog.Error("list notes failed", "error", err, "user_id", user.ID)
		return respondInternal(c, "Failed to fetch notes.")
	}

	return respondOK(c, http.StatusOK, "", map[string]any{"notes": notes})
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNote validates and persists a new note for the authenticated user.
func (h *Handlers) CreateNote(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return respondError(c, http.StatusUnauthorized, "Access token required")
	}

	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	if req.Title == "" || req.Content == "" {
		return respondError(c, http.StatusBadRequest, "Title and content are required.")
	}
	if errs := validateNoteFields(&req.Title, &req.Content); len(errs) > 0 {
		return respondValidation(c, errs)
	}

	note, err := h.repo.CreateNote(c.Request().Context(), user.ID,
		strings.TrimSpace(req.Title), strings.TrimSpace(req.Content))
	if err != nil {
		slog.Error("create note failed", "error", err, "user_id", user.ID)
		return respondInternal(c, "Failed to create note.")
	}

	return respondOK(c, http.StatusCreated, "Note created successfully!", map[string]any{"note": note})
}

// UpdateNoteRequest is the request body for a partial note update.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// UpdateNote applies a partial update to one of the user's notes. A note
// that does not exist and a note owned by someone else are both 404.
func (h *Handlers) UpdateNote(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return respondError(c, http.StatusUnauthorized, "Access token required")
	}

	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid note ID.")
	}

	var req UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	if errs := validateNoteFields(req.Title, req.Content); len(errs) > 0 {
		return respondValidation(c, errs)
	}

	title := req.Title
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		title = &trimmed
	}
	content := req.Content
	if content != nil {
		trimmed := strings.TrimSpace(*content)
		content = &trimmed
	}

	note, err := h.repo.UpdateNote(c.Request().Context(), noteID, user.ID, title, content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Note not found or unauthorized.")
		}
		slog.Error("update note failed", "error", err, "user_id", user.ID, "note_id", noteID)
		return respondInternal(c, "Failed to update note.")
	}

	return respondOK(c, http.StatusOK, "Note updated successfully!", map[string]any{"note": note})
}

// DeleteNote removes one of the user's notes.
func (h *Handlers) DeleteNote(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return respondError(c, http.StatusUnauthorized, "Access token required")
	}

	noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid note ID.")
	}

	if err := h.repo.DeleteNote(c.Request().Context(), noteID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Note not found or unauthorized.")
		}
		slog.Error("delete note failed", "error", err, "user_id", user.ID, "note_id", noteID)
		return respondInternal(c, "Failed to delete note.")
	}

	return respondOK(c, http.StatusOK, "Note deleted successfully!", nil)
}

func currentUser(c echo.Context) *models.User {
	return auth.GetUser(c.Request().Context())
}
