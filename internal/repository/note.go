// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/notes-backend/internal/models"
)

// ListNotes returns all notes owned by userID, newest-created first.
func (r *Repository) ListNotes(ctx context.Context, userID int64) ([]models.Note, error) {
	notes := []models.Note{}
	err := r.db.SelectContext(ctx, &notes,
		`SELECT * FROM notes WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote retrieves a single note scoped by both note id and owner id.
func (r *Repository) GetNote(ctx context.Context, noteID, userID int64) (*models.Note, error) {
	var note models.Note
	err := r.db.GetContext(ctx, &note,
		`SELECT * FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &note, nil
}

// CreateNote persists a new note and returns the created row.
func (r *Repository) CreateNote(ctx context.Context, userID int64, title, content string) (*models.Note, error) {
	now := time.Now().UTC()
	note := &models.Note{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (user_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		note.UserID, note.Title, note.Content, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return nil, err
	}

	note.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote applies a partial update to a note owned by userID. Nil
// fields are left untouched. Returns ErrNotFound when no row matches both
// keys, deliberately conflating "absent" and "not yours".
func (r *Repository) UpdateNote(ctx context.Context, noteID, userID int64, title, content *string) (*models.Note, error) {
	if title == nil && content == nil {
		return r.GetNote(ctx, noteID, userID)
	}

	query := `UPDATE notes SET updated_at = ?`
	args := []any{time.Now().UTC()}

	if title != nil {
		query += `, title = ?`
		args = append(args, *title)
	}
	if content != nil {
		query += `, content = ?`
		args = append(args, *content)
	}

	query += ` WHERE id = ? AND user_id = ?`
	args = append(args, noteID, userID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.GetNote(ctx, noteID, userID)
}

// DeleteNote removes a note scoped by both note id and owner id.
func (r *Repository) DeleteNote(ctx context.Context, noteID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
