// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"
)

// ReplaceOTP deletes any existing passcode rows for the email and inserts
// a fresh one. Both statements run in a single transaction so only the
// newest code is ever active.
func (r *Repository) ReplaceOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	email = NormalizeEmail(email)

	if _, err := tx.ExecContext(ctx, `DELETE FROM otps WHERE email = ?`, email); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO otps (email, code, expires_at, is_used, created_at) VALUES (?, ?, ?, 0, ?)`,
		email, code, expiresAt.UTC(), time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit()
}

// ConsumeOTP marks the matching passcode as used and reports whether a
// valid row was consumed. The conditional UPDATE is atomic, so a code can
// be consumed at most once. No-match, wrong code, expired and already-used
// all come back as false.
func (r *Repository) ConsumeOTP(ctx context.Context, email, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE otps SET is_used = 1 WHERE email = ? AND code = ? AND is_used = 0 AND expires_at > ?`,
		NormalizeEmail(email), code, time.Now().UTC())
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteExpiredOTPs removes expired or consumed passcodes. Maintenance
// only; the verify path never depends on it.
func (r *Repository) DeleteExpiredOTPs(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM otps WHERE expires_at < ? OR is_used = 1`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActiveOTPs returns the number of unused, unexpired passcodes for an
// email. Used by tests to assert the one-active-code invariant.
func (r *Repository) CountActiveOTPs(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT count(*) FROM otps WHERE email = ? AND is_used = 0 AND expires_at > ?`,
		NormalizeEmail(email), time.Now().UTC())
	return count, err
}
