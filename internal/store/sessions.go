package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/models"
)

// CreateSession stores an opaque login token for userID.
func (db *DB) CreateSession(ctx context.Context, token string, userID int64, expires time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expires.UTC())
	if err != nil {
		return fmt.Errorf("store: create session: %w", err)
	}
	return nil
}

// ResolveSession returns the user owning an unexpired token. Unknown or
// expired tokens yield apperr.ErrUnauthenticated; expired rows are removed.
func (db *DB) ResolveSession(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var (
		userID  int64
		expires time.Time
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token).Scan(&userID, &expires)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !now.Before(expires) {
		_ = db.DeleteSession(ctx, token)
		return nil, apperr.ErrUnauthenticated
	}
	u, err := db.GetUser(ctx, userID)
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	return u, nil
}

// DeleteSession removes a token. Unknown tokens are not an error.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}
