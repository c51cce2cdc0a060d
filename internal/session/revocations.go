package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"comida-a-casa/internal/database"
)

// Revocations remembers tokens revoked before their expiry.
type Revocations interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SQLRevocations stores revoked token ids in the revoked_sessions table.
type SQLRevocations struct {
	db *sql.DB
}

func NewSQLRevocations(db *sql.DB) *SQLRevocations {
	return &SQLRevocations{db: db}
}

func (r *SQLRevocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_sessions (jti, expires_at) VALUES (?, ?) ON CONFLICT(jti) DO NOTHING`,
		jti, database.FormatTime(expiresAt))
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SQLRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM revoked_sessions WHERE jti = ?`, jti).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return true, nil
}

// Purge drops revocations whose tokens have expired anyway.
func (r *SQLRevocations) Purge(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at < ?`, database.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to purge revocations: %w", err)
	}
	return res.RowsAffected()
}
