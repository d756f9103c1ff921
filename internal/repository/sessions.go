package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// PostgresSessionRepository implements session persistence against a
// PostgreSQL database.
type PostgresSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository with
// the given database connection.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// Create inserts a new session record.
func (r *PostgresSessionRepository) Create(ctx context.Context, s *models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at) VALUES ($1, $2, $3, $4)
	`, s.ID, s.UserID, s.Token, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByToken fetches a session by its bearer token. Returns
// apperrors.ErrNotFound if no session matches.
func (r *PostgresSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at FROM sessions WHERE token = $1
	`, token).Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Delete removes the session with the given token. Deleting a non-existent
// token is not an error.
func (r *PostgresSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session belonging to the given user.
func (r *PostgresSessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many were
// removed.
func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
