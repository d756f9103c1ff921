// Package repository provides PostgreSQL persistence for users, sessions,
// objects, and object images.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// PostgresUserRepository implements user persistence against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given
// database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, email, name, password_hash, role, active, is_temp_password`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.IsTempPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, active, is_temp_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Active, u.IsTempPassword)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail fetches a user by login address. Returns apperrors.ErrNotFound
// if no user matches.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID fetches a user by ID. Returns apperrors.ErrNotFound if no user matches.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// List returns all user records ordered by email.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.IsTempPassword); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Activate marks a provisioned account as active, setting the chosen name and
// permanent password. Used by signup.
func (r *PostgresUserRepository) Activate(ctx context.Context, id, name string, passwordHash []byte) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET active = true, is_temp_password = false, name = $2, password_hash = $3
		WHERE id = $1
	`, id, name, passwordHash)
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	return nil
}

// UpdatePassword stores a new permanent password hash and clears the
// temporary-password flag.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, is_temp_password = false WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ResetPassword stores a temporary password hash and returns the account to
// the provisioned state (inactive, temp credential).
func (r *PostgresUserRepository) ResetPassword(ctx context.Context, id string, passwordHash []byte) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, is_temp_password = true, active = false WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// UpdateName changes the display name only.
func (r *PostgresUserRepository) UpdateName(ctx context.Context, id, name string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	return nil
}

// Delete removes a user record. Sessions cascade via the foreign key.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
