package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

func setupUserMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresUserRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "active", "is_temp_password"})
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name, password_hash, role, active, is_temp_password FROM users WHERE email = $1`)).
		WithArgs("alice@example.com").
		WillReturnRows(userRows().AddRow("u1", "alice@example.com", "Alice", []byte("hash"), "user", true, false))

	user, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" || user.Email != "alice@example.com" || !user.Active {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name, password_hash, role, active, is_temp_password FROM users WHERE email = $1`)).
		WithArgs("nobody@example.com").
		WillReturnRows(userRows())

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	user := &models.User{
		ID: "u2", Email: "new@example.com", Name: "Neu",
		PasswordHash: []byte("hash"), Role: models.RoleUser,
		Active: false, IsTempPassword: true,
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, email, name, password_hash, role, active, is_temp_password)`)).
		WithArgs(user.ID, user.Email, user.Name, user.PasswordHash, user.Role, user.Active, user.IsTempPassword).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestActivate(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET active = true, is_temp_password = false, name = $2, password_hash = $3`)).
		WithArgs("u2", "Neu", []byte("newhash")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Activate(context.Background(), "u2", "Neu", []byte("newhash")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestResetPassword_ReturnsToProvisioned(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password_hash = $2, is_temp_password = true, active = false WHERE id = $1`)).
		WithArgs("u3", []byte("temphash")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ResetPassword(context.Background(), "u3", []byte("temphash")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteUser_Error(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs("u4").
		WillReturnError(errors.New("delete failed"))

	if err := repo.Delete(context.Background(), "u4"); err == nil {
		t.Error("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
