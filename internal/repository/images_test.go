package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

func setupImageMock(t *testing.T) (*PostgresImageRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresImageRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestCreateImage(t *testing.T) {
	repo, mock, cleanup := setupImageMock(t)
	defer cleanup()

	idx := 1
	img := &models.ObjectImage{
		ID: "img1", ObjectID: "o1", Section: models.SectionMeters,
		SectionIndex: &idx, StorageKey: "objects/2026/08/28/key",
		Filename: "zaehler.jpg", CreatedAt: time.Now(),
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO object_images (id, object_id, section, section_index, storage_key, filename, created_at)`)).
		WithArgs(img.ID, img.ObjectID, img.Section, img.SectionIndex, img.StorageKey, img.Filename, img.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetImageByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupImageMock(t)
	defer cleanup()

	mock.ExpectQuery(`(?s)SELECT id, object_id, .+ FROM object_images WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "object_id", "section", "section_index", "storage_key", "filename", "created_at"}))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestListImagesByObject(t *testing.T) {
	repo, mock, cleanup := setupImageMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "object_id", "section", "section_index", "storage_key", "filename", "created_at"}).
		AddRow("img1", "o1", "keys", nil, "key1", "schluessel.jpg", time.Now()).
		AddRow("img2", "o1", "rooms", 0, "key2", "bad.jpg", time.Now())
	mock.ExpectQuery(`(?s)SELECT id, object_id, .+ FROM object_images WHERE object_id = \$1 ORDER BY created_at`).
		WithArgs("o1").
		WillReturnRows(rows)

	images, err := repo.ListByObject(context.Background(), "o1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images; want 2", len(images))
	}
	if images[0].SectionIndex != nil {
		t.Errorf("images[0].SectionIndex = %v; want nil", *images[0].SectionIndex)
	}
	if images[1].SectionIndex == nil || *images[1].SectionIndex != 0 {
		t.Errorf("images[1].SectionIndex = %v; want 0", images[1].SectionIndex)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteImage(t *testing.T) {
	repo, mock, cleanup := setupImageMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM object_images WHERE id = $1`)).
		WithArgs("img1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "img1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
