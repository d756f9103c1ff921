package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// PostgresImageRepository implements object-image persistence against a
// PostgreSQL database.
type PostgresImageRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresImageRepository creates a new PostgresImageRepository with the
// given database connection.
func NewPostgresImageRepository(db *sql.DB) *PostgresImageRepository {
	return &PostgresImageRepository{DB: db}
}

// Create inserts a new image record.
func (r *PostgresImageRepository) Create(ctx context.Context, img *models.ObjectImage) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO object_images (id, object_id, section, section_index, storage_key, filename, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, img.ID, img.ObjectID, img.Section, img.SectionIndex, img.StorageKey, img.Filename, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// GetByID fetches a single image record. Returns apperrors.ErrNotFound if no
// image matches.
func (r *PostgresImageRepository) GetByID(ctx context.Context, id string) (*models.ObjectImage, error) {
	var img models.ObjectImage
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, object_id, section, section_index, storage_key, filename, created_at
		FROM object_images WHERE id = $1
	`, id).Scan(&img.ID, &img.ObjectID, &img.Section, &img.SectionIndex,
		&img.StorageKey, &img.Filename, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

// ListByObject returns all image records for the given object, oldest first.
func (r *PostgresImageRepository) ListByObject(ctx context.Context, objectID string) ([]models.ObjectImage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, object_id, section, section_index, storage_key, filename, created_at
		FROM object_images WHERE object_id = $1 ORDER BY created_at
	`, objectID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []models.ObjectImage
	for rows.Next() {
		var img models.ObjectImage
		if err := rows.Scan(&img.ID, &img.ObjectID, &img.Section, &img.SectionIndex,
			&img.StorageKey, &img.Filename, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Delete removes an image record.
func (r *PostgresImageRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM object_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
