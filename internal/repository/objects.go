package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// ObjectFilter narrows a List query. Zero values mean "no filter".
type ObjectFilter struct {
	// OwnerID, when set, restricts results to objects the user created or is
	// assigned to. Left empty for admin queries.
	OwnerID string
	// Search is a case-insensitive substring match over title, street, and city.
	Search string
	// Status restricts results to a single lifecycle state.
	Status models.Status
	// CreatedBy restricts results to objects created by the given user.
	CreatedBy string
	// IncludeDeleted keeps soft-deleted objects in the result set.
	IncludeDeleted bool
}

// PostgresObjectRepository implements object persistence against a PostgreSQL
// database. Nested collections are stored as JSONB columns.
type PostgresObjectRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresObjectRepository creates a new PostgresObjectRepository with the
// given database connection.
func NewPostgresObjectRepository(db *sql.DB) *PostgresObjectRepository {
	return &PostgresObjectRepository{DB: db}
}

const objectColumns = `id, title, street, zip, city, additional, floor, room,
	created_by, assigned_to, status, people, keys, rooms, meters, notes,
	signature_key, version, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(row rowScanner) (*models.Object, error) {
	var o models.Object
	var people, keys, rooms, meters []byte
	err := row.Scan(
		&o.ID, &o.Title, &o.Address.Street, &o.Address.Zip, &o.Address.City,
		&o.Address.Additional, &o.Floor, &o.Room, &o.CreatedBy,
		pq.Array(&o.AssignedTo), &o.Status, &people, &keys, &rooms, &meters,
		&o.Notes, &o.SignatureKey, &o.Version, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan object: %w", err)
	}
	if err := unmarshalInto(people, &o.People); err != nil {
		return nil, fmt.Errorf("unmarshal people: %w", err)
	}
	if err := unmarshalInto(keys, &o.Keys); err != nil {
		return nil, fmt.Errorf("unmarshal keys: %w", err)
	}
	if err := unmarshalInto(rooms, &o.Rooms); err != nil {
		return nil, fmt.Errorf("unmarshal rooms: %w", err)
	}
	if err := unmarshalInto(meters, &o.Meters); err != nil {
		return nil, fmt.Errorf("unmarshal meters: %w", err)
	}
	return &o, nil
}

func unmarshalInto(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func marshalCollections(o *models.Object) (people, keys, rooms, meters []byte, err error) {
	if people, err = json.Marshal(orEmpty(o.People)); err != nil {
		return
	}
	if keys, err = json.Marshal(orEmpty(o.Keys)); err != nil {
		return
	}
	if rooms, err = json.Marshal(orEmpty(o.Rooms)); err != nil {
		return
	}
	meters, err = json.Marshal(orEmpty(o.Meters))
	return
}

// orEmpty keeps JSONB columns as [] instead of null for nil slices.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Create inserts a new object record.
func (r *PostgresObjectRepository) Create(ctx context.Context, o *models.Object) error {
	people, keys, rooms, meters, err := marshalCollections(o)
	if err != nil {
		return fmt.Errorf("marshal collections: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO objects (id, title, street, zip, city, additional, floor, room,
			created_by, assigned_to, status, people, keys, rooms, meters, notes,
			signature_key, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, o.ID, o.Title, o.Address.Street, o.Address.Zip, o.Address.City,
		o.Address.Additional, o.Floor, o.Room, o.CreatedBy,
		pq.Array(orEmpty(o.AssignedTo)), o.Status, people, keys, rooms, meters,
		o.Notes, o.SignatureKey, o.Version, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	return nil
}

// GetByID fetches a single object. Returns apperrors.ErrNotFound if no object
// matches.
func (r *PostgresObjectRepository) GetByID(ctx context.Context, id string) (*models.Object, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+objectColumns+` FROM objects WHERE id = $1`, id)
	return scanObject(row)
}

// List returns objects matching the filter, newest first.
func (r *PostgresObjectRepository) List(ctx context.Context, f ObjectFilter) ([]models.Object, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerID != "" {
		p := arg(f.OwnerID)
		conds = append(conds, fmt.Sprintf("(created_by = %s OR %s = ANY(assigned_to))", p, p))
	}
	if !f.IncludeDeleted {
		conds = append(conds, fmt.Sprintf("status <> %s", arg(string(models.StatusDeleted))))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(string(f.Status)))
	}
	if f.CreatedBy != "" {
		conds = append(conds, "created_by = "+arg(f.CreatedBy))
	}
	if f.Search != "" {
		p := arg("%" + strings.ToLower(f.Search) + "%")
		conds = append(conds, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(street) LIKE %s OR LOWER(city) LIKE %s)", p, p, p))
	}

	query := `SELECT ` + objectColumns + ` FROM objects`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer rows.Close()

	var objects []models.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, *o)
	}
	return objects, rows.Err()
}

// Update replaces the mutable fields of an object, guarded by a version
// compare-and-swap. Returns apperrors.ErrVersionConflict when the stored
// version no longer matches expectedVersion.
func (r *PostgresObjectRepository) Update(ctx context.Context, o *models.Object, expectedVersion int64) error {
	people, keys, rooms, meters, err := marshalCollections(o)
	if err != nil {
		return fmt.Errorf("marshal collections: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE objects SET title = $3, street = $4, zip = $5, city = $6,
			additional = $7, floor = $8, room = $9, people = $10, keys = $11,
			rooms = $12, meters = $13, notes = $14, signature_key = $15,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
	`, o.ID, expectedVersion, o.Title, o.Address.Street, o.Address.Zip,
		o.Address.City, o.Address.Additional, o.Floor, o.Room,
		people, keys, rooms, meters, o.Notes, o.SignatureKey)
	if err != nil {
		return fmt.Errorf("update object: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrVersionConflict
	}
	return nil
}

// UpdateStatus overwrites the lifecycle state. Soft deletion is a transition
// to StatusDeleted, never a row removal.
func (r *PostgresObjectRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE objects SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateAssignees replaces the set of assigned users.
func (r *PostgresObjectRepository) UpdateAssignees(ctx context.Context, id string, userIDs []string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE objects SET assigned_to = $2, updated_at = now() WHERE id = $1
	`, id, pq.Array(orEmpty(userIDs)))
	if err != nil {
		return fmt.Errorf("update assignees: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
