package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
	"github.com/tkoehler/objektverwaltung/internal/repository"
)

type mockObjectRepo struct {
	CreateFunc          func(ctx context.Context, o *models.Object) error
	GetByIDFunc         func(ctx context.Context, id string) (*models.Object, error)
	ListFunc            func(ctx context.Context, f repository.ObjectFilter) ([]models.Object, error)
	UpdateFunc          func(ctx context.Context, o *models.Object, expectedVersion int64) error
	UpdateStatusFunc    func(ctx context.Context, id string, status models.Status) error
	UpdateAssigneesFunc func(ctx context.Context, id string, userIDs []string) error
}

func (m *mockObjectRepo) Create(ctx context.Context, o *models.Object) error {
	return m.CreateFunc(ctx, o)
}
func (m *mockObjectRepo) GetByID(ctx context.Context, id string) (*models.Object, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockObjectRepo) List(ctx context.Context, f repository.ObjectFilter) ([]models.Object, error) {
	return m.ListFunc(ctx, f)
}
func (m *mockObjectRepo) Update(ctx context.Context, o *models.Object, expectedVersion int64) error {
	return m.UpdateFunc(ctx, o, expectedVersion)
}
func (m *mockObjectRepo) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	return m.UpdateStatusFunc(ctx, id, status)
}
func (m *mockObjectRepo) UpdateAssignees(ctx context.Context, id string, userIDs []string) error {
	return m.UpdateAssigneesFunc(ctx, id, userIDs)
}

type mockImageRepo struct {
	CreateFunc       func(ctx context.Context, img *models.ObjectImage) error
	GetByIDFunc      func(ctx context.Context, id string) (*models.ObjectImage, error)
	ListByObjectFunc func(ctx context.Context, objectID string) ([]models.ObjectImage, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *mockImageRepo) Create(ctx context.Context, img *models.ObjectImage) error {
	return m.CreateFunc(ctx, img)
}
func (m *mockImageRepo) GetByID(ctx context.Context, id string) (*models.ObjectImage, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockImageRepo) ListByObject(ctx context.Context, objectID string) ([]models.ObjectImage, error) {
	return m.ListByObjectFunc(ctx, objectID)
}
func (m *mockImageRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type mockBlobStore struct {
	CreateUploadURLFunc func(ctx context.Context) (string, string, error)
	AccessURLFunc       func(ctx context.Context, key string) (string, error)
	DeleteFunc          func(ctx context.Context, key string) error
}

func (m *mockBlobStore) CreateUploadURL(ctx context.Context) (string, string, error) {
	return m.CreateUploadURLFunc(ctx)
}
func (m *mockBlobStore) AccessURL(ctx context.Context, key string) (string, error) {
	return m.AccessURLFunc(ctx, key)
}
func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	return m.DeleteFunc(ctx, key)
}

func repoReturning(obj *models.Object) *mockObjectRepo {
	return &mockObjectRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Object, error) {
			if obj == nil || obj.ID != id {
				return nil, apperrors.ErrNotFound
			}
			return obj, nil
		},
	}
}

func TestObjectCreate(t *testing.T) {
	var stored *models.Object
	repo := &mockObjectRepo{
		CreateFunc: func(ctx context.Context, o *models.Object) error {
			stored = o
			return nil
		},
	}
	svc := NewObjectService(repo, &mockImageRepo{}, &mockBlobStore{})

	obj, err := svc.Create(context.Background(), creator, &ObjectInput{
		Title:   "Wohnung Hauptstraße 12",
		Address: models.Address{Street: "Hauptstraße 12", Zip: "10115", City: "Berlin"},
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusDraft, obj.Status)
	assert.Equal(t, creator.ID, obj.CreatedBy)
	assert.EqualValues(t, 1, obj.Version)
	assert.NotEmpty(t, obj.ID)
}

func TestObjectGet_Authorization(t *testing.T) {
	obj := objectIn(models.StatusDraft)
	svc := NewObjectService(repoReturning(obj), &mockImageRepo{}, &mockBlobStore{})

	_, err := svc.Get(context.Background(), stranger, obj.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	got, err := svc.Get(context.Background(), assignee, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, obj.ID, got.ID)

	_, err = svc.Get(context.Background(), creator, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestObjectGet_DeletedStillReadableByOwner(t *testing.T) {
	obj := objectIn(models.StatusDeleted)
	svc := NewObjectService(repoReturning(obj), &mockImageRepo{}, &mockBlobStore{})

	got, err := svc.Get(context.Background(), creator, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)
}

func TestObjectList_FilterScoping(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.User
		query ListQuery
		want  repository.ObjectFilter
	}{
		{
			name:  "non-admin is ownership scoped, admin filters ignored",
			actor: creator,
			query: ListQuery{Status: models.StatusReleased, CreatedBy: "someone-else"},
			want:  repository.ObjectFilter{OwnerID: creator.ID},
		},
		{
			name:  "non-admin short search ignored",
			actor: creator,
			query: ListQuery{Search: "ab"},
			want:  repository.ObjectFilter{OwnerID: creator.ID},
		},
		{
			name:  "non-admin search applied",
			actor: creator,
			query: ListQuery{Search: "Berlin"},
			want:  repository.ObjectFilter{OwnerID: creator.ID, Search: "Berlin"},
		},
		{
			name:  "admin sees everything with filters",
			actor: admin,
			query: ListQuery{Search: "Haupt", Status: models.StatusDeleted, CreatedBy: "u-creator"},
			want: repository.ObjectFilter{
				Search: "Haupt", Status: models.StatusDeleted,
				CreatedBy: "u-creator", IncludeDeleted: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFilter repository.ObjectFilter
			repo := &mockObjectRepo{
				ListFunc: func(ctx context.Context, f repository.ObjectFilter) ([]models.Object, error) {
					gotFilter = f
					return nil, nil
				},
			}
			svc := NewObjectService(repo, &mockImageRepo{}, &mockBlobStore{})

			_, err := svc.List(context.Background(), tt.actor, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotFilter)
		})
	}
}

func TestObjectUpdate_StatusGate(t *testing.T) {
	tests := []struct {
		name    string
		actor   *models.User
		status  models.Status
		wantErr error
	}{
		{"creator updates draft", creator, models.StatusDraft, nil},
		{"creator updates released", creator, models.StatusReleased, apperrors.ErrEditForbidden},
		{"admin updates released", admin, models.StatusReleased, nil},
		{"admin updates completed", admin, models.StatusCompleted, apperrors.ErrEditForbidden},
		{"stranger updates draft", stranger, models.StatusDraft, apperrors.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := objectIn(tt.status)
			repo := repoReturning(obj)
			repo.UpdateFunc = func(ctx context.Context, o *models.Object, expectedVersion int64) error {
				return nil
			}
			svc := NewObjectService(repo, &mockImageRepo{}, &mockBlobStore{})

			_, err := svc.Update(context.Background(), tt.actor, obj.ID, &ObjectInput{Title: "x"}, obj.Version)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestObjectUpdate_VersionConflict(t *testing.T) {
	obj := objectIn(models.StatusDraft)
	obj.Version = 4
	repo := repoReturning(obj)
	repo.UpdateFunc = func(ctx context.Context, o *models.Object, expectedVersion int64) error {
		if expectedVersion != 3 {
			t.Errorf("expectedVersion = %d; want 3", expectedVersion)
		}
		return apperrors.ErrVersionConflict
	}
	svc := NewObjectService(repo, &mockImageRepo{}, &mockBlobStore{})

	// Client still holds version 3, store moved on to 4.
	_, err := svc.Update(context.Background(), creator, obj.ID, &ObjectInput{Title: "x"}, 3)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)
}

func TestObjectUpdateStatus_SubmitThenLocked(t *testing.T) {
	obj := objectIn(models.StatusDraft)
	repo := repoReturning(obj)
	repo.UpdateStatusFunc = func(ctx context.Context, id string, status models.Status) error {
		obj.Status = status
		return nil
	}
	svc := NewObjectService(repo, &mockImageRepo{}, &mockBlobStore{})

	// Creator submits the draft.
	err := svc.UpdateStatus(context.Background(), creator, obj.ID, models.StatusReleased)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReleased, obj.Status)

	// The released object is now locked for the creator.
	_, err = svc.Update(context.Background(), creator, obj.ID, &ObjectInput{Title: "x"}, obj.Version)
	assert.ErrorIs(t, err, apperrors.ErrEditForbidden)

	// And the creator cannot take it further.
	err = svc.UpdateStatus(context.Background(), creator, obj.ID, models.StatusUnderReview)
	assert.ErrorIs(t, err, apperrors.ErrRoleRequired)
}

func TestAssignUsers_AdminOnly(t *testing.T) {
	obj := objectIn(models.StatusDraft)
	repo := repoReturning(obj)
	var assigned []string
	repo.UpdateAssigneesFunc = func(ctx context.Context, id string, userIDs []string) error {
		assigned = userIDs
		return nil
	}
	svc := NewObjectService(repo, &mockImageRepo{}, &mockBlobStore{})

	err := svc.AssignUsers(context.Background(), creator, obj.ID, []string{"u9"})
	assert.ErrorIs(t, err, apperrors.ErrRoleRequired)

	err = svc.AssignUsers(context.Background(), admin, obj.ID, []string{"u9"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u9"}, assigned)
}
