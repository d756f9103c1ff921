package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
	"github.com/tkoehler/objektverwaltung/internal/repository"
)

// ObjectRepository defines the object persistence operations required by the
// object service.
type ObjectRepository interface {
	Create(ctx context.Context, o *models.Object) error
	// GetByID returns the object, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Object, error)
	List(ctx context.Context, f repository.ObjectFilter) ([]models.Object, error)
	// Update replaces mutable fields guarded by a version compare-and-swap;
	// apperrors.ErrVersionConflict on a stale version.
	Update(ctx context.Context, o *models.Object, expectedVersion int64) error
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	UpdateAssignees(ctx context.Context, id string, userIDs []string) error
}

// minSearchLen is the shortest search string that is applied as a filter;
// anything shorter is treated as "no filter", not rejected.
const minSearchLen = 3

// ObjectInput carries the mutable fields of an object. Updates are full
// replacements of these fields, matching the form-based editor.
type ObjectInput struct {
	Title        string          `json:"title"`
	Address      models.Address  `json:"address"`
	Floor        string          `json:"floor"`
	Room         string          `json:"room"`
	People       []models.Person `json:"people"`
	Keys         []models.Key    `json:"keys"`
	Rooms        []models.Room   `json:"rooms"`
	Meters       []models.Meter  `json:"meters"`
	Notes        string          `json:"notes"`
	SignatureKey string          `json:"signatureKey"`
}

// ListQuery narrows an object listing. Status and CreatedBy are admin-only
// capabilities and are silently ignored for regular users.
type ListQuery struct {
	Search    string
	Status    models.Status
	CreatedBy string
}

// ObjectService implements the object lifecycle: creation, reads scoped by
// ownership, gated mutation, and status transitions.
type ObjectService struct {
	objects ObjectRepository
	images  ImageRepository
	blobs   BlobStore
}

// NewObjectService constructs an ObjectService.
func NewObjectService(objects ObjectRepository, images ImageRepository, blobs BlobStore) *ObjectService {
	return &ObjectService{objects: objects, images: images, blobs: blobs}
}

func applyInput(o *models.Object, in *ObjectInput) {
	o.Title = in.Title
	o.Address = in.Address
	o.Floor = in.Floor
	o.Room = in.Room
	o.People = in.People
	o.Keys = in.Keys
	o.Rooms = in.Rooms
	o.Meters = in.Meters
	o.Notes = in.Notes
	o.SignatureKey = in.SignatureKey
}

// Create stores a new object in draft status with the actor as creator.
func (s *ObjectService) Create(ctx context.Context, actor *models.User, in *ObjectInput) (*models.Object, error) {
	o := &models.Object{
		ID:        uuid.NewString(),
		CreatedBy: actor.ID,
		Status:    models.StatusDraft,
		Version:   1,
		UpdatedAt: time.Now(),
	}
	applyInput(o, in)
	if err := s.objects.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns a single object in full. Soft-deleted objects stay readable for
// their creator, assignees, and admins; only list views hide them.
func (s *ObjectService) Get(ctx context.Context, actor *models.User, id string) (*models.Object, error) {
	o, err := s.objects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actor, o) {
		return nil, apperrors.ErrUnauthorized
	}
	return o, nil
}

// List returns the objects visible to the actor. Regular users see only
// objects they created or are assigned to, never deleted ones; their
// status/creator filters are ignored. Admins see everything and may filter.
// Search terms shorter than three characters are treated as no filter.
func (s *ObjectService) List(ctx context.Context, actor *models.User, q ListQuery) ([]models.Object, error) {
	f := repository.ObjectFilter{}
	if len([]rune(q.Search)) >= minSearchLen {
		f.Search = q.Search
	}
	if actor.Role == models.RoleAdmin {
		f.IncludeDeleted = true
		f.Status = q.Status
		f.CreatedBy = q.CreatedBy
	} else {
		f.OwnerID = actor.ID
	}
	return s.objects.List(ctx, f)
}

// Update replaces the mutable fields of an object. The actor must have
// access, the current status must permit editing, and version must match the
// stored record; a stale version fails with ErrVersionConflict instead of
// silently overwriting a concurrent edit.
func (s *ObjectService) Update(ctx context.Context, actor *models.User, id string, in *ObjectInput, version int64) (*models.Object, error) {
	o, err := s.objects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanMutate(actor, o); err != nil {
		return nil, err
	}
	applyInput(o, in)
	if err := s.objects.Update(ctx, o, version); err != nil {
		return nil, err
	}
	return s.objects.GetByID(ctx, id)
}

// UpdateStatus moves the object to target if the state machine permits the
// transition for this actor. Soft deletion is the transition to gelöscht.
func (s *ObjectService) UpdateStatus(ctx context.Context, actor *models.User, id string, target models.Status) error {
	o, err := s.objects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CanTransition(actor, o, target); err != nil {
		return err
	}
	return s.objects.UpdateStatus(ctx, id, target)
}

// AssignUsers replaces the set of users granted access to the object.
// Admin only.
func (s *ObjectService) AssignUsers(ctx context.Context, actor *models.User, id string, userIDs []string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.objects.GetByID(ctx, id); err != nil {
		return err
	}
	return s.objects.UpdateAssignees(ctx, id, userIDs)
}
