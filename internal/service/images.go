package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tkoehler/objektverwaltung/internal/models"
)

// ImageRepository defines the image persistence operations required by the
// object service.
type ImageRepository interface {
	Create(ctx context.Context, img *models.ObjectImage) error
	// GetByID returns the image record, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.ObjectImage, error)
	ListByObject(ctx context.Context, objectID string) ([]models.ObjectImage, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore is the external binary storage. Uploads happen directly between
// the client and the store through a presigned URL; the service only hands
// out targets and registers metadata afterwards.
type BlobStore interface {
	// CreateUploadURL returns a new storage key and a presigned PUT URL.
	CreateUploadURL(ctx context.Context) (key, url string, err error)
	// AccessURL returns a presigned GET URL for the stored blob.
	AccessURL(ctx context.Context, key string) (string, error)
	// Delete removes the blob.
	Delete(ctx context.Context, key string) error
}

// UploadTarget is the destination for one direct client upload.
type UploadTarget struct {
	StorageKey string `json:"storageKey"`
	URL        string `json:"url"`
}

// CreateUploadURL hands out a presigned upload target for an object the actor
// may currently edit. The upload itself is a second, uncontrolled step: if
// the client never registers the metadata, the blob is orphaned (no
// garbage collection).
func (s *ObjectService) CreateUploadURL(ctx context.Context, actor *models.User, objectID string) (*UploadTarget, error) {
	o, err := s.objects.GetByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := CanMutate(actor, o); err != nil {
		return nil, err
	}
	key, url, err := s.blobs.CreateUploadURL(ctx)
	if err != nil {
		return nil, err
	}
	return &UploadTarget{StorageKey: key, URL: url}, nil
}

// AttachImage registers an uploaded blob as an image of one nested-collection
// entry. Subject to the same edit gate as field mutation. Only keys, rooms,
// and meters carry images; people entries never do.
func (s *ObjectService) AttachImage(ctx context.Context, actor *models.User, objectID string, section models.Section, sectionIndex *int, storageKey, filename string) (*models.ObjectImage, error) {
	o, err := s.objects.GetByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := CanMutate(actor, o); err != nil {
		return nil, err
	}
	if !section.Valid() {
		return nil, fmt.Errorf("unknown section %q", section)
	}
	img := &models.ObjectImage{
		ID:           uuid.NewString(),
		ObjectID:     objectID,
		Section:      section,
		SectionIndex: sectionIndex,
		StorageKey:   storageKey,
		Filename:     filename,
		CreatedAt:    time.Now(),
	}
	if err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// ListImages returns the image records of an object the actor can access.
func (s *ObjectService) ListImages(ctx context.Context, actor *models.User, objectID string) ([]models.ObjectImage, error) {
	if _, err := s.Get(ctx, actor, objectID); err != nil {
		return nil, err
	}
	return s.images.ListByObject(ctx, objectID)
}

// DeleteImage removes an image record and its blob. Subject to the edit gate
// of the owning object.
func (s *ObjectService) DeleteImage(ctx context.Context, actor *models.User, imageID string) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	o, err := s.objects.GetByID(ctx, img.ObjectID)
	if err != nil {
		return err
	}
	if err := CanMutate(actor, o); err != nil {
		return err
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return err
	}
	return s.blobs.Delete(ctx, img.StorageKey)
}
