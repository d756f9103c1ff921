package service

import (
	"context"

	"github.com/tkoehler/objektverwaltung/internal/models"
)

// ImageRef is an image record with its resolved, time-limited access URL.
type ImageRef struct {
	models.ObjectImage
	URL string `json:"url"`
}

// ObjectSnapshot is the flattened view of an object handed to a document
// renderer: all fields and nested records, plus resolved image URLs.
type ObjectSnapshot struct {
	models.Object
	Images       []ImageRef `json:"images"`
	SignatureURL string     `json:"signatureUrl,omitempty"`
}

// PDFRenderer turns a snapshot into a downloadable document. Rendering
// itself is an external concern; the service only assembles the snapshot.
type PDFRenderer interface {
	Render(ctx context.Context, snap *ObjectSnapshot) ([]byte, error)
}

// Snapshot assembles the export view of an object: the record itself, every
// image with a presigned access URL, and the signature URL if one was
// captured. Read access rules apply as for Get.
func (s *ObjectService) Snapshot(ctx context.Context, actor *models.User, id string) (*ObjectSnapshot, error) {
	o, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	images, err := s.images.ListByObject(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := &ObjectSnapshot{Object: *o, Images: make([]ImageRef, 0, len(images))}
	for _, img := range images {
		url, err := s.blobs.AccessURL(ctx, img.StorageKey)
		if err != nil {
			return nil, err
		}
		snap.Images = append(snap.Images, ImageRef{ObjectImage: img, URL: url})
	}
	if o.SignatureKey != "" {
		url, err := s.blobs.AccessURL(ctx, o.SignatureKey)
		if err != nil {
			return nil, err
		}
		snap.SignatureURL = url
	}
	return snap, nil
}
