package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkoehler/objektverwaltung/internal/middleware"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// CreateUploadURL handles POST /api/objects/{id}/images/url: step one of the
// two-step upload, handing out a presigned PUT target.
func (h *ObjectsHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	target, err := h.Objects.CreateUploadURL(r.Context(), auth.User, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// AttachImageRequest is the JSON payload for POST /api/objects/{id}/images:
// step two of the upload, registering the metadata after the client pushed
// the bytes.
type AttachImageRequest struct {
	Section      models.Section `json:"section"`
	SectionIndex *int           `json:"sectionIndex"`
	StorageKey   string         `json:"storageKey"`
	Filename     string         `json:"filename"`
}

// AttachImage handles POST /api/objects/{id}/images.
func (h *ObjectsHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	var req AttachImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StorageKey == "" || !req.Section.Valid() {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	img, err := h.Objects.AttachImage(r.Context(), auth.User, chi.URLParam(r, "id"),
		req.Section, req.SectionIndex, req.StorageKey, req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// ListImages handles GET /api/objects/{id}/images.
func (h *ObjectsHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	images, err := h.Objects.ListImages(r.Context(), auth.User, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if images == nil {
		images = []models.ObjectImage{}
	}
	writeJSON(w, http.StatusOK, images)
}

// DeleteImage handles DELETE /api/images/{id}. The stored blob is removed
// along with the record.
func (h *ObjectsHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	if err := h.Objects.DeleteImage(r.Context(), auth.User, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
