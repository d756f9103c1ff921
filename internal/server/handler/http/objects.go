package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkoehler/objektverwaltung/internal/middleware"
	"github.com/tkoehler/objektverwaltung/internal/models"
	"github.com/tkoehler/objektverwaltung/internal/service"
)

// ObjectService defines the object lifecycle operations required by the HTTP
// handlers.
type ObjectService interface {
	Create(ctx context.Context, actor *models.User, in *service.ObjectInput) (*models.Object, error)
	Get(ctx context.Context, actor *models.User, id string) (*models.Object, error)
	List(ctx context.Context, actor *models.User, q service.ListQuery) ([]models.Object, error)
	Update(ctx context.Context, actor *models.User, id string, in *service.ObjectInput, version int64) (*models.Object, error)
	UpdateStatus(ctx context.Context, actor *models.User, id string, target models.Status) error
	AssignUsers(ctx context.Context, actor *models.User, id string, userIDs []string) error
	Snapshot(ctx context.Context, actor *models.User, id string) (*service.ObjectSnapshot, error)

	CreateUploadURL(ctx context.Context, actor *models.User, objectID string) (*service.UploadTarget, error)
	AttachImage(ctx context.Context, actor *models.User, objectID string, section models.Section, sectionIndex *int, storageKey, filename string) (*models.ObjectImage, error)
	ListImages(ctx context.Context, actor *models.User, objectID string) ([]models.ObjectImage, error)
	DeleteImage(ctx context.Context, actor *models.User, imageID string) error
}

// ObjectsHandler handles the object and image endpoints. PDF is optional;
// when unset, export responds with the JSON snapshot instead of a rendered
// document.
type ObjectsHandler struct {
	Objects ObjectService
	PDF     service.PDFRenderer
}

// Create handles POST /api/objects.
func (h *ObjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ObjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	obj, err := h.Objects.Create(r.Context(), auth.User, &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, obj)
}

// Get handles GET /api/objects/{id}.
func (h *ObjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	obj, err := h.Objects.Get(r.Context(), auth.User, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// List handles GET /api/objects with optional search, status, and createdBy
// query parameters. The status and createdBy filters only take effect for
// admins.
func (h *ObjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	q := service.ListQuery{
		Search:    r.URL.Query().Get("search"),
		Status:    models.Status(r.URL.Query().Get("status")),
		CreatedBy: r.URL.Query().Get("createdBy"),
	}
	objects, err := h.Objects.List(r.Context(), auth.User, q)
	if err != nil {
		writeError(w, err)
		return
	}
	if objects == nil {
		objects = []models.Object{}
	}
	writeJSON(w, http.StatusOK, objects)
}

// UpdateObjectRequest is the JSON payload for PUT /api/objects/{id}: a full
// replacement of the mutable fields plus the version the client loaded.
type UpdateObjectRequest struct {
	service.ObjectInput
	Version int64 `json:"version"`
}

// Update handles PUT /api/objects/{id}.
func (h *ObjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	obj, err := h.Objects.Update(r.Context(), auth.User, chi.URLParam(r, "id"), &req.ObjectInput, req.Version)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// UpdateStatusRequest is the JSON payload for PUT /api/objects/{id}/status.
type UpdateStatusRequest struct {
	Status models.Status `json:"status"`
}

// UpdateStatus handles PUT /api/objects/{id}/status.
func (h *ObjectsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	if err := h.Objects.UpdateStatus(r.Context(), auth.User, chi.URLParam(r, "id"), req.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignRequest is the JSON payload for PUT /api/objects/{id}/assignees.
type AssignRequest struct {
	UserIDs []string `json:"userIds"`
}

// Assign handles PUT /api/objects/{id}/assignees.
func (h *ObjectsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	if err := h.Objects.AssignUsers(r.Context(), auth.User, chi.URLParam(r, "id"), req.UserIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/objects/{id}/export. With a renderer configured it
// returns the PDF document; without one it returns the snapshot as JSON.
func (h *ObjectsHandler) Export(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	snap, err := h.Objects.Snapshot(r.Context(), auth.User, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if h.PDF == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	doc, err := h.PDF.Render(r.Context(), snap)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(doc)
}
