package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkoehler/objektverwaltung/internal/middleware"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// UserAdminService defines the account administration operations required by
// the HTTP handlers.
type UserAdminService interface {
	CreateUser(ctx context.Context, actor *models.User, email, name, tempPassword string, role models.Role) (*models.User, error)
	ListUsers(ctx context.Context, actor *models.User) ([]models.User, error)
	ResetPassword(ctx context.Context, actor *models.User, userID, tempPassword string) error
	DeleteUser(ctx context.Context, actor *models.User, userID string) error
}

// UsersHandler handles the admin-only account endpoints.
type UsersHandler struct {
	Users UserAdminService
}

// CreateUserRequest is the JSON payload for POST /api/users.
type CreateUserRequest struct {
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	TempPassword string      `json:"tempPassword"`
	Role         models.Role `json:"role"`
}

// Create handles POST /api/users: it provisions a placeholder account the
// person activates via signup.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.TempPassword == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	user, err := h.Users.CreateUser(r.Context(), auth.User, req.Email, req.Name, req.TempPassword, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	users, err := h.Users.ListUsers(r.Context(), auth.User)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// ResetPasswordRequest is the JSON payload for POST /api/users/{id}/reset.
type ResetPasswordRequest struct {
	TempPassword string `json:"tempPassword"`
}

// ResetPassword handles POST /api/users/{id}/reset: it sets a fresh
// temporary password and revokes every session of that user.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TempPassword == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	if err := h.Users.ResetPassword(r.Context(), auth.User, chi.URLParam(r, "id"), req.TempPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	if err := h.Users.DeleteUser(r.Context(), auth.User, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
