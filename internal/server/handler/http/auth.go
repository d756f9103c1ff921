package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tkoehler/objektverwaltung/internal/middleware"
	"github.com/tkoehler/objektverwaltung/internal/models"
	"github.com/tkoehler/objektverwaltung/internal/service"
)

// AuthService defines the authentication operations required by the HTTP
// handlers.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Signup(ctx context.Context, email, password, name string) (*service.LoginResult, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, actor *models.User, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, actor *models.User, name string) error
}

// AuthHandler handles login, signup, and session self-service endpoints.
type AuthHandler struct {
	AuthService AuthService
}

// LoginRequest is the JSON payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	result, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SignupRequest is the JSON payload for POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup handles POST /api/auth/signup. It only succeeds for accounts an
// admin has provisioned beforehand.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	result, err := h.AuthService.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout. Idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.AuthService.Logout(r.Context(), strings.TrimSpace(token)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me: it returns the identity the middleware
// resolved for this request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	auth := middleware.GetAuthContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":                auth.User,
		"needsPasswordChange": auth.NeedsPasswordChange,
	})
}

// ChangePasswordRequest is the JSON payload for POST /api/auth/password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	if err := h.AuthService.ChangePassword(r.Context(), auth.User, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateProfileRequest is the JSON payload for PUT /api/auth/profile.
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	auth := middleware.GetAuthContext(r.Context())
	if err := h.AuthService.UpdateProfile(r.Context(), auth.User, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
