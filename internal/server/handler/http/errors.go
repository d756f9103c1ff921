// Package http provides the HTTP handlers and routing for the
// Objektverwaltung API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
)

// errorResponse is the JSON error body. Kind is a stable machine-readable
// identifier so UIs can localize messages without matching strings.
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy to HTTP statuses and kinds.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var status int

	var editErr *apperrors.EditForbiddenError
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, resp.Kind = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, apperrors.ErrInactiveAccount):
		status, resp.Kind = http.StatusForbidden, "inactive_account"
	case errors.Is(err, apperrors.ErrInvalidSession):
		status, resp.Kind = http.StatusUnauthorized, "invalid_session"
	case errors.Is(err, apperrors.ErrWrongPassword):
		status, resp.Kind = http.StatusBadRequest, "wrong_password"
	case errors.Is(err, apperrors.ErrRegistrationNotAllowed):
		status, resp.Kind = http.StatusForbidden, "registration_not_allowed"
	case errors.Is(err, apperrors.ErrNotFound):
		status, resp.Kind = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrRoleRequired):
		status, resp.Kind = http.StatusForbidden, "role_required"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, resp.Kind = http.StatusForbidden, "unauthorized"
	case errors.As(err, &editErr):
		status, resp.Kind = http.StatusConflict, "edit_forbidden"
		resp.Reason = string(editErr.Reason)
	case errors.Is(err, apperrors.ErrEditForbidden):
		status, resp.Kind = http.StatusConflict, "edit_forbidden"
	case errors.Is(err, apperrors.ErrVersionConflict):
		status, resp.Kind = http.StatusConflict, "version_conflict"
	case errors.Is(err, apperrors.ErrInvalidTransition):
		status, resp.Kind = http.StatusConflict, "invalid_transition"
	default:
		status, resp.Kind = http.StatusInternalServerError, "internal"
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}
