package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/middleware"
	"github.com/tkoehler/objektverwaltung/internal/models"
	"github.com/tkoehler/objektverwaltung/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	loginResult    *service.LoginResult
	loginErr       error
	signupResult   *service.LoginResult
	signupErr      error
	logoutErr      error
	changeErr      error
	profileErr     error
	loggedOutToken string
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuthService) Signup(ctx context.Context, email, password, name string) (*service.LoginResult, error) {
	return f.signupResult, f.signupErr
}

func (f *fakeAuthService) Logout(ctx context.Context, token string) error {
	f.loggedOutToken = token
	return f.logoutErr
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, actor *models.User, oldPassword, newPassword string) error {
	return f.changeErr
}

func (f *fakeAuthService) UpdateProfile(ctx context.Context, actor *models.User, name string) error {
	return f.profileErr
}

func TestAuthHandler_Login(t *testing.T) {
	okResult := &service.LoginResult{
		Token: "tok",
		User:  &models.User{ID: "u1", Email: "a@b.de", Role: models.RoleUser},
	}

	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "empty password",
			body:           `{"email":"a@b.de","password":""}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "wrong credentials",
			body:           `{"email":"a@b.de","password":"nope"}`,
			service:        &fakeAuthService{loginErr: apperrors.ErrInvalidCredentials},
			expectedCode:   http.StatusUnauthorized,
			expectedSubstr: "invalid credentials",
		},
		{
			name:           "inactive account",
			body:           `{"email":"a@b.de","password":"pw"}`,
			service:        &fakeAuthService{loginErr: apperrors.ErrInactiveAccount},
			expectedCode:   http.StatusForbidden,
			expectedSubstr: "account is inactive",
		},
		{
			name:           "successful login",
			body:           `{"email":"a@b.de","password":"pw"}`,
			service:        &fakeAuthService{loginResult: okResult},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"token":"tok"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Login(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeAuthService
		expectedCode int
	}{
		{
			name:         "missing fields",
			body:         `{"email":"a@b.de"}`,
			service:      &fakeAuthService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "not provisioned",
			body:         `{"email":"a@b.de","password":"pw","name":"Alice"}`,
			service:      &fakeAuthService{signupErr: apperrors.ErrRegistrationNotAllowed},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "successful signup",
			body: `{"email":"a@b.de","password":"pw","name":"Alice"}`,
			service: &fakeAuthService{signupResult: &service.LoginResult{
				Token: "tok",
				User:  &models.User{ID: "u1", Email: "a@b.de"},
			}},
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/auth/signup", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Signup(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &fakeAuthService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer tok123")

	h := &AuthHandler{AuthService: svc}
	h.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if svc.loggedOutToken != "tok123" {
		t.Errorf("logged out token = %q; want %q", svc.loggedOutToken, "tok123")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	auth := &service.AuthContext{
		User:                &models.User{ID: "u1", Email: "a@b.de", Role: models.RoleAdmin},
		NeedsPasswordChange: true,
	}
	req = req.WithContext(middleware.WithAuthContext(req.Context(), auth))

	h := &AuthHandler{AuthService: &fakeAuthService{}}
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var payload struct {
		User                *models.User `json:"user"`
		NeedsPasswordChange bool         `json:"needsPasswordChange"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if payload.User == nil || payload.User.ID != "u1" {
		t.Errorf("unexpected user payload: %+v", payload.User)
	}
	if !payload.NeedsPasswordChange {
		t.Error("expected needsPasswordChange=true")
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeAuthService
		expectedCode int
	}{
		{
			name:         "empty new password",
			body:         `{"oldPassword":"old","newPassword":""}`,
			service:      &fakeAuthService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "wrong old password",
			body:         `{"oldPassword":"bad","newPassword":"new"}`,
			service:      &fakeAuthService{changeErr: apperrors.ErrWrongPassword},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "success",
			body:         `{"oldPassword":"old","newPassword":"new"}`,
			service:      &fakeAuthService{},
			expectedCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/auth/password", bytes.NewBufferString(tt.body))
			auth := &service.AuthContext{User: &models.User{ID: "u1"}}
			req = req.WithContext(middleware.WithAuthContext(req.Context(), auth))

			h := &AuthHandler{AuthService: tt.service}
			h.ChangePassword(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}
