package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// UserRepository defines the user persistence operations required by the
// authentication service.
type UserRepository interface {
	// GetByEmail returns the user with the given login address, or
	// apperrors.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID returns the user with the given ID, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Activate turns a provisioned placeholder into an active account with a
	// permanent password.
	Activate(ctx context.Context, id, name string, passwordHash []byte) error
	// UpdatePassword stores a new permanent password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	// UpdateName changes the display name.
	UpdateName(ctx context.Context, id, name string) error
}

// SessionRepository defines the session persistence operations required by
// the authentication service.
type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	// GetByToken returns the session for the token, or apperrors.ErrNotFound.
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	// Delete removes a session; deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// DefaultSessionTTL is the fixed session lifetime. Sessions are never renewed.
const DefaultSessionTTL = 7 * 24 * time.Hour

// AuthContext is the resolved identity for one request. The middleware
// resolves it once per request and hands it to every downstream operation.
type AuthContext struct {
	User                *models.User
	NeedsPasswordChange bool
}

// LoginResult is returned by Login and Signup.
type LoginResult struct {
	Token               string       `json:"token"`
	User                *models.User `json:"user"`
	NeedsPasswordChange bool         `json:"needsPasswordChange"`
}

// AuthService implements login, signup, and session handling.
type AuthService struct {
	users      UserRepository
	sessions   SessionRepository
	sessionTTL time.Duration
	bcryptCost int
}

// NewAuthService constructs an AuthService. ttl <= 0 falls back to
// DefaultSessionTTL, cost <= 0 to bcrypt.DefaultCost.
func NewAuthService(users UserRepository, sessions SessionRepository, ttl time.Duration, cost int) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, sessions: sessions, sessionTTL: ttl, bcryptCost: cost}
}

// newToken returns a 256-bit random bearer token, base64url encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *AuthService) issueSession(ctx context.Context, userID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

// Login verifies the credentials and issues a new session. Existing sessions
// for the user stay valid; concurrent sessions are permitted.
//
// Inactive accounts fail with ErrInactiveAccount regardless of credential
// correctness; unknown emails and wrong passwords with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.ErrInactiveAccount
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user, NeedsPasswordChange: user.IsTempPassword}, nil
}

// Signup activates an admin-provisioned placeholder account. It requires an
// existing user with the given email that is inactive and still carries a
// temporary password; anything else fails with ErrRegistrationNotAllowed.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrRegistrationNotAllowed
	}
	if err != nil {
		return nil, err
	}
	if user.Active || !user.IsTempPassword {
		return nil, apperrors.ErrRegistrationNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Activate(ctx, user.ID, name, hash); err != nil {
		return nil, err
	}
	user.Active = true
	user.IsTempPassword = false
	user.Name = name
	user.PasswordHash = hash

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user, NeedsPasswordChange: false}, nil
}

// ValidateSession resolves a bearer token to an identity. An unknown,
// expired, or orphaned token yields (nil, nil): being unauthenticated is an
// expected steady state, not a fault.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*AuthContext, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !session.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// The user was deleted after the session was issued.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &AuthContext{User: user, NeedsPasswordChange: user.IsTempPassword}, nil
}

// Logout revokes the session. Idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ChangePassword replaces the actor's own password after verifying the
// current one. Other sessions of the user stay valid; only an admin reset
// revokes them.
func (s *AuthService) ChangePassword(ctx context.Context, actor *models.User, oldPassword, newPassword string) error {
	if bcrypt.CompareHashAndPassword(actor.PasswordHash, []byte(oldPassword)) != nil {
		return apperrors.ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, actor.ID, hash)
}

// UpdateProfile changes the actor's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *models.User, name string) error {
	return s.users.UpdateName(ctx, actor.ID, name)
}
