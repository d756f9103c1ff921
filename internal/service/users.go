package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tkoehler/objektverwaltung/internal/apperrors"
	"github.com/tkoehler/objektverwaltung/internal/models"
)

// AdminUserRepository defines the user persistence operations required by the
// user administration service.
type AdminUserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// ResetPassword stores a temporary credential and deactivates the account.
	ResetPassword(ctx context.Context, id string, passwordHash []byte) error
	Delete(ctx context.Context, id string) error
}

// SessionRevoker revokes all sessions of a user. Used when an admin resets a
// password or deletes an account.
type SessionRevoker interface {
	DeleteByUser(ctx context.Context, userID string) error
}

// UserAdminService implements account provisioning and administration. Every
// operation requires an admin actor.
type UserAdminService struct {
	users      AdminUserRepository
	sessions   SessionRevoker
	bcryptCost int
}

// NewUserAdminService constructs a UserAdminService. cost <= 0 falls back to
// bcrypt.DefaultCost.
func NewUserAdminService(users AdminUserRepository, sessions SessionRevoker, cost int) *UserAdminService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserAdminService{users: users, sessions: sessions, bcryptCost: cost}
}

func requireAdmin(actor *models.User) error {
	if actor.Role != models.RoleAdmin {
		return apperrors.ErrRoleRequired
	}
	return nil
}

// CreateUser provisions a placeholder account: inactive, with a temporary
// password the person uses once to complete signup.
func (s *UserAdminService) CreateUser(ctx context.Context, actor *models.User, email, name, tempPassword string, role models.Role) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           name,
		PasswordHash:   hash,
		Role:           role,
		Active:         false,
		IsTempPassword: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all accounts.
func (s *UserAdminService) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// ResetPassword returns an account to the provisioned state with a new
// temporary password and revokes every session of that user. This is the
// deliberate counterpart to self-service ChangePassword, which keeps other
// sessions alive.
func (s *UserAdminService) ResetPassword(ctx context.Context, actor *models.User, userID, tempPassword string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.ResetPassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.sessions.DeleteByUser(ctx, userID)
}

// DeleteUser removes an account for good and revokes its sessions. Objects
// created by the user keep their creator reference; lookups tolerate the
// dangling ID.
func (s *UserAdminService) DeleteUser(ctx context.Context, actor *models.User, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}
