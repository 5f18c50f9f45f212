package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/repository"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util"
)

// AuthService coordinates registration, login, and session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	sessions   auth.SessionStore
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Sessions auth.SessionStore
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account with the ordinary user role. The username
// is the login key; duplicates are rejected.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewDuplicateUsername(username)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, apperrors.NewDuplicateUsername(username)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Login verifies credentials and establishes a session. An unknown username
// and a wrong password fail identically so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewInvalidCredentials()
		}
		return nil, "", apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewInvalidCredentials()
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// CurrentUser resolves a session token back to its user, or nil when the
// session is unknown or expired.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Logout invalidates the session server-side.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// EnsureAdmin seeds the configured administrator account when absent.
// Registration never grants the admin role, so without this there is no
// admin login at all. If the username is already taken, the existing
// account is returned unchanged, whatever its role: silently escalating
// an account someone else registered would be worse than having no
// admin, so callers must inspect the returned role.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (*domain.User, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, nil
	}

	if user, err := s.users.GetByUsername(ctx, cfg.Username); err == nil {
		return user, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin := &domain.User{
		Username:     cfg.Username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return admin, nil
}
