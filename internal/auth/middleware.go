package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/repository"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util"
)

const userKey = "auth_user"

// LoginPath is where unauthenticated requests to protected routes land.
const LoginPath = "/login"

// Middleware resolves the session cookie to a user on each request.
type Middleware struct {
	sessions   SessionStore
	users      repository.UserRepository
	cookieName string
}

// NewMiddleware constructs middleware.
func NewMiddleware(sessions SessionStore, users repository.UserRepository, cookieName string) *Middleware {
	return &Middleware{sessions: sessions, users: users, cookieName: cookieName}
}

// Handle enforces authentication for protected routes, redirecting browsers
// without a live session to the login page.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token == "" {
		return c.Redirect(LoginPath, fiber.StatusSeeOther)
	}

	userID, err := m.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			m.clearCookie(c)
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		return apperrors.NewInternalError(err)
	}

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Session outlived the account; drop both.
			_ = m.sessions.Destroy(c.UserContext(), token)
			m.clearCookie(c)
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(userKey, user)
	return c.Next()
}

// RequireAdmin guards admin-only routes. It runs after Handle.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("login required")
		}
		if !user.Role.IsAdmin() {
			return apperrors.NewForbidden("administrators only")
		}
		return c.Next()
	}
}

// UserFromContext retrieves the authenticated user loaded by Handle.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(userKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

func (m *Middleware) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
