package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/web/flash"
	"github.com/spec-kit/ticket-portal/internal/web/forms"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util"
)

// AuthHandler exposes the register, login, and logout pages.
type AuthHandler struct {
	auth *service.AuthService
	cfg  config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cfg: cfg}
}

// ShowRegister handles GET /register.
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{
		"Title": "Register",
		"Flash": flash.Pop(c),
	}, "layout")
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form forms.CredentialsForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid form submission")
	}

	if _, err := h.auth.Register(c.UserContext(), form.Username, form.Password); err != nil {
		if apperrors.IsCode(err, apperrors.CodeDuplicateUsername) || apperrors.IsCode(err, apperrors.CodeValidationFailed) {
			flash.Set(c, apperrors.ToDomainError(err).Message)
			return c.Redirect("/register", fiber.StatusSeeOther)
		}
		return err
	}

	flash.Set(c, "Account created. Please log in.")
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title": "Log in",
		"Flash": flash.Pop(c),
	}, "layout")
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form forms.CredentialsForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid form submission")
	}

	_, token, err := h.auth.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeInvalidCredentials) {
			flash.Set(c, apperrors.ToDomainError(err).Message)
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return err
	}

	h.setSessionCookie(c, token)
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// Logout handles GET /logout. It runs behind the auth middleware so there is
// always a session to destroy.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(h.cfg.CookieName)
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return c.Redirect(auth.LoginPath, fiber.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.SessionTTL()),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
