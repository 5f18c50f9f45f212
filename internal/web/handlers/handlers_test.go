package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/observability"
	"github.com/spec-kit/ticket-portal/internal/repository"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/web"
	"github.com/spec-kit/ticket-portal/internal/web/handlers"
)

const sessionCookie = "ticket_session"

func newTestApp(t *testing.T) (*fiber.App, *service.AuthService) {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{Name: "ticket-portal-test", Version: "test"},
		Auth: config.AuthConfig{
			BcryptCost:        4,
			SessionTTLMinutes: 60,
			CookieName:        sessionCookie,
		},
	}

	users := repository.NewMemoryUserRepository()
	tickets := repository.NewMemoryTicketRepository()
	sessions := auth.NewMemorySessionStore(time.Hour)

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo: users,
		Sessions: sessions,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
	})

	engine := html.New("../../../web/templates", ".html")
	// Immutable matches production: stored form values must not alias
	// fasthttp's reused request buffers.
	app := fiber.New(fiber.Config{Views: engine, Immutable: true})
	web.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	web.RegisterRoutes(app, web.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Admin:          handlers.NewAdminHandler(ticketService),
		AuthMiddleware: auth.NewMiddleware(sessions, users, cfg.Auth.CookieName),
	})
	return app, authService
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, session string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path, session string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return string(data)
}

func sessionFrom(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

func register(t *testing.T, app *fiber.App, username, password string) {
	t.Helper()
	resp := postForm(t, app, "/register", url.Values{
		"username": {username}, "password": {password},
	}, "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := postForm(t, app, "/login", url.Values{
		"username": {username}, "password": {password},
	}, "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	return sessionFrom(t, resp)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/dashboard", "/ticket/new", "/ticket/1", "/admin", "/logout"} {
		resp := get(t, app, path, "")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestRegisterDuplicateFlashesAndStays(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "alice", "pw1")

	resp := postForm(t, app, "/register", url.Values{
		"username": {"alice"}, "password": {"other"},
	}, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/register", resp.Header.Get("Location"))
}

func TestLoginFailureRedirectsWithSameResponseEitherWay(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "alice", "pw1")

	wrongPassword := postForm(t, app, "/login", url.Values{
		"username": {"alice"}, "password": {"bad"},
	}, "")
	unknownUser := postForm(t, app, "/login", url.Values{
		"username": {"ghost"}, "password": {"bad"},
	}, "")

	assert.Equal(t, wrongPassword.StatusCode, unknownUser.StatusCode)
	assert.Equal(t, wrongPassword.Header.Get("Location"), unknownUser.Header.Get("Location"))
	assert.Equal(t, "/login", unknownUser.Header.Get("Location"))
}

func TestTicketLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "alice", "pw1")
	session := login(t, app, "alice", "pw1")

	// Create.
	resp := postForm(t, app, "/ticket/new", url.Values{
		"title": {"Bug"}, "description": {"desc"},
	}, session)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// Dashboard shows the open ticket.
	resp = get(t, app, "/dashboard", session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Bug")
	assert.Contains(t, page, "Open")

	// Close it via edit.
	resp = postForm(t, app, "/ticket/1/edit", url.Values{
		"title": {"Bug"}, "description": {"desc"}, "status": {"Closed"},
	}, session)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))

	// View reflects the new status.
	resp = get(t, app, "/ticket/1", session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Closed")

	// Delete, then the dashboard is empty and the ticket is gone.
	resp = postForm(t, app, "/ticket/1/delete", nil, session)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = get(t, app, "/dashboard", session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "No tickets yet")

	resp = get(t, app, "/ticket/1", session)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStoredTicketSurvivesLaterRequests(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "alice", "pw1")
	session := login(t, app, "alice", "pw1")

	resp := postForm(t, app, "/ticket/new", url.Values{
		"title": {"Printer jam"}, "description": {"third floor"},
	}, session)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// Later requests reuse the server's request buffers. If the stored
	// ticket aliased them, its fields would now read as garbage.
	for i := 0; i < 3; i++ {
		resp = postForm(t, app, "/ticket/new", url.Values{
			"title": {strings.Repeat("x", 64)}, "description": {strings.Repeat("y", 128)},
		}, session)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	resp = get(t, app, "/ticket/1", session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Printer jam")
	assert.Contains(t, page, "third floor")
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp := get(t, app, "/no-such-page", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, body(t, resp), "Something went wrong")
}

func TestOtherUsersTicketsAreDenied(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "alice", "pw1")
	register(t, app, "bob", "pw2")

	bob := login(t, app, "bob", "pw2")
	resp := postForm(t, app, "/ticket/new", url.Values{
		"title": {"Bob's ticket"}, "description": {""},
	}, bob)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	alice := login(t, app, "alice", "pw1")

	// View, edit, and delete all redirect away without leaking content.
	resp = get(t, app, "/ticket/1", alice)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp = postForm(t, app, "/ticket/1/edit", url.Values{
		"title": {"hijack"}, "description": {""}, "status": {"Open"},
	}, alice)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp = postForm(t, app, "/ticket/1/delete", nil, alice)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	// Bob's ticket is intact.
	resp = get(t, app, "/ticket/1", bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Bob&#39;s ticket")
}

func TestAdminViewsAllButCannotMutate(t *testing.T) {
	app, authService := newTestApp(t)
	register(t, app, "alice", "pw1")
	alice := login(t, app, "alice", "pw1")

	resp := postForm(t, app, "/ticket/new", url.Values{
		"title": {"Alice's ticket"}, "description": {""},
	}, alice)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err := authService.EnsureAdmin(context.Background(), config.AdminConfig{Username: "root", Password: "secret"})
	require.NoError(t, err)
	admin := login(t, app, "root", "secret")

	// Admin listing shows every ticket with its owner.
	resp = get(t, app, "/admin", admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Alice&#39;s ticket")
	assert.Contains(t, page, "alice")

	// Admin can open the ticket but not edit or delete it.
	resp = get(t, app, "/ticket/1", admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postForm(t, app, "/ticket/1/edit", url.Values{
		"title": {"nope"}, "description": {""}, "status": {"Open"},
	}, admin)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp = postForm(t, app, "/ticket/1/delete", nil, admin)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestAdminRouteDeniedForOrdinaryUsers(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "alice", "pw1")
	alice := login(t, app, "alice", "pw1")

	resp := get(t, app, "/admin", alice)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestLogoutEndsSession(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "alice", "pw1")
	session := login(t, app, "alice", "pw1")

	resp := get(t, app, "/logout", session)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// The old token no longer works.
	resp = get(t, app, "/dashboard", session)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp := get(t, app, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, app, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
