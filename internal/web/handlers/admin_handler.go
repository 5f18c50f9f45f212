package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/web/flash"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util"
)

// AdminHandler serves the admin-only listing of every ticket.
type AdminHandler struct {
	service *service.TicketService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(ticketService *service.TicketService) *AdminHandler {
	return &AdminHandler{service: ticketService}
}

// Dashboard handles GET /admin. The RequireAdmin guard runs before this.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	tickets, err := h.service.ListAll(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.Render("admin", fiber.Map{
		"Title":   "All tickets",
		"User":    user,
		"Flash":   flash.Pop(c),
		"Tickets": tickets,
	}, "layout")
}
