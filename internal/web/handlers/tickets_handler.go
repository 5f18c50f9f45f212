package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/web/flash"
	"github.com/spec-kit/ticket-portal/internal/web/forms"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util"
)

// TicketsHandler serves the dashboard and per-ticket pages.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Dashboard handles GET /dashboard.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	tickets, err := h.service.ListOwn(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.Render("dashboard", fiber.Map{
		"Title":   "Dashboard",
		"User":    user,
		"Flash":   flash.Pop(c),
		"Tickets": tickets,
	}, "layout")
}

// ShowCreate handles GET /ticket/new.
func (h *TicketsHandler) ShowCreate(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	return c.Render("ticket_new", fiber.Map{
		"Title": "New ticket",
		"User":  user,
		"Flash": flash.Pop(c),
	}, "layout")
}

// Create handles POST /ticket/new.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	var form forms.TicketForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid form submission")
	}

	if _, err := h.service.Create(c.UserContext(), user, form.Title, form.Description); err != nil {
		if apperrors.IsCode(err, apperrors.CodeValidationFailed) {
			flash.Set(c, apperrors.ToDomainError(err).Message)
			return c.Redirect("/ticket/new", fiber.StatusSeeOther)
		}
		return err
	}
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// View handles GET /ticket/:id.
func (h *TicketsHandler) View(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.Render("ticket_view", fiber.Map{
		"Title":  ticket.Title,
		"User":   user,
		"Flash":  flash.Pop(c),
		"Ticket": ticket,
	}, "layout")
}

// ShowEdit handles GET /ticket/:id/edit.
func (h *TicketsHandler) ShowEdit(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetForEdit(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.Render("ticket_edit", fiber.Map{
		"Title":    "Edit ticket",
		"User":     user,
		"Flash":    flash.Pop(c),
		"Ticket":   ticket,
		"Statuses": domain.Statuses(),
	}, "layout")
}

// Edit handles POST /ticket/:id/edit.
func (h *TicketsHandler) Edit(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var form forms.TicketForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid form submission")
	}

	input := service.TicketUpdateInput{
		Title:       form.Title,
		Description: form.Description,
		Status:      domain.TicketStatus(form.Status),
	}
	if _, err := h.service.Update(c.UserContext(), user, id, input); err != nil {
		if apperrors.IsCode(err, apperrors.CodeValidationFailed) {
			flash.Set(c, apperrors.ToDomainError(err).Message)
			return c.Redirect("/ticket/"+c.Params("id")+"/edit", fiber.StatusSeeOther)
		}
		return err
	}

	flash.Set(c, "Ticket updated.")
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// Delete handles POST /ticket/:id/delete.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("login required")
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), user, id); err != nil {
		return err
	}

	flash.Set(c, "Ticket deleted.")
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("ticket")
	}
	return id, nil
}
