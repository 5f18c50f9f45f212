package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/domain"
	"github.com/spec-kit/ticket-portal/internal/repository"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util"
)

// TicketService coordinates ticket workflows and owns every authorization
// decision about individual tickets. Handlers never touch the repository
// directly.
type TicketService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
}

// TicketWithOwner pairs a ticket with its owner's username for the admin
// listing.
type TicketWithOwner struct {
	domain.Ticket
	OwnerName string
}

// TicketUpdateInput carries the three mutable fields. Owner and creation
// time are not updatable by any path.
type TicketUpdateInput struct {
	Title       string
	Description string
	Status      domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{tickets: deps.TicketRepo, users: deps.UserRepo}
}

// Create inserts a new ticket owned by user with status Open.
func (s *TicketService) Create(ctx context.Context, user *domain.User, title, description string) (*domain.Ticket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required")
	}

	ticket := &domain.Ticket{
		OwnerID:     user.ID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

// Get fetches a ticket for viewing. Unknown ids surface as NOT_FOUND,
// observably distinct from a permission denial; a denial carries no ticket
// content.
func (s *TicketService) Get(ctx context.Context, user *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanView(user, ticket) {
		return nil, apperrors.NewForbidden("you do not have permission to view this ticket")
	}
	return ticket, nil
}

// GetForEdit fetches a ticket under the edit predicate, for edit forms and
// delete confirmation. Admins are denied here for tickets they do not own.
func (s *TicketService) GetForEdit(ctx context.Context, user *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanEdit(user, ticket) {
		return nil, apperrors.NewForbidden("you do not have permission to edit this ticket")
	}
	return ticket, nil
}

// ListOwn returns the tickets owned by user in insertion order.
func (s *TicketService) ListOwn(ctx context.Context, user *domain.User) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// Update overwrites the mutable fields of an owned ticket.
func (s *TicketService) Update(ctx context.Context, user *domain.User, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.GetForEdit(ctx, user, id)
	if err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, apperrors.NewValidationError("title required")
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket status")
	}

	ticket.Title = input.Title
	ticket.Description = strings.TrimSpace(input.Description)
	ticket.Status = input.Status
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

// Delete permanently removes an owned ticket.
func (s *TicketService) Delete(ctx context.Context, user *domain.User, id int64) error {
	if _, err := s.GetForEdit(ctx, user, id); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket")
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ListAll returns every ticket in the store with owner usernames resolved.
// The admin guard sits on the route; this second check keeps the predicate
// close to the data.
func (s *TicketService) ListAll(ctx context.Context, user *domain.User) ([]TicketWithOwner, error) {
	if !user.Role.IsAdmin() {
		return nil, apperrors.NewForbidden("administrators only")
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	names := make(map[int64]string)
	result := make([]TicketWithOwner, 0, len(tickets))
	for _, ticket := range tickets {
		name, ok := names[ticket.OwnerID]
		if !ok {
			owner, err := s.users.GetByID(ctx, ticket.OwnerID)
			if err != nil {
				return nil, apperrors.NewInternalError(err)
			}
			name = owner.Username
			names[ticket.OwnerID] = name
		}
		result = append(result, TicketWithOwner{Ticket: ticket, OwnerName: name})
	}
	return result, nil
}

func (s *TicketService) fetch(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}
