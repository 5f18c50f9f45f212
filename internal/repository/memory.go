package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

// In-memory implementations back the portal when POSTGRES_DSN is absent and
// serve as the store for tests. They honor the same pgx.ErrNoRows contract
// as the Postgres implementations.

type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.User
	byName map[string]int64
}

// NewMemoryUserRepository returns an in-memory UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		nextID: 1,
		byID:   make(map[int64]domain.User),
		byName: make(map[string]int64),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[user.Username]; exists {
		return ErrUniqueViolation
	}
	user.ID = r.nextID
	r.nextID++
	r.byID[user.ID] = *user
	r.byName[user.Username] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := r.byID[id]
	return &user, nil
}

type memoryTicketRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Ticket
}

// NewMemoryTicketRepository returns an in-memory TicketRepository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		nextID: 1,
		byID:   make(map[int64]domain.Ticket),
	}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	ticket.CreatedAt = time.Now().UTC()
	r.byID[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Title = ticket.Title
	existing.Description = ticket.Description
	existing.Status = ticket.Status
	r.byID[ticket.ID] = existing
	return nil
}

func (r *memoryTicketRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memoryTicketRepository) ListByOwner(_ context.Context, ownerID int64) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range r.byID {
		if ticket.OwnerID == ownerID {
			result = append(result, ticket)
		}
	}
	sortTickets(result)
	return result, nil
}

func (r *memoryTicketRepository) ListAll(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(r.byID))
	for _, ticket := range r.byID {
		result = append(result, ticket)
	}
	sortTickets(result)
	return result, nil
}

func sortTickets(tickets []domain.Ticket) {
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
}
