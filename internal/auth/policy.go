package auth

import "github.com/spec-kit/ticket-portal/internal/domain"

// CanView reports whether user may read the ticket: the owner always can,
// admins can view any ticket.
func CanView(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	return ticket.OwnerID == user.ID || user.Role.IsAdmin()
}

// CanEdit reports whether user may mutate or delete the ticket. Only the
// owner can; admins get read access through CanView but no write access to
// tickets they do not own.
func CanEdit(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	return ticket.OwnerID == user.ID
}
