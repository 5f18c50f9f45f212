package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// Valid reports whether the status is one of the known values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Statuses lists every status an owner may set through the edit form.
func Statuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}
}

// Ticket is the aggregate for support requests. OwnerID is assigned at
// creation and never reassigned.
type Ticket struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
}
