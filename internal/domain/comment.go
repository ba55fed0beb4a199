package domain

import "time"

// Comment is a free-form note on a ticket. Comments are an append log,
// independent of the lifecycle state machine.
type Comment struct {
	ID        string
	Content   string
	TicketID  string
	UserID    string
	UserName  string
	CreatedAt time.Time
}
