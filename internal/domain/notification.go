package domain

import "time"

// Notification is produced as a side effect of a ticket transition and is
// only ever mutated by its recipient marking it read.
type Notification struct {
	ID          string
	Message     string
	IsRead      bool
	RecipientID string
	TicketID    *string
	CreatedAt   time.Time
}
