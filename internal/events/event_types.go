package events

import (
	"time"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

// EventTicketTransition is emitted after a ticket transition commits.
const EventTicketTransition EventType = "ticket_transition"

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketTransitionPayload carries the transition outcome that notification
// fan-out derives recipients from. OldTeamID is the team that was unassigned
// by REJECT_TO_G1, nil otherwise.
type TicketTransitionPayload struct {
	Transition     domain.Transition     `json:"transition"`
	Title          string                `json:"title"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	CreatedByID    string                `json:"created_by_id"`
	AssignedTeamID *string               `json:"assigned_team_id,omitempty"`
	OldTeamID      *string               `json:"old_team_id,omitempty"`
}
