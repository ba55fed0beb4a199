package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "OPEN"      // created by unit, awaiting dispatch
	TicketStatusAllocated TicketStatus = "ALLOCATED" // assigned to a team by G1
	TicketStatusResolved  TicketStatus = "RESOLVED"  // resolved by team, awaiting unit review
	TicketStatusClosed    TicketStatus = "CLOSED"    // confirmed by unit; terminal
)

// Valid reports whether the status is one of the lifecycle states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusAllocated, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether the priority is one of the known levels.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for maintenance requests. All mutation goes through
// the transition methods below; each one is guard check, field change and
// history append as a single unit, so a rejected transition leaves the ticket
// untouched.
type Ticket struct {
	ID              string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	CreatedByID     string
	AssignedTeamID  *string
	ResolvedByID    *string
	ResolutionNotes *string
	History         History
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTicket creates a ticket in OPEN with a CREATED history entry.
func NewTicket(actor Actor, title, description string, priority TicketPriority) (*Ticket, error) {
	if err := CanTransition(actor, nil, TransitionCreate); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if priority == "" {
		priority = TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(priority)})
	}

	ticket := &Ticket{
		Title:       title,
		Description: description,
		Status:      TicketStatusOpen,
		Priority:    priority,
		CreatedByID: actor.ID,
		Version:     1,
	}
	ticket.record(HistoryEvent{
		Event: HistoryCreated,
		Actor: actor.Name,
		Role:  actor.Role,
	})
	return ticket, nil
}

// Allocate assigns the ticket to a team, optionally overriding priority.
// Legal from OPEN and from ALLOCATED (G1 may re-route before work starts).
func (t *Ticket) Allocate(actor Actor, team *Team, priority *TicketPriority) error {
	if priority != nil && !priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(*priority)})
	}
	if err := t.guard(actor, TransitionAllocate); err != nil {
		return err
	}
	t.AssignedTeamID = &team.ID
	if priority != nil {
		t.Priority = *priority
	}
	t.Status = TicketStatusAllocated
	t.record(HistoryEvent{
		Event:    HistoryAllocated,
		Actor:    actor.Name,
		Role:     actor.Role,
		TeamID:   &team.ID,
		TeamName: &team.Name,
	})
	return nil
}

// Resolve marks the ticket for unit review with resolution notes.
func (t *Ticket) Resolve(actor Actor, notes string) error {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return apperrors.NewValidationError("resolution_notes required", nil)
	}
	if err := t.guard(actor, TransitionResolve); err != nil {
		return err
	}
	t.ResolutionNotes = &notes
	resolvedBy := actor.ID
	t.ResolvedByID = &resolvedBy
	t.Status = TicketStatusResolved
	t.record(HistoryEvent{
		Event: HistoryMarkedForReview,
		Actor: actor.Name,
		Role:  actor.Role,
		Notes: &notes,
	})
	return nil
}

// Close approves the resolution. CLOSED is terminal.
func (t *Ticket) Close(actor Actor) error {
	if err := t.guard(actor, TransitionClose); err != nil {
		return err
	}
	t.Status = TicketStatusClosed
	t.record(HistoryEvent{
		Event: HistoryApprovedAndClosed,
		Actor: actor.Name,
		Role:  actor.Role,
	})
	return nil
}

// RejectToG1 sends a resolved ticket back to dispatch, clearing the team
// assignment and the resolution fields.
func (t *Ticket) RejectToG1(actor Actor) error {
	if err := t.guard(actor, TransitionRejectToG1); err != nil {
		return err
	}
	notes := "Unit rejected resolution; sent back to G1 for reassignment"
	t.Status = TicketStatusOpen
	t.AssignedTeamID = nil
	t.ResolvedByID = nil
	t.ResolutionNotes = nil
	t.record(HistoryEvent{
		Event: HistoryReallocatedToG1,
		Actor: actor.Name,
		Role:  actor.Role,
		Notes: &notes,
	})
	return nil
}

// RejectToSameTeam sends a resolved ticket back to the currently assigned
// team for another attempt. The assignment is kept, the resolution cleared.
func (t *Ticket) RejectToSameTeam(actor Actor, teamName string) error {
	if err := t.guard(actor, TransitionRejectToSameTeam); err != nil {
		return err
	}
	if t.AssignedTeamID == nil {
		return apperrors.NewInvalidState("no team currently assigned to reallocate to", nil)
	}
	notes := "Unit rejected resolution; reassigned to same team to retry"
	t.Status = TicketStatusAllocated
	t.ResolvedByID = nil
	t.ResolutionNotes = nil
	t.record(HistoryEvent{
		Event:    HistoryReallocatedToSameTeam,
		Actor:    actor.Name,
		Role:     actor.Role,
		TeamID:   t.AssignedTeamID,
		TeamName: &teamName,
		Notes:    &notes,
	})
	return nil
}

func (t *Ticket) guard(actor Actor, transition Transition) error {
	if err := CanTransition(actor, t, transition); err != nil {
		return err
	}
	if !transitionAllowedFrom(transition, t.Status) {
		return apperrors.NewInvalidState("transition not allowed from current status", map[string]any{
			"transition": string(transition),
			"status":     string(t.Status),
		})
	}
	return nil
}

func (t *Ticket) record(event HistoryEvent) {
	event.Timestamp = time.Now().UTC()
	t.History = t.History.Append(event)
}
