package domain

import (
	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

// Transition names a guarded state change on a ticket.
type Transition string

const (
	TransitionCreate           Transition = "CREATE"
	TransitionAllocate         Transition = "ALLOCATE"
	TransitionResolve          Transition = "RESOLVE"
	TransitionClose            Transition = "CLOSE"
	TransitionRejectToG1       Transition = "REJECT_TO_G1"
	TransitionRejectToSameTeam Transition = "REJECT_TO_SAME_TEAM"
)

// Transitions lists every transition, in lifecycle order.
func Transitions() []Transition {
	return []Transition{
		TransitionCreate,
		TransitionAllocate,
		TransitionResolve,
		TransitionClose,
		TransitionRejectToG1,
		TransitionRejectToSameTeam,
	}
}

// transitionRoles is the closed allow-list of roles per transition.
var transitionRoles = map[Transition][]Role{
	TransitionCreate:           {RoleUnit, RoleAdmin},
	TransitionAllocate:         {RoleG1, RoleAdmin},
	TransitionResolve:          {RoleTeam, RoleAdmin},
	TransitionClose:            {RoleUnit, RoleAdmin},
	TransitionRejectToG1:       {RoleUnit, RoleAdmin},
	TransitionRejectToSameTeam: {RoleUnit, RoleAdmin},
}

// transitionSources maps each transition to the statuses it may start from.
// CREATE has no source; CLOSED is terminal and appears nowhere.
var transitionSources = map[Transition][]TicketStatus{
	TransitionAllocate:         {TicketStatusOpen, TicketStatusAllocated},
	TransitionResolve:          {TicketStatusAllocated},
	TransitionClose:            {TicketStatusResolved},
	TransitionRejectToG1:       {TicketStatusResolved},
	TransitionRejectToSameTeam: {TicketStatusResolved},
}

func transitionAllowedFrom(transition Transition, status TicketStatus) bool {
	for _, candidate := range transitionSources[transition] {
		if candidate == status {
			return true
		}
	}
	return false
}

// CanTransition is the pure authorization guard. It is derived only from
// (actor.Role, actor.ID, actor.TeamID, ticket.CreatedByID,
// ticket.AssignedTeamID) and never mutates state. Status legality is the
// aggregate's concern, not the guard's. The ticket is nil for CREATE.
//
// Role mismatch and ownership mismatch are both reported as Forbidden; the
// caller is not told which.
func CanTransition(actor Actor, ticket *Ticket, transition Transition) error {
	if !roleAllowed(actor.Role, transition) {
		return apperrors.NewForbidden("not enough permissions")
	}
	if actor.Role == RoleAdmin || transition == TransitionCreate {
		return nil
	}

	switch transition {
	case TransitionResolve:
		// TEAM members only act on tickets assigned to their own team.
		if actor.TeamID == nil || ticket.AssignedTeamID == nil || *actor.TeamID != *ticket.AssignedTeamID {
			return apperrors.NewForbidden("ticket not assigned to your team")
		}
	case TransitionClose, TransitionRejectToG1, TransitionRejectToSameTeam:
		// UNIT users only confirm or reject tickets they created.
		if ticket.CreatedByID != actor.ID {
			return apperrors.NewForbidden("not enough permissions")
		}
	}
	return nil
}

func roleAllowed(role Role, transition Transition) bool {
	for _, candidate := range transitionRoles[transition] {
		if candidate == role {
			return true
		}
	}
	return false
}
