package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

func ptr[T any](v T) *T { return &v }

func unitActor(id string) Actor {
	return Actor{ID: id, Name: "Unit User", Role: RoleUnit}
}

func teamActor(id, teamID string) Actor {
	return Actor{ID: id, Name: "Team Worker", Role: RoleTeam, TeamID: &teamID}
}

func g1Actor(id string) Actor {
	return Actor{ID: id, Name: "G1 Dispatcher", Role: RoleG1}
}

func adminActor(id string) Actor {
	return Actor{ID: id, Name: "Admin", Role: RoleAdmin}
}

func resolvedTicket(createdBy, teamID string) *Ticket {
	return &Ticket{
		ID:             "t-1",
		Status:         TicketStatusResolved,
		CreatedByID:    createdBy,
		AssignedTeamID: &teamID,
	}
}

func TestCanTransitionRoleMatrix(t *testing.T) {
	allowed := map[Transition]map[Role]bool{
		TransitionCreate:           {RoleUnit: true, RoleAdmin: true},
		TransitionAllocate:         {RoleG1: true, RoleAdmin: true},
		TransitionResolve:          {RoleTeam: true, RoleAdmin: true},
		TransitionClose:            {RoleUnit: true, RoleAdmin: true},
		TransitionRejectToG1:       {RoleUnit: true, RoleAdmin: true},
		TransitionRejectToSameTeam: {RoleUnit: true, RoleAdmin: true},
	}

	for _, transition := range Transitions() {
		for _, role := range Roles() {
			// actor owns the ticket and belongs to its team, so only the
			// role can cause a denial here
			actor := Actor{ID: "u-1", Name: "anyone", Role: role, TeamID: ptr("team-1")}
			ticket := resolvedTicket("u-1", "team-1")

			err := CanTransition(actor, ticket, transition)
			if allowed[transition][role] {
				assert.NoError(t, err, "%s should be allowed for %s", transition, role)
			} else {
				require.Error(t, err, "%s should be denied for %s", transition, role)
				assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
			}
		}
	}
}

func TestCanTransitionResolveRequiresOwnTeam(t *testing.T) {
	ticket := &Ticket{ID: "t-1", Status: TicketStatusAllocated, CreatedByID: "u-1", AssignedTeamID: ptr("team-1")}

	t.Run("other team denied", func(t *testing.T) {
		err := CanTransition(teamActor("w-1", "team-2"), ticket, TransitionResolve)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("no team denied", func(t *testing.T) {
		actor := Actor{ID: "w-1", Name: "stray", Role: RoleTeam}
		err := CanTransition(actor, ticket, TransitionResolve)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("unassigned ticket denied", func(t *testing.T) {
		open := &Ticket{ID: "t-2", Status: TicketStatusOpen, CreatedByID: "u-1"}
		err := CanTransition(teamActor("w-1", "team-1"), open, TransitionResolve)
		require.Error(t, err)
	})

	t.Run("own team allowed", func(t *testing.T) {
		assert.NoError(t, CanTransition(teamActor("w-1", "team-1"), ticket, TransitionResolve))
	})

	t.Run("admin bypasses team check", func(t *testing.T) {
		assert.NoError(t, CanTransition(adminActor("a-1"), ticket, TransitionResolve))
	})
}

func TestCanTransitionReviewRequiresCreator(t *testing.T) {
	ticket := resolvedTicket("u-1", "team-1")

	for _, transition := range []Transition{TransitionClose, TransitionRejectToG1, TransitionRejectToSameTeam} {
		t.Run(string(transition), func(t *testing.T) {
			err := CanTransition(unitActor("u-2"), ticket, transition)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

			assert.NoError(t, CanTransition(unitActor("u-1"), ticket, transition))
			assert.NoError(t, CanTransition(adminActor("a-1"), ticket, transition))
		})
	}
}

func TestTransitionAllowedFrom(t *testing.T) {
	cases := []struct {
		transition Transition
		from       TicketStatus
		ok         bool
	}{
		{TransitionAllocate, TicketStatusOpen, true},
		{TransitionAllocate, TicketStatusAllocated, true},
		{TransitionAllocate, TicketStatusResolved, false},
		{TransitionAllocate, TicketStatusClosed, false},
		{TransitionResolve, TicketStatusAllocated, true},
		{TransitionResolve, TicketStatusOpen, false},
		{TransitionResolve, TicketStatusResolved, false},
		{TransitionClose, TicketStatusResolved, true},
		{TransitionClose, TicketStatusClosed, false},
		{TransitionRejectToG1, TicketStatusResolved, true},
		{TransitionRejectToG1, TicketStatusOpen, false},
		{TransitionRejectToSameTeam, TicketStatusResolved, true},
		{TransitionRejectToSameTeam, TicketStatusAllocated, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, transitionAllowedFrom(tc.transition, tc.from),
			"%s from %s", tc.transition, tc.from)
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, transition := range Transitions() {
		if transition == TransitionCreate {
			continue
		}
		assert.False(t, transitionAllowedFrom(transition, TicketStatusClosed), "%s must not leave CLOSED", transition)
	}
}
