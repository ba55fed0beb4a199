package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/events"
	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

type notificationFixture struct {
	service       *NotificationService
	notifications *fakeNotificationStore
	users         *fakeUserStore
	g1ID          string
	workerID      string
	teamID        string
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	notifications := &fakeNotificationStore{}
	users := &fakeUserStore{}
	ctx := context.Background()

	teamID := "team-1"
	g1 := &domain.User{Email: "admin@example.com", FullName: "Admin G1", Role: domain.RoleG1, IsActive: true}
	require.NoError(t, users.Create(ctx, g1))
	worker := &domain.User{Email: "worker@example.com", FullName: "Electrical Worker", Role: domain.RoleTeam, TeamID: &teamID, IsActive: true}
	require.NoError(t, users.Create(ctx, worker))
	unit := &domain.User{Email: "unit@example.com", FullName: "Unit User", Role: domain.RoleUnit, IsActive: true}
	require.NoError(t, users.Create(ctx, unit))

	return &notificationFixture{
		service:       NewNotificationService(notifications, users, nil, zap.NewNop()),
		notifications: notifications,
		users:         users,
		g1ID:          g1.ID,
		workerID:      worker.ID,
		teamID:        teamID,
	}
}

func transitionEvent(transition domain.Transition, payload events.TicketTransitionPayload) events.Event {
	payload.Transition = transition
	return events.Event{
		ID:       "event-1",
		Type:     events.EventTicketTransition,
		TicketID: "ticket-1",
		Actor:    events.Actor{UserID: "unit-1", Name: "Unit User", Role: domain.RoleUnit},
		Payload:  payload,
	}
}

func TestPlanFanout(t *testing.T) {
	payload := events.TicketTransitionPayload{Title: "Broken AC"}

	cases := []struct {
		transition domain.Transition
		audiences  []audience
		messages   []string
	}{
		{
			domain.TransitionCreate,
			[]audience{audienceG1},
			[]string{"New ticket created by Unit User: Broken AC"},
		},
		{
			domain.TransitionAllocate,
			[]audience{audienceTeam, audienceCreator},
			[]string{
				"Ticket allocated to your team: Broken AC",
				"Your ticket 'Broken AC' has been allocated to a team.",
			},
		},
		{
			domain.TransitionResolve,
			[]audience{audienceG1, audienceCreator},
			[]string{
				"Ticket marked for review by Unit User: Broken AC",
				"Your ticket 'Broken AC' has been marked for review. Please verify.",
			},
		},
		{
			domain.TransitionClose,
			[]audience{audienceTeam},
			[]string{"Resolution approved for ticket: Broken AC"},
		},
		{
			domain.TransitionRejectToG1,
			[]audience{audienceG1, audienceOldTeam},
			[]string{
				"Ticket 'Broken AC' returned by unit and requires reassignment.",
				"Your resolution for ticket 'Broken AC' was rejected by the unit.",
			},
		},
		{
			domain.TransitionRejectToSameTeam,
			[]audience{audienceTeam},
			[]string{"Please retry your resolution for ticket: 'Broken AC'. Unit has returned it."},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.transition), func(t *testing.T) {
			payload.Transition = tc.transition
			planned := planFanout("Unit User", payload)
			require.Len(t, planned, len(tc.audiences))
			for i := range planned {
				assert.Equal(t, tc.audiences[i], planned[i].Audience)
				assert.Equal(t, tc.messages[i], planned[i].Message)
			}
		})
	}
}

func TestHandleTicketTransitionFanout(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	t.Run("create notifies every g1 user", func(t *testing.T) {
		event := transitionEvent(domain.TransitionCreate, events.TicketTransitionPayload{
			Title:       "Broken AC",
			CreatedByID: "unit-1",
		})
		require.NoError(t, f.service.handleTicketTransition(ctx, event))

		inbox := f.notifications.byRecipient(f.g1ID)
		require.Len(t, inbox, 1)
		assert.Equal(t, "New ticket created by Unit User: Broken AC", inbox[0].Message)
		require.NotNil(t, inbox[0].TicketID)
		assert.Equal(t, "ticket-1", *inbox[0].TicketID)
		assert.False(t, inbox[0].IsRead)
	})

	t.Run("allocate notifies team and creator", func(t *testing.T) {
		event := transitionEvent(domain.TransitionAllocate, events.TicketTransitionPayload{
			Title:          "Broken AC",
			CreatedByID:    "unit-1",
			AssignedTeamID: &f.teamID,
		})
		require.NoError(t, f.service.handleTicketTransition(ctx, event))

		assert.Len(t, f.notifications.byRecipient(f.workerID), 1)
		assert.Len(t, f.notifications.byRecipient("unit-1"), 1)
	})

	t.Run("reject to g1 notifies the unassigned team", func(t *testing.T) {
		before := len(f.notifications.byRecipient(f.workerID))
		event := transitionEvent(domain.TransitionRejectToG1, events.TicketTransitionPayload{
			Title:       "Broken AC",
			CreatedByID: "unit-1",
			OldTeamID:   &f.teamID,
		})
		require.NoError(t, f.service.handleTicketTransition(ctx, event))

		inbox := f.notifications.byRecipient(f.workerID)
		require.Len(t, inbox, before+1)
		assert.Equal(t, "Your resolution for ticket 'Broken AC' was rejected by the unit.", inbox[len(inbox)-1].Message)
	})

	t.Run("insert failure is swallowed", func(t *testing.T) {
		f.notifications.failWith = errors.New("connection refused")
		defer func() { f.notifications.failWith = nil }()

		event := transitionEvent(domain.TransitionCreate, events.TicketTransitionPayload{
			Title:       "Broken AC",
			CreatedByID: "unit-1",
		})
		assert.NoError(t, f.service.handleTicketTransition(ctx, event))
	})

	t.Run("unexpected payload ignored", func(t *testing.T) {
		event := events.Event{ID: "event-x", Type: events.EventTicketTransition, Payload: "garbage"}
		assert.NoError(t, f.service.handleTicketTransition(ctx, event))
	})
}

func TestNotificationInbox(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	event := transitionEvent(domain.TransitionCreate, events.TicketTransitionPayload{
		Title:       "Broken AC",
		CreatedByID: "unit-1",
	})
	require.NoError(t, f.service.handleTicketTransition(ctx, event))

	inbox, err := f.service.List(ctx, f.g1ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	count, err := f.service.UnreadCount(ctx, f.g1ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("mark read is recipient scoped", func(t *testing.T) {
		err := f.service.MarkRead(ctx, "someone-else", inbox[0].ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

		require.NoError(t, f.service.MarkRead(ctx, f.g1ID, inbox[0].ID))

		count, err := f.service.UnreadCount(ctx, f.g1ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("unknown notification", func(t *testing.T) {
		err := f.service.MarkRead(ctx, f.g1ID, "missing")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})
}
