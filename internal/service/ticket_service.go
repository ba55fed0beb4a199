package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/events"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// TicketService coordinates the ticket lifecycle. Every transition runs in
// its own transaction: guard check, mutation and history append commit as
// one unit, and the version predicate serializes concurrent writers on the
// same ticket. Notification fan-out happens after commit, via the
// dispatcher, and cannot fail a transition.
type TicketService struct {
	db         TxRunner
	tickets    repository.TicketRepository
	teams      repository.TeamRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	DB          TxRunner
	TicketRepo  repository.TicketRepository
	TeamRepo    repository.TeamRepository
	CommentRepo repository.CommentRepository
	Dispatcher  events.Dispatcher
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// AllocateInput describes the G1 allocation payload.
type AllocateInput struct {
	TeamID   string
	Priority *domain.TicketPriority
}

// ListFilter narrows a role-scoped listing.
type ListFilter struct {
	Status *domain.TicketStatus
	Limit  int
	Offset int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		db:         deps.DB,
		tickets:    deps.TicketRepo,
		teams:      deps.TeamRepo,
		comments:   deps.CommentRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket for a UNIT (or ADMIN) actor.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(actor, input.Title, input.Description, input.Priority)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishTransition(ctx, actor, ticket, domain.TransitionCreate, nil)
	return ticket, nil
}

// Get fetches a single ticket, enforcing role visibility.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewForbidden("not enough permissions")
	}
	return ticket, nil
}

// List returns tickets visible to the actor. UNIT sees its own, TEAM sees
// its team's, G1 and ADMIN see everything. An optional status filter narrows
// further; ordering is stable insertion order.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, filter ListFilter) ([]domain.Ticket, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(*filter.Status)})
	}
	repoFilter := repository.TicketFilter{
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	switch actor.Role {
	case domain.RoleUnit:
		createdBy := actor.ID
		repoFilter.CreatedByID = &createdBy
	case domain.RoleTeam:
		if actor.TeamID == nil {
			return []domain.Ticket{}, nil
		}
		repoFilter.AssignedTeamID = actor.TeamID
	case domain.RoleG1, domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("not enough permissions")
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Allocate assigns a ticket to a team (G1/ADMIN).
func (s *TicketService) Allocate(ctx context.Context, actor domain.Actor, ticketID string, input AllocateInput) (*domain.Ticket, error) {
	team, err := s.teams.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": input.TeamID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, _, err := s.runTransition(ctx, ticketID, func(t *domain.Ticket) error {
		return t.Allocate(actor, team, input.Priority)
	})
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, actor, ticket, domain.TransitionAllocate, nil)
	return ticket, nil
}

// Resolve marks an allocated ticket for unit review (TEAM/ADMIN).
func (s *TicketService) Resolve(ctx context.Context, actor domain.Actor, ticketID, notes string) (*domain.Ticket, error) {
	ticket, _, err := s.runTransition(ctx, ticketID, func(t *domain.Ticket) error {
		return t.Resolve(actor, notes)
	})
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, actor, ticket, domain.TransitionResolve, nil)
	return ticket, nil
}

// Close approves a resolution and closes the ticket (creator UNIT/ADMIN).
func (s *TicketService) Close(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, _, err := s.runTransition(ctx, ticketID, func(t *domain.Ticket) error {
		return t.Close(actor)
	})
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, actor, ticket, domain.TransitionClose, nil)
	return ticket, nil
}

// RejectToG1 sends a resolved ticket back to dispatch (creator UNIT/ADMIN).
func (s *TicketService) RejectToG1(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, oldTeamID, err := s.runTransition(ctx, ticketID, func(t *domain.Ticket) error {
		return t.RejectToG1(actor)
	})
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, actor, ticket, domain.TransitionRejectToG1, oldTeamID)
	return ticket, nil
}

// RejectToSameTeam returns a resolved ticket to its current team for a
// retry (creator UNIT/ADMIN).
func (s *TicketService) RejectToSameTeam(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, _, err := s.runTransition(ctx, ticketID, func(t *domain.Ticket) error {
		return t.RejectToSameTeam(actor, s.teamName(ctx, t.AssignedTeamID))
	})
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, actor, ticket, domain.TransitionRejectToSameTeam, nil)
	return ticket, nil
}

// ListComments returns a ticket's comments in display order.
func (s *TicketService) ListComments(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.Comment, error) {
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// AddComment appends a comment to a visible ticket.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, ticketID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content cannot be empty", nil)
	}
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	comment := &domain.Comment{
		Content:  content,
		TicketID: ticketID,
		UserID:   actor.ID,
		UserName: actor.Name,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// runTransition loads the ticket fresh, applies the mutation and persists it
// within one transaction. It returns the team that was assigned before the
// mutation, for fan-out on the rejection path.
func (s *TicketService) runTransition(ctx context.Context, ticketID string, mutate func(t *domain.Ticket) error) (*domain.Ticket, *string, error) {
	var ticket *domain.Ticket
	var oldTeamID *string

	err := s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		repo := s.tickets.WithTx(tx)
		t, err := s.loadTicket(ctx, repo, ticketID)
		if err != nil {
			return err
		}
		oldTeamID = t.AssignedTeamID
		if err := mutate(t); err != nil {
			return err
		}
		if err := repo.Update(ctx, t); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return apperrors.NewInvalidState("ticket was modified concurrently", map[string]any{"ticket_id": ticketID})
			}
			return apperrors.MapError(err)
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ticket, oldTeamID, nil
}

func (s *TicketService) loadTicket(ctx context.Context, repo repository.TicketRepository, ticketID string) (*domain.Ticket, error) {
	ticket, err := repo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) teamName(ctx context.Context, teamID *string) string {
	if teamID == nil {
		return ""
	}
	team, err := s.teams.GetByID(ctx, *teamID)
	if err != nil {
		return fmt.Sprintf("Team#%s", *teamID)
	}
	return team.Name
}

func (s *TicketService) publishTransition(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, transition domain.Transition, oldTeamID *string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketTransition,
		TicketID:  ticket.ID,
		Actor:     events.Actor{UserID: actor.ID, Name: actor.Name, Role: actor.Role},
		Timestamp: time.Now(),
		Payload: events.TicketTransitionPayload{
			Transition:     transition,
			Title:          ticket.Title,
			Status:         ticket.Status,
			Priority:       ticket.Priority,
			CreatedByID:    ticket.CreatedByID,
			AssignedTeamID: ticket.AssignedTeamID,
			OldTeamID:      oldTeamID,
		},
	})
}

func canView(actor domain.Actor, ticket *domain.Ticket) bool {
	switch actor.Role {
	case domain.RoleG1, domain.RoleAdmin:
		return true
	case domain.RoleUnit:
		return ticket.CreatedByID == actor.ID
	case domain.RoleTeam:
		return actor.TeamID != nil && ticket.AssignedTeamID != nil && *actor.TeamID == *ticket.AssignedTeamID
	}
	return false
}
