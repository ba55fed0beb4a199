package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/events"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

// audience names a recipient group of a transition fan-out.
type audience int

const (
	audienceG1 audience = iota
	audienceCreator
	audienceTeam    // members of the currently assigned team
	audienceOldTeam // members of the team unassigned by REJECT_TO_G1
)

// plannedNotification is one (recipient group, message) pair derived from a
// transition outcome, before group resolution.
type plannedNotification struct {
	Audience audience
	Message  string
}

const unreadCountTTL = time.Minute

// NotificationService persists fan-out notifications and serves the
// notification API. Fan-out runs as an event handler after the transition
// commit; any failure here is logged and swallowed, never propagated back to
// the transition.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	cache         *redis.Client
	logger        *zap.Logger
}

// NewNotificationService creates the service. cache may be nil.
func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, cache *redis.Client, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		cache:         cache,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to transition events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketTransition, n.handleTicketTransition)
}

// planFanout derives the (recipient group, message) pairs for a transition.
// Pure: the same payload always produces the same plan.
func planFanout(actorName string, p events.TicketTransitionPayload) []plannedNotification {
	switch p.Transition {
	case domain.TransitionCreate:
		return []plannedNotification{
			{audienceG1, fmt.Sprintf("New ticket created by %s: %s", actorName, p.Title)},
		}
	case domain.TransitionAllocate:
		return []plannedNotification{
			{audienceTeam, fmt.Sprintf("Ticket allocated to your team: %s", p.Title)},
			{audienceCreator, fmt.Sprintf("Your ticket '%s' has been allocated to a team.", p.Title)},
		}
	case domain.TransitionResolve:
		return []plannedNotification{
			{audienceG1, fmt.Sprintf("Ticket marked for review by %s: %s", actorName, p.Title)},
			{audienceCreator, fmt.Sprintf("Your ticket '%s' has been marked for review. Please verify.", p.Title)},
		}
	case domain.TransitionClose:
		return []plannedNotification{
			{audienceTeam, fmt.Sprintf("Resolution approved for ticket: %s", p.Title)},
		}
	case domain.TransitionRejectToG1:
		return []plannedNotification{
			{audienceG1, fmt.Sprintf("Ticket '%s' returned by unit and requires reassignment.", p.Title)},
			{audienceOldTeam, fmt.Sprintf("Your resolution for ticket '%s' was rejected by the unit.", p.Title)},
		}
	case domain.TransitionRejectToSameTeam:
		return []plannedNotification{
			{audienceTeam, fmt.Sprintf("Please retry your resolution for ticket: '%s'. Unit has returned it.", p.Title)},
		}
	}
	return nil
}

func (n *NotificationService) handleTicketTransition(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketTransitionPayload)
	if !ok {
		n.logger.Warn("unexpected transition payload", zap.String("event_id", event.ID))
		return nil
	}

	for _, planned := range planFanout(event.Actor.Name, payload) {
		recipients, err := n.resolveAudience(ctx, planned.Audience, payload)
		if err != nil {
			n.logger.Warn("notification fan-out: resolve recipients failed",
				zap.String("ticket_id", event.TicketID), zap.Error(err))
			continue
		}
		for _, recipientID := range recipients {
			ticketID := event.TicketID
			notification := &domain.Notification{
				Message:     planned.Message,
				RecipientID: recipientID,
				TicketID:    &ticketID,
			}
			if err := n.notifications.Create(ctx, notification); err != nil {
				n.logger.Warn("notification fan-out: insert failed",
					zap.String("ticket_id", event.TicketID),
					zap.String("recipient_id", recipientID),
					zap.Error(err))
				continue
			}
			n.invalidateUnreadCount(ctx, recipientID)
		}
	}
	return nil
}

func (n *NotificationService) resolveAudience(ctx context.Context, aud audience, p events.TicketTransitionPayload) ([]string, error) {
	switch aud {
	case audienceG1:
		return n.userIDs(n.users.ListByRole(ctx, domain.RoleG1))
	case audienceCreator:
		return []string{p.CreatedByID}, nil
	case audienceTeam:
		if p.AssignedTeamID == nil {
			return nil, nil
		}
		return n.userIDs(n.users.ListByTeam(ctx, *p.AssignedTeamID))
	case audienceOldTeam:
		if p.OldTeamID == nil {
			return nil, nil
		}
		return n.userIDs(n.users.ListByTeam(ctx, *p.OldTeamID))
	}
	return nil, nil
}

func (n *NotificationService) userIDs(users []domain.User, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids, nil
}

// List returns the recipient's most recent notifications, newest first.
func (n *NotificationService) List(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	notifications, err := n.notifications.ListByRecipient(ctx, recipientID, 50)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// MarkRead marks one of the recipient's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if err := n.notifications.MarkRead(ctx, notificationID, recipientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	n.invalidateUnreadCount(ctx, recipientID)
	return nil
}

// UnreadCount returns the recipient's unread total, served from the redis
// counter cache when warm.
func (n *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	key := unreadCountKey(recipientID)
	if n.cache != nil {
		if cached, err := n.cache.Get(ctx, key).Result(); err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := n.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if n.cache != nil {
		if err := n.cache.Set(ctx, key, strconv.FormatInt(count, 10), unreadCountTTL).Err(); err != nil {
			n.logger.Warn("unread count cache set failed", zap.Error(err))
		}
	}
	return count, nil
}

func (n *NotificationService) invalidateUnreadCount(ctx context.Context, recipientID string) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Del(ctx, unreadCountKey(recipientID)).Err(); err != nil {
		n.logger.Warn("unread count cache invalidation failed", zap.Error(err))
	}
}

func unreadCountKey(recipientID string) string {
	return "notifications:unread:" + recipientID
}
