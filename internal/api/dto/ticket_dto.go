package dto

import (
	"time"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// AllocateTicketRequest payload for the G1 dispatch action.
type AllocateTicketRequest struct {
	TeamID   string                 `json:"team_id"`
	Priority *domain.TicketPriority `json:"priority,omitempty"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	ResolutionNotes string `json:"resolution_notes"`
}

// TicketResponse provides full ticket info including its history.
type TicketResponse struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CreatedByID     string                `json:"created_by_id"`
	AssignedTeamID  *string               `json:"assigned_team_id"`
	ResolvedByID    *string               `json:"resolved_by_id"`
	ResolutionNotes *string               `json:"resolution_notes"`
	History         []domain.HistoryEvent `json:"history"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              ticket.ID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		CreatedByID:     ticket.CreatedByID,
		AssignedTeamID:  ticket.AssignedTeamID,
		ResolvedByID:    ticket.ResolvedByID,
		ResolutionNotes: ticket.ResolutionNotes,
		History:         ticket.History,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse represents a ticket comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	IsMe      bool      `json:"is_me"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a domain comment for the given viewer.
func NewCommentResponse(comment *domain.Comment, viewerID string) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		UserID:    comment.UserID,
		UserName:  comment.UserName,
		IsMe:      comment.UserID == viewerID,
		CreatedAt: comment.CreatedAt,
	}
}

// NotificationResponse represents a notification entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	TicketID  *string   `json:"ticket_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(notification *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Message:   notification.Message,
		IsRead:    notification.IsRead,
		TicketID:  notification.TicketID,
		CreatedAt: notification.CreatedAt,
	}
}
