package dto

import (
	"time"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
	TeamID   *string     `json:"team_id"`
	IsActive bool        `json:"is_active"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		TeamID:   user.TeamID,
		IsActive: user.IsActive,
	}
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TeamResponse is the public view of a team.
type TeamResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewTeamResponse maps a domain team.
func NewTeamResponse(team *domain.Team) TeamResponse {
	return TeamResponse{ID: team.ID, Name: team.Name, Description: team.Description}
}
