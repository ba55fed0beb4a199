package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

// DirectoryService serves the read-mostly user and team endpoints.
type DirectoryService struct {
	users repository.UserRepository
	teams repository.TeamRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository, teams repository.TeamRepository) *DirectoryService {
	return &DirectoryService{users: users, teams: teams}
}

// ListUsers returns a page of users.
func (s *DirectoryService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser fetches a user by id.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListTeams returns a page of teams.
func (s *DirectoryService) ListTeams(ctx context.Context, limit, offset int) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// CreateTeam registers a new team. G1 and ADMIN only; names are unique.
func (s *DirectoryService) CreateTeam(ctx context.Context, actor domain.Actor, name, description string) (*domain.Team, error) {
	if actor.Role != domain.RoleG1 && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("not enough permissions")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	if _, err := s.teams.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("team already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	team := &domain.Team{Name: name, Description: strings.TrimSpace(description)}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}
