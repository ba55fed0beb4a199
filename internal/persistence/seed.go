package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-tracker/internal/auth"
	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
)

type seedUser struct {
	email    string
	password string
	fullName string
	role     domain.Role
	team     bool // attach to the seeded team
}

var seedUsers = []seedUser{
	{email: "admin@example.com", password: "admin123", fullName: "Admin G1", role: domain.RoleG1},
	{email: "unit@example.com", password: "unit123", fullName: "Unit User", role: domain.RoleUnit},
	{email: "worker@example.com", password: "worker123", fullName: "Electrical Worker", role: domain.RoleTeam, team: true},
}

// Seed inserts the baseline team and accounts when they are missing. Safe to
// run on every startup.
func Seed(ctx context.Context, pool *pgxpool.Pool, bcryptCost int, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping seed")
		return nil
	}

	teams := repository.NewTeamRepository(pool)
	users := repository.NewUserRepository(pool)

	team, err := teams.GetByName(ctx, "Electrical")
	if errors.Is(err, pgx.ErrNoRows) {
		team = &domain.Team{Name: "Electrical", Description: "Electrical maintenance"}
		if err := teams.Create(ctx, team); err != nil {
			return err
		}
		logger.Info("seeded team", zap.String("name", team.Name))
	} else if err != nil {
		return err
	}

	for _, seed := range seedUsers {
		if _, err := users.GetByEmail(ctx, seed.email); err == nil {
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		hash, err := auth.HashPassword(seed.password, bcryptCost)
		if err != nil {
			return err
		}
		user := &domain.User{
			Email:        seed.email,
			FullName:     seed.fullName,
			PasswordHash: hash,
			Role:         seed.role,
			IsActive:     true,
		}
		if seed.team {
			user.TeamID = &team.ID
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		logger.Info("seeded user", zap.String("email", seed.email), zap.String("role", string(seed.role)))
	}
	return nil
}
