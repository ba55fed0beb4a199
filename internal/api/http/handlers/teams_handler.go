package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-tracker/internal/api/dto"
	"github.com/spec-kit/maintenance-tracker/internal/service"
	apperrors "github.com/spec-kit/maintenance-tracker/pkg/util"
)

// TeamsHandler exposes the team directory.
type TeamsHandler struct {
	service *service.DirectoryService
}

func NewTeamsHandler(directoryService *service.DirectoryService) *TeamsHandler {
	return &TeamsHandler{service: directoryService}
}

// ListTeams GET /teams.
func (h *TeamsHandler) ListTeams(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	teams, err := h.service.ListTeams(c.UserContext(), c.QueryInt("limit", 100), c.QueryInt("skip", 0))
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, dto.NewTeamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTeam POST /teams.
func (h *TeamsHandler) CreateTeam(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	team, err := h.service.CreateTeam(c.UserContext(), actor, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTeamResponse(team)})
}
