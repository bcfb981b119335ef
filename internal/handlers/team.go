package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/oguzhan/teamboard-api/internal/middleware"
	"github.com/oguzhan/teamboard-api/internal/models"
	"github.com/oguzhan/teamboard-api/internal/services"
	"github.com/oguzhan/teamboard-api/internal/validation"
	"github.com/oguzhan/teamboard-api/pkg/dto"
)

type TeamHandler struct {
	teamService  TeamServiceInterface
	userService  UserServiceInterface
	emailService EmailServiceInterface
	hub          HubInterface
}

func NewTeamHandler(
	teamService TeamServiceInterface,
	userService UserServiceInterface,
	emailService EmailServiceInterface,
	hub HubInterface,
) *TeamHandler {
	return &TeamHandler{
		teamService:  teamService,
		userService:  userService,
		emailService: emailService,
		hub:          hub,
	}
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := validation.ValidateStruct(req); err != nil {
		c.BadRequest(err.Error())
		return
	}

	ctx := context.Background()

	admin, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	team, err := h.teamService.Create(ctx, req.Name, admin)
	if err != nil {
		c.InternalServerError("failed to create team")
		return
	}

	_ = c.JSON(201, dto.TeamResponse{
		ID:      team.ID,
		Name:    team.Name,
		Code:    team.Code,
		AdminID: team.AdminID,
		MyRole:  string(models.RoleAdmin),
	})
}

func (h *TeamHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teams, roles, err := h.teamService.GetUserTeams(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get teams")
		return
	}

	response := make([]dto.TeamResponse, len(teams))
	for i, team := range teams {
		response[i] = dto.TeamResponse{
			ID:      team.ID,
			Name:    team.Name,
			Code:    team.Code,
			AdminID: team.AdminID,
			MyRole:  string(roles[i]),
		}
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	ctx := context.Background()

	role, err := h.teamService.MemberRole(ctx, teamID, userID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	team, err := h.teamService.GetByID(ctx, teamID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	_ = c.JSON(200, dto.TeamResponse{
		ID:      team.ID,
		Name:    team.Name,
		Code:    team.Code,
		AdminID: team.AdminID,
		MyRole:  string(role),
	})
}

func (h *TeamHandler) Join(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.JoinTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	team, err := h.teamService.JoinByCode(ctx, req.Code, user)
	if err != nil {
		if errors.Is(err, services.ErrTeamNotFound) {
			c.NotFound("no team with this code")
			return
		}
		if errors.Is(err, services.ErrAlreadyMember) {
			c.BadRequest("already a member of this team")
			return
		}
		c.InternalServerError("failed to join team")
		return
	}

	h.hub.BroadcastMemberJoined(team.ID, user.ID, user.Email)

	_ = c.JSON(200, dto.TeamResponse{
		ID:      team.ID,
		Name:    team.Name,
		Code:    team.Code,
		AdminID: team.AdminID,
		MyRole:  string(models.RoleMember),
	})
}

func (h *TeamHandler) Leave(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	if err := h.teamService.Leave(context.Background(), teamID, userID); err != nil {
		if errors.Is(err, services.ErrAdminCannotLeave) {
			c.BadRequest("the admin cannot leave the team, delete it instead")
			return
		}
		if errors.Is(err, services.ErrMemberNotFound) {
			c.NotFound("team not found or not a member")
			return
		}
		c.InternalServerError("failed to leave team")
		return
	}

	h.hub.BroadcastMemberLeft(teamID, userID)

	_ = c.JSON(200, map[string]string{"message": "left team"})
}

func (h *TeamHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	ctx := context.Background()

	role, err := h.teamService.MemberRole(ctx, teamID, userID)
	if err != nil || role != models.RoleAdmin {
		c.Forbidden("only the admin can delete the team")
		return
	}

	if err := h.teamService.Delete(ctx, teamID); err != nil {
		c.InternalServerError("failed to delete team")
		return
	}

	h.hub.BroadcastTeamDeleted(teamID)

	_ = c.JSON(200, map[string]string{"message": "team deleted"})
}

func (h *TeamHandler) GetMembers(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	ctx := context.Background()

	isMember, err := h.teamService.IsMember(ctx, teamID, userID)
	if err != nil || !isMember {
		c.NotFound("team not found")
		return
	}

	members, err := h.teamService.GetMembers(ctx, teamID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	_ = c.JSON(200, toMemberResponses(members))
}

// SendInvite emails the team's join code. Any member can share the code,
// so any member can send it.
func (h *TeamHandler) SendInvite(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.InviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := validation.ValidateStruct(req); err != nil {
		c.BadRequest(err.Error())
		return
	}

	if !h.emailService.IsConfigured() {
		c.InternalServerError("email is not configured")
		return
	}

	ctx := context.Background()

	isMember, err := h.teamService.IsMember(ctx, teamID, userID)
	if err != nil || !isMember {
		c.NotFound("team not found")
		return
	}

	team, err := h.teamService.GetByID(ctx, teamID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	inviterEmail := middleware.GetUserEmail(c)
	if err := h.emailService.SendJoinCode(req.Email, team.Name, inviterEmail, team.Code); err != nil {
		c.InternalServerError("failed to send invite")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invite sent"})
}

func toMemberResponses(members []models.TeamMember) []dto.TeamMemberResponse {
	response := make([]dto.TeamMemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.TeamMemberResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			Role:      string(m.Role),
			UserEmail: m.UserEmail,
			JoinedAt:  m.CreatedAt.Format(time.RFC3339),
		}
	}
	return response
}
