package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oguzhan/teamboard-api/internal/middleware"
	"github.com/oguzhan/teamboard-api/internal/models"
	"github.com/oguzhan/teamboard-api/internal/services"
	"github.com/oguzhan/teamboard-api/pkg/dto"
	"github.com/oguzhan/teamboard-api/tests/testutil"
)

type teamTestDeps struct {
	teamService  *testutil.MockTeamService
	userService  *testutil.MockUserService
	emailService *testutil.MockEmailService
	hub          *testutil.MockHub
	jwtSvc       *services.JWTService
	app          http.Handler
}

func newTeamTestApp(t *testing.T) *teamTestDeps {
	t.Helper()

	deps := &teamTestDeps{
		teamService:  new(testutil.MockTeamService),
		userService:  new(testutil.MockUserService),
		emailService: new(testutil.MockEmailService),
		hub:          new(testutil.MockHub),
		jwtSvc:       newTestJWTService(),
	}

	handler := NewTeamHandler(deps.teamService, deps.userService, deps.emailService, deps.hub)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(deps.jwtSvc))
	app.Get("/teams", handler.List)
	app.Post("/teams", handler.Create)
	app.Post("/teams/join", handler.Join)
	app.Get("/teams/:id", handler.Get)
	app.Delete("/teams/:id", handler.Delete)
	app.Post("/teams/:id/leave", handler.Leave)
	app.Get("/teams/:id/members", handler.GetMembers)
	app.Post("/teams/:id/invites", handler.SendInvite)
	deps.app = app

	return deps
}

func (d *teamTestDeps) request(t *testing.T, method, path string, body any, userID uuid.UUID, email string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	token := generateTestToken(t, d.jwtSvc, userID, email)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	d.app.ServeHTTP(rec, req)
	return rec
}

func TestTeamHandler_Create_Success(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	admin := &models.User{ID: userID, Email: "admin@example.com"}
	team := &models.Team{
		ID:      uuid.New(),
		Name:    "Design",
		Code:    "A1B2C3",
		AdminID: userID,
	}

	deps.userService.On("GetByID", mock.Anything, userID).Return(admin, nil)
	deps.teamService.On("Create", mock.Anything, "Design", admin).Return(team, nil)

	rec := deps.request(t, http.MethodPost, "/teams", dto.CreateTeamRequest{Name: "Design"}, userID, admin.Email)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.TeamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, team.ID, response.ID)
	assert.Equal(t, "Design", response.Name)
	assert.Equal(t, "A1B2C3", response.Code)
	assert.Equal(t, userID, response.AdminID)
	assert.Equal(t, "admin", response.MyRole)

	deps.teamService.AssertExpectations(t)
}

func TestTeamHandler_Create_EmptyName(t *testing.T) {
	deps := newTeamTestApp(t)
	userID := uuid.New()

	rec := deps.request(t, http.MethodPost, "/teams", dto.CreateTeamRequest{Name: ""}, userID, "u@example.com")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
	deps.teamService.AssertNotCalled(t, "Create")
}

func TestTeamHandler_List_Success(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teams := []models.Team{
		{ID: uuid.New(), Name: "Design", Code: "AAAAAA", AdminID: userID},
		{ID: uuid.New(), Name: "Ops", Code: "BBBBBB", AdminID: uuid.New()},
	}
	roles := []models.Role{models.RoleAdmin, models.RoleMember}

	deps.teamService.On("GetUserTeams", mock.Anything, userID).Return(teams, roles, nil)

	rec := deps.request(t, http.MethodGet, "/teams", nil, userID, "u@example.com")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []dto.TeamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "admin", response[0].MyRole)
	assert.Equal(t, "member", response[1].MyRole)
}

func TestTeamHandler_Get_NotAMember(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()

	deps.teamService.On("MemberRole", mock.Anything, teamID, userID).
		Return(models.Role(""), services.ErrMemberNotFound)

	rec := deps.request(t, http.MethodGet, "/teams/"+teamID.String(), nil, userID, "u@example.com")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "team not found")
}

func TestTeamHandler_Join_Success(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "joiner@example.com"}
	team := &models.Team{
		ID:      uuid.New(),
		Name:    "Design",
		Code:    "A1B2C3",
		AdminID: uuid.New(),
	}

	deps.userService.On("GetByID", mock.Anything, userID).Return(user, nil)
	deps.teamService.On("JoinByCode", mock.Anything, "A1B2C3", user).Return(team, nil)
	deps.hub.On("BroadcastMemberJoined", team.ID, userID, user.Email).Return()

	rec := deps.request(t, http.MethodPost, "/teams/join", dto.JoinTeamRequest{Code: "A1B2C3"}, userID, user.Email)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TeamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, team.ID, response.ID)
	assert.Equal(t, "member", response.MyRole)

	deps.hub.AssertExpectations(t)
}

func TestTeamHandler_Join_UnknownCode(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "joiner@example.com"}

	deps.userService.On("GetByID", mock.Anything, userID).Return(user, nil)
	deps.teamService.On("JoinByCode", mock.Anything, "ZZZZZZ", user).
		Return(nil, services.ErrTeamNotFound)

	rec := deps.request(t, http.MethodPost, "/teams/join", dto.JoinTeamRequest{Code: "ZZZZZZ"}, userID, user.Email)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no team with this code")
}

func TestTeamHandler_Join_AlreadyMember(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "joiner@example.com"}

	deps.userService.On("GetByID", mock.Anything, userID).Return(user, nil)
	deps.teamService.On("JoinByCode", mock.Anything, "A1B2C3", user).
		Return(nil, services.ErrAlreadyMember)

	rec := deps.request(t, http.MethodPost, "/teams/join", dto.JoinTeamRequest{Code: "A1B2C3"}, userID, user.Email)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already a member of this team")
	deps.hub.AssertNotCalled(t, "BroadcastMemberJoined")
}

func TestTeamHandler_Leave_Success(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()

	deps.teamService.On("Leave", mock.Anything, teamID, userID).Return(nil)
	deps.hub.On("BroadcastMemberLeft", teamID, userID).Return()

	rec := deps.request(t, http.MethodPost, "/teams/"+teamID.String()+"/leave", nil, userID, "u@example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "left team")

	deps.hub.AssertExpectations(t)
}

func TestTeamHandler_Leave_AdminRejected(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()

	deps.teamService.On("Leave", mock.Anything, teamID, userID).
		Return(services.ErrAdminCannotLeave)

	rec := deps.request(t, http.MethodPost, "/teams/"+teamID.String()+"/leave", nil, userID, "u@example.com")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot leave")
	deps.hub.AssertNotCalled(t, "BroadcastMemberLeft")
}

func TestTeamHandler_Delete_AsAdmin(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()

	deps.teamService.On("MemberRole", mock.Anything, teamID, userID).Return(models.RoleAdmin, nil)
	deps.teamService.On("Delete", mock.Anything, teamID).Return(nil)
	deps.hub.On("BroadcastTeamDeleted", teamID).Return()

	rec := deps.request(t, http.MethodDelete, "/teams/"+teamID.String(), nil, userID, "u@example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "team deleted")

	deps.teamService.AssertExpectations(t)
	deps.hub.AssertExpectations(t)
}

func TestTeamHandler_Delete_AsMember(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()

	deps.teamService.On("MemberRole", mock.Anything, teamID, userID).Return(models.RoleMember, nil)

	rec := deps.request(t, http.MethodDelete, "/teams/"+teamID.String(), nil, userID, "u@example.com")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "only the admin can delete the team")
	deps.teamService.AssertNotCalled(t, "Delete")
}

func TestTeamHandler_GetMembers_Success(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()
	members := []models.TeamMember{
		{ID: uuid.New(), TeamID: teamID, UserID: userID, Role: models.RoleAdmin, UserEmail: "admin@example.com"},
		{ID: uuid.New(), TeamID: teamID, UserID: uuid.New(), Role: models.RoleMember, UserEmail: "member@example.com"},
	}

	deps.teamService.On("IsMember", mock.Anything, teamID, userID).Return(true, nil)
	deps.teamService.On("GetMembers", mock.Anything, teamID).Return(members, nil)

	rec := deps.request(t, http.MethodGet, "/teams/"+teamID.String()+"/members", nil, userID, "admin@example.com")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []dto.TeamMemberResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "admin", response[0].Role)
	assert.Equal(t, "member@example.com", response[1].UserEmail)
}

func TestTeamHandler_SendInvite_Success(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()
	team := &models.Team{ID: teamID, Name: "Design", Code: "A1B2C3", AdminID: userID}

	deps.emailService.On("IsConfigured").Return(true)
	deps.teamService.On("IsMember", mock.Anything, teamID, userID).Return(true, nil)
	deps.teamService.On("GetByID", mock.Anything, teamID).Return(team, nil)
	deps.emailService.On("SendJoinCode", "invitee@example.com", "Design", "admin@example.com", "A1B2C3").Return(nil)

	rec := deps.request(t, http.MethodPost, "/teams/"+teamID.String()+"/invites",
		dto.InviteRequest{Email: "invitee@example.com"}, userID, "admin@example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invite sent")

	deps.emailService.AssertExpectations(t)
}

func TestTeamHandler_SendInvite_EmailNotConfigured(t *testing.T) {
	deps := newTeamTestApp(t)

	userID := uuid.New()
	teamID := uuid.New()

	deps.emailService.On("IsConfigured").Return(false)

	rec := deps.request(t, http.MethodPost, "/teams/"+teamID.String()+"/invites",
		dto.InviteRequest{Email: "invitee@example.com"}, userID, "admin@example.com")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is not configured")
}
