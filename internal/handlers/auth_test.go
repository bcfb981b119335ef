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

	"github.com/oguzhan/teamboard-api/internal/config"
	"github.com/oguzhan/teamboard-api/internal/middleware"
	"github.com/oguzhan/teamboard-api/internal/models"
	"github.com/oguzhan/teamboard-api/internal/services"
	"github.com/oguzhan/teamboard-api/pkg/dto"
	"github.com/oguzhan/teamboard-api/tests/testutil"
)

type authTestDeps struct {
	userService  *testutil.MockUserService
	tokenService *testutil.MockTokenService
	jwtSvc       *services.JWTService
	handler      *AuthHandler
	app          http.Handler
}

func newAuthTestApp(t *testing.T) *authTestDeps {
	t.Helper()

	deps := &authTestDeps{
		userService:  new(testutil.MockUserService),
		tokenService: new(testutil.MockTokenService),
		jwtSvc:       newTestJWTService(),
	}

	cfg := &config.Config{FrontendURL: "http://localhost:3000"}
	deps.handler = NewAuthHandler(cfg, deps.userService, deps.tokenService, deps.jwtSvc)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/register", deps.handler.Register)
	app.Post("/auth/login", deps.handler.Login)
	app.Post("/auth/refresh", deps.handler.RefreshToken)
	app.Post("/auth/logout", deps.handler.Logout)
	deps.app = app

	return deps
}

func (d *authTestDeps) post(t *testing.T, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	d.app.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	deps := newAuthTestApp(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "new@example.com", Provider: models.ProviderEmail}

	deps.userService.On("Register", mock.Anything, "new@example.com", "secret123").Return(user, nil)
	deps.tokenService.On("Store", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	rec := deps.post(t, "/auth/register", dto.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret123",
	}, "")

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, userID, response.User.ID)
	assert.Equal(t, "new@example.com", response.User.Email)
	assert.NotEmpty(t, response.Tokens.AccessToken)
	assert.NotEmpty(t, response.Tokens.RefreshToken)

	deps.tokenService.AssertExpectations(t)
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	deps := newAuthTestApp(t)

	deps.userService.On("Register", mock.Anything, "taken@example.com", "secret123").
		Return(nil, services.ErrEmailTaken)

	rec := deps.post(t, "/auth/register", dto.RegisterRequest{
		Email:    "taken@example.com",
		Password: "secret123",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	deps := newAuthTestApp(t)

	rec := deps.post(t, "/auth/register", dto.RegisterRequest{
		Email:    "not-an-email",
		Password: "secret123",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid email")
	deps.userService.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	deps := newAuthTestApp(t)

	rec := deps.post(t, "/auth/register", dto.RegisterRequest{
		Email:    "new@example.com",
		Password: "abc",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 6 characters")
	deps.userService.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Login_Success(t *testing.T) {
	deps := newAuthTestApp(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "user@example.com", Provider: models.ProviderEmail}

	deps.userService.On("Authenticate", mock.Anything, "user@example.com", "secret123").Return(user, nil)
	deps.tokenService.On("Store", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	rec := deps.post(t, "/auth/login", dto.LoginRequest{
		Email:    "user@example.com",
		Password: "secret123",
	}, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, userID, response.User.ID)
	assert.NotEmpty(t, response.Tokens.AccessToken)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	deps := newAuthTestApp(t)

	deps.userService.On("Authenticate", mock.Anything, "user@example.com", "wrong").
		Return(nil, services.ErrInvalidCredentials)

	rec := deps.post(t, "/auth/login", dto.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
	deps.tokenService.AssertNotCalled(t, "Store")
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	deps := newAuthTestApp(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "user@example.com", Provider: models.ProviderEmail}

	pair, err := deps.jwtSvc.GenerateTokenPair(userID, user.Email)
	require.NoError(t, err)
	tokenHash := services.HashToken(pair.RefreshToken)

	deps.tokenService.On("Lookup", mock.Anything, tokenHash).Return(userID, nil)
	deps.userService.On("GetByID", mock.Anything, userID).Return(user, nil)
	deps.tokenService.On("Revoke", mock.Anything, tokenHash).Return(nil)
	deps.tokenService.On("Store", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	rec := deps.post(t, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken}, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)

	deps.tokenService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	deps := newAuthTestApp(t)

	rec := deps.post(t, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "garbage"}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}

func TestAuthHandler_RefreshToken_NotStored(t *testing.T) {
	deps := newAuthTestApp(t)

	userID := uuid.New()
	pair, err := deps.jwtSvc.GenerateTokenPair(userID, "user@example.com")
	require.NoError(t, err)
	tokenHash := services.HashToken(pair.RefreshToken)

	deps.tokenService.On("Lookup", mock.Anything, tokenHash).
		Return(uuid.Nil, services.ErrTokenNotFound)

	rec := deps.post(t, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found or expired")
}

func TestAuthHandler_Logout_RevokesToken(t *testing.T) {
	deps := newAuthTestApp(t)

	userID := uuid.New()
	pair, err := deps.jwtSvc.GenerateTokenPair(userID, "user@example.com")
	require.NoError(t, err)
	tokenHash := services.HashToken(pair.RefreshToken)

	deps.tokenService.On("Revoke", mock.Anything, tokenHash).Return(nil)

	rec := deps.post(t, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	deps.tokenService.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll_Success(t *testing.T) {
	deps := newAuthTestApp(t)

	userID := uuid.New()
	deps.tokenService.On("RevokeAllForUser", mock.Anything, userID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(deps.jwtSvc))
	app.Post("/auth/logout-all", deps.handler.LogoutAll)

	token := generateTestToken(t, deps.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "all sessions logged out")

	deps.tokenService.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll_NotAuthenticated(t *testing.T) {
	deps := newAuthTestApp(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(deps.jwtSvc))
	app.Post("/auth/logout-all", deps.handler.LogoutAll)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
