package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oguzhan/teamboard-api/internal/models"
	"github.com/oguzhan/teamboard-api/internal/oauth"
	"github.com/oguzhan/teamboard-api/internal/services"
	"github.com/oguzhan/teamboard-api/internal/sse"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, name string, admin *models.User) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []models.Role, error)
	JoinByCode(ctx context.Context, code string, user *models.User) (*models.Team, error)
	Leave(ctx context.Context, teamID, userID uuid.UUID) error
	Delete(ctx context.Context, teamID uuid.UUID) error
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	MemberRole(ctx context.Context, teamID, userID uuid.UUID) (models.Role, error)
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	Assign(ctx context.Context, teamID, assigneeID uuid.UUID, title string, dueDate time.Time) (*models.Task, error)
	GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Task, error)
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	Store(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	Lookup(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	SubscribeToTeam(clientID string, teamID uuid.UUID)
	UnsubscribeFromTeam(clientID string, teamID uuid.UUID)
	BroadcastMemberJoined(teamID, userID uuid.UUID, userEmail string)
	BroadcastMemberLeft(teamID, userID uuid.UUID)
	BroadcastTaskAssigned(teamID, taskID, assigneeID uuid.UUID, title string)
	BroadcastTaskStatusChanged(teamID, taskID uuid.UUID, status models.TaskStatus)
	BroadcastTeamDeleted(teamID uuid.UUID)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	IsConfigured() bool
	SendJoinCode(to, teamName, inviterEmail, code string) error
}
