package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oguzhan/teamboard-api/internal/database"
	"github.com/oguzhan/teamboard-api/internal/models"
	"github.com/oguzhan/teamboard-api/internal/oauth"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:    fmt.Sprintf("user%d@example.com", f.counter),
		Provider: models.ProviderEmail,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, provider, provider_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, provider, provider_id, created_at, updated_at
	`, user.Email, user.PasswordHash, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithPassword sets the user's password hash from a plaintext password
func WithPassword(password string) UserOption {
	return func(u *models.User) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		hashStr := string(hash)
		u.PasswordHash = &hashStr
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = &providerID
	}
}

// CreateTeam creates a test team with the given admin, including the
// admin's membership row
func (f *Fixtures) CreateTeam(t *testing.T, admin *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Name:    fmt.Sprintf("Test Team %d", f.counter),
		Code:    fmt.Sprintf("T%05d", f.counter),
		AdminID: admin.ID,
	}

	for _, opt := range opts {
		opt(team)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, code, admin_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, code, admin_id, created_at, updated_at
	`, team.Name, team.Code, team.AdminID).Scan(
		&team.ID, &team.Name, &team.Code, &team.AdminID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role, user_email)
		VALUES ($1, $2, $3, $4)
	`, team.ID, admin.ID, models.RoleAdmin, admin.Email)
	if err != nil {
		t.Fatalf("failed to add admin as member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(t *models.Team) {
		t.Name = name
	}
}

// WithTeamCode sets the team's join code
func WithTeamCode(code string) TeamOption {
	return func(t *models.Team) {
		t.Code = code
	}
}

// AddTeamMember adds a member to a team
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role, user_email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, team.ID, user.ID, models.RoleMember, user.Email)
	if err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}

// CreateTask creates a test task assigned to the given user
func (f *Fixtures) CreateTask(t *testing.T, team *models.Team, assignee *models.User, opts ...TaskOption) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		TeamID:  team.ID,
		UserID:  assignee.ID,
		Title:   fmt.Sprintf("Test Task %d", f.counter),
		DueDate: time.Now().AddDate(0, 0, 7),
		Status:  models.StatusPending,
	}

	for _, opt := range opts {
		opt(task)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (team_id, user_id, title, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, team_id, user_id, title, due_date, status, created_at
	`, task.TeamID, task.UserID, task.Title, task.DueDate, task.Status).Scan(
		&task.ID, &task.TeamID, &task.UserID, &task.Title,
		&task.DueDate, &task.Status, &task.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// TaskOption configures a test task
type TaskOption func(*models.Task)

// WithTitle sets the task's title
func WithTitle(title string) TaskOption {
	return func(t *models.Task) {
		t.Title = title
	}
}

// WithStatus sets the task's status
func WithStatus(status models.TaskStatus) TaskOption {
	return func(t *models.Task) {
		t.Status = status
	}
}

// WithDueDate sets the task's due date
func WithDueDate(dueDate time.Time) TaskOption {
	return func(t *models.Task) {
		t.DueDate = dueDate
	}
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		ID:       id,
		Email:    email,
		Provider: provider,
	}
}
