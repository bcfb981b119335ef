package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oguzhan/teamboard-api/internal/database"
	"github.com/oguzhan/teamboard-api/internal/models"
)

var (
	ErrTeamNotFound     = errors.New("no team with this code")
	ErrAlreadyMember    = errors.New("already a member of this team")
	ErrMemberNotFound   = errors.New("member not found")
	ErrAdminCannotLeave = errors.New("the admin cannot leave the team, delete it instead")
	ErrCodeExhausted    = errors.New("could not generate a unique join code")
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// codeAttempts bounds the collision retry on join-code generation. With
// 36^6 possible codes a second attempt is already rare.
const codeAttempts = 5

// GenerateJoinCode returns 6 random uppercase base-36 characters, the
// human-shareable token members use to join.
func GenerateJoinCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

// Create inserts the team and its admin membership in one transaction, so
// a team can never exist without exactly one admin member. Join-code
// collisions retry with a fresh code.
func (s *TeamService) Create(ctx context.Context, name string, admin *models.User) (*models.Team, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := GenerateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		team, err := s.createWithCode(ctx, name, code, admin)
		if err != nil {
			if isUniqueViolation(err, "teams_code_key") {
				continue
			}
			return nil, err
		}
		return team, nil
	}
	return nil, ErrCodeExhausted
}

func (s *TeamService) createWithCode(ctx context.Context, name, code string, admin *models.User) (*models.Team, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var team models.Team
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, code, admin_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, code, admin_id, created_at, updated_at
	`, name, code, admin.ID).Scan(
		&team.ID, &team.Name, &team.Code, &team.AdminID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role, user_email)
		VALUES ($1, $2, $3, $4)
	`, team.ID, admin.ID, models.RoleAdmin, admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to add admin membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

func (s *TeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, code, admin_id, created_at, updated_at
		FROM teams WHERE id = $1
	`, teamID).Scan(
		&team.ID, &team.Name, &team.Code, &team.AdminID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, ErrTeamNotFound
	}
	return &team, nil
}

// GetUserTeams lists the workspace: every team the user belongs to,
// paired with the user's role in it.
func (s *TeamService) GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []models.Role, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.id, t.name, t.code, t.admin_id, t.created_at, t.updated_at, tm.role
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var teams []models.Team
	var roles []models.Role
	for rows.Next() {
		var t models.Team
		var role models.Role
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.AdminID, &t.CreatedAt, &t.UpdatedAt, &role); err != nil {
			return nil, nil, err
		}
		teams = append(teams, t)
		roles = append(roles, role)
	}
	return teams, roles, rows.Err()
}

// JoinByCode looks the team up by its case-normalized code and adds the
// user as a member. A duplicate membership surfaces as ErrAlreadyMember.
func (s *TeamService) JoinByCode(ctx context.Context, code string, user *models.User) (*models.Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, code, admin_id, created_at, updated_at
		FROM teams WHERE code = $1
	`, code).Scan(
		&team.ID, &team.Name, &team.Code, &team.AdminID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, ErrTeamNotFound
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role, user_email)
		VALUES ($1, $2, $3, $4)
	`, team.ID, user.ID, models.RoleMember, user.Email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add membership: %w", err)
	}

	return &team, nil
}

// Leave deletes the caller's own membership row. The admin has no leave
// path; removing the team is the admin's exit.
func (s *TeamService) Leave(ctx context.Context, teamID, userID uuid.UUID) error {
	role, err := s.MemberRole(ctx, teamID, userID)
	if err != nil {
		return err
	}

	switch role {
	case models.RoleAdmin:
		return ErrAdminCannotLeave
	case models.RoleMember:
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	_, err = s.db.Pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	return err
}

// Delete removes the team; memberships and tasks go with it via the
// store's cascade rules.
func (s *TeamService) Delete(ctx context.Context, teamID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	return err
}

func (s *TeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, team_id, user_id, role, user_email, created_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.UserEmail, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *TeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

func (s *TeamService) MemberRole(ctx context.Context, teamID, userID uuid.UUID) (models.Role, error) {
	var role models.Role
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	if err != nil {
		return "", ErrMemberNotFound
	}
	return role, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
