package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of membership roles. Every team has exactly one
// admin membership, created together with the team itself.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	}
	return false
}

type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	AdminID   uuid.UUID `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMember links a user to a team. UserEmail is denormalized at insert
// time so rosters render without touching the users table.
type TeamMember struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
}
