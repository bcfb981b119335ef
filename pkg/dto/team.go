package dto

import "github.com/google/uuid"

type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type JoinTeamRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type TeamResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Code    string    `json:"code"`
	AdminID uuid.UUID `json:"admin_id"`
	MyRole  string    `json:"my_role,omitempty"`
}

type TeamMemberResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	UserEmail string    `json:"user_email"`
	JoinedAt  string    `json:"joined_at"`
}
