package dto

import "github.com/google/uuid"

type AssignTaskRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Title   string    `json:"title" validate:"required,max=200"`
	DueDate string    `json:"due_date" validate:"required"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type TaskResponse struct {
	ID      uuid.UUID `json:"id"`
	TeamID  uuid.UUID `json:"team_id"`
	UserID  uuid.UUID `json:"user_id"`
	Title   string    `json:"title"`
	DueDate string    `json:"due_date"`
	Status  string    `json:"status"`
}

type MemberTasksResponse struct {
	Member TeamMemberResponse `json:"member"`
	Tasks  []TaskResponse     `json:"tasks"`
}

type BoardResponse struct {
	Team    TeamResponse          `json:"team"`
	Members []MemberTasksResponse `json:"members"`
}
