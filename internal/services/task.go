package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oguzhan/teamboard-api/internal/database"
	"github.com/oguzhan/teamboard-api/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotAMember   = errors.New("assignee is not a member of this team")
)

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

// Assign creates a pending task for a team member. The assignee must hold
// a membership in the team; the store does not enforce that relation.
func (s *TaskService) Assign(ctx context.Context, teamID, assigneeID uuid.UUID, title string, dueDate time.Time) (*models.Task, error) {
	var isMember bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, assigneeID).Scan(&isMember)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotAMember
	}

	var task models.Task
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (team_id, user_id, title, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, team_id, user_id, title, due_date, status, created_at
	`, teamID, assigneeID, title, dueDate, models.StatusPending).Scan(
		&task.ID, &task.TeamID, &task.UserID, &task.Title, &task.DueDate, &task.Status, &task.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &task, nil
}

func (s *TaskService) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, team_id, user_id, title, due_date, status, created_at
		FROM tasks WHERE id = $1
	`, taskID).Scan(
		&task.ID, &task.TeamID, &task.UserID, &task.Title, &task.DueDate, &task.Status, &task.CreatedAt,
	)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

// ListByTeam returns the team's tasks newest first, the order the detail
// view and the per-assignee grouping rely on.
func (s *TaskService) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Task, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, team_id, user_id, title, due_date, status, created_at
		FROM tasks
		WHERE team_id = $1
		ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.TeamID, &t.UserID, &t.Title, &t.DueDate, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateStatus changes the one mutable field a task has.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET status = $1
		WHERE id = $2
		RETURNING id, team_id, user_id, title, due_date, status, created_at
	`, status, taskID).Scan(
		&task.ID, &task.TeamID, &task.UserID, &task.Title, &task.DueDate, &task.Status, &task.CreatedAt,
	)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}
