package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oguzhan/teamboard-api/internal/database"
	"github.com/oguzhan/teamboard-api/internal/models"
)

func setupTaskService(t *testing.T) (*TaskService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTaskService(db), mock
}

func TestTaskService_Assign(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	teamID := uuid.New()
	assigneeID := uuid.New()
	taskID := uuid.New()
	dueDate := time.Now().AddDate(0, 0, 7)
	now := time.Now()

	memberRows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(teamID, assigneeID).
		WillReturnRows(memberRows)

	taskRows := pgxmock.NewRows([]string{"id", "team_id", "user_id", "title", "due_date", "status", "created_at"}).
		AddRow(taskID, teamID, assigneeID, "write report", dueDate, models.StatusPending, now)
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(teamID, assigneeID, "write report", dueDate, models.StatusPending).
		WillReturnRows(taskRows)

	task, err := svc.Assign(ctx, teamID, assigneeID, "write report", dueDate)

	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, assigneeID, task.UserID)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Assign_AssigneeNotAMember(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	teamID := uuid.New()
	assigneeID := uuid.New()

	memberRows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(teamID, assigneeID).
		WillReturnRows(memberRows)

	_, err := svc.Assign(ctx, teamID, assigneeID, "write report", time.Now())

	assert.ErrorIs(t, err, ErrNotAMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id`).
		WithArgs(taskID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, taskID)

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_ListByTeam(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	teamID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "team_id", "user_id", "title", "due_date", "status", "created_at"}).
		AddRow(uuid.New(), teamID, uuid.New(), "newest", now, models.StatusPending, now).
		AddRow(uuid.New(), teamID, uuid.New(), "older", now, models.StatusCompleted, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .+ FROM tasks\s+WHERE team_id`).
		WithArgs(teamID).
		WillReturnRows(rows)

	tasks, err := svc.ListByTeam(ctx, teamID)

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "newest", tasks[0].Title)
	assert.Equal(t, "older", tasks[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_ListByTeam_Empty(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	teamID := uuid.New()

	rows := pgxmock.NewRows([]string{"id", "team_id", "user_id", "title", "due_date", "status", "created_at"})
	mock.ExpectQuery(`SELECT .+ FROM tasks\s+WHERE team_id`).
		WithArgs(teamID).
		WillReturnRows(rows)

	tasks, err := svc.ListByTeam(ctx, teamID)

	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_UpdateStatus(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()
	teamID := uuid.New()
	assigneeID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "team_id", "user_id", "title", "due_date", "status", "created_at"}).
		AddRow(taskID, teamID, assigneeID, "write report", now, models.StatusCompleted, now)

	mock.ExpectQuery(`UPDATE tasks SET status`).
		WithArgs(models.StatusCompleted, taskID).
		WillReturnRows(rows)

	task, err := svc.UpdateStatus(ctx, taskID, models.StatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_UpdateStatus_NotFound(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()

	mock.ExpectQuery(`UPDATE tasks SET status`).
		WithArgs(models.StatusInProgress, taskID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.UpdateStatus(ctx, taskID, models.StatusInProgress)

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
