package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/oguzhan/teamboard-api/internal/middleware"
	"github.com/oguzhan/teamboard-api/internal/models"
	"github.com/oguzhan/teamboard-api/internal/services"
	"github.com/oguzhan/teamboard-api/internal/validation"
	"github.com/oguzhan/teamboard-api/pkg/dto"
)

const dueDateLayout = "2006-01-02"

type TaskHandler struct {
	taskService TaskServiceInterface
	teamService TeamServiceInterface
	hub         HubInterface
}

func NewTaskHandler(taskService TaskServiceInterface, teamService TeamServiceInterface, hub HubInterface) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		teamService: teamService,
		hub:         hub,
	}
}

func (h *TaskHandler) Assign(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.AssignTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := validation.ValidateStruct(req); err != nil {
		c.BadRequest(err.Error())
		return
	}

	dueDate, err := time.Parse(dueDateLayout, req.DueDate)
	if err != nil {
		c.BadRequest("due_date must be in YYYY-MM-DD format")
		return
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dueDate.Before(today) {
		c.BadRequest("due_date cannot be in the past")
		return
	}

	ctx := context.Background()

	role, err := h.teamService.MemberRole(ctx, teamID, userID)
	if err != nil {
		c.NotFound("team not found")
		return
	}
	if role != models.RoleAdmin {
		c.Forbidden("only the admin can assign tasks")
		return
	}

	task, err := h.taskService.Assign(ctx, teamID, req.UserID, req.Title, dueDate)
	if err != nil {
		if errors.Is(err, services.ErrNotAMember) {
			c.BadRequest("assignee is not a member of this team")
			return
		}
		c.InternalServerError("failed to assign task")
		return
	}

	h.hub.BroadcastTaskAssigned(teamID, task.ID, task.UserID, task.Title)

	_ = c.JSON(201, toTaskResponse(task))
}

func (h *TaskHandler) ListByTeam(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	ctx := context.Background()

	isMember, err := h.teamService.IsMember(ctx, teamID, userID)
	if err != nil || !isMember {
		c.NotFound("team not found")
		return
	}

	tasks, err := h.taskService.ListByTeam(ctx, teamID)
	if err != nil {
		c.InternalServerError("failed to get tasks")
		return
	}

	response := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = toTaskResponse(&tasks[i])
	}

	_ = c.JSON(200, response)
}

// Board returns the full team view: the team itself, its members, and
// each member's tasks newest first.
func (h *TaskHandler) Board(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	ctx := context.Background()

	role, err := h.teamService.MemberRole(ctx, teamID, userID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	team, err := h.teamService.GetByID(ctx, teamID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	members, err := h.teamService.GetMembers(ctx, teamID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	tasks, err := h.taskService.ListByTeam(ctx, teamID)
	if err != nil {
		c.InternalServerError("failed to get tasks")
		return
	}

	grouped := models.GroupTasksByAssignee(tasks)
	memberResponses := toMemberResponses(members)

	board := dto.BoardResponse{
		Team: dto.TeamResponse{
			ID:      team.ID,
			Name:    team.Name,
			Code:    team.Code,
			AdminID: team.AdminID,
			MyRole:  string(role),
		},
		Members: make([]dto.MemberTasksResponse, len(members)),
	}

	for i, m := range members {
		memberTasks := grouped[m.UserID]
		taskResponses := make([]dto.TaskResponse, len(memberTasks))
		for j := range memberTasks {
			taskResponses[j] = toTaskResponse(&memberTasks[j])
		}
		board.Members[i] = dto.MemberTasksResponse{
			Member: memberResponses[i],
			Tasks:  taskResponses,
		}
	}

	_ = c.JSON(200, board)
}

// UpdateStatus lets the team admin or the task's assignee move a task
// between statuses. Everyone else gets a 403.
func (h *TaskHandler) UpdateStatus(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	status := models.TaskStatus(req.Status)
	if !status.Valid() {
		c.BadRequest("status must be one of: pending, in-progress, completed")
		return
	}

	ctx := context.Background()

	task, err := h.taskService.GetByID(ctx, taskID)
	if err != nil {
		c.NotFound("task not found")
		return
	}

	role, err := h.teamService.MemberRole(ctx, task.TeamID, userID)
	if err != nil {
		c.NotFound("task not found")
		return
	}

	if role != models.RoleAdmin && task.UserID != userID {
		c.Forbidden("only the admin or the assignee can change task status")
		return
	}

	updated, err := h.taskService.UpdateStatus(ctx, taskID, status)
	if err != nil {
		c.InternalServerError("failed to update task")
		return
	}

	h.hub.BroadcastTaskStatusChanged(updated.TeamID, updated.ID, updated.Status)

	_ = c.JSON(200, toTaskResponse(updated))
}

func toTaskResponse(task *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:      task.ID,
		TeamID:  task.TeamID,
		UserID:  task.UserID,
		Title:   task.Title,
		DueDate: task.DueDate.Format(dueDateLayout),
		Status:  string(task.Status),
	}
}
