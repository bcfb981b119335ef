package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID        uuid.UUID  `json:"id"`
	TeamID    uuid.UUID  `json:"team_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	DueDate   time.Time  `json:"due_date"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// GroupTasksByAssignee buckets tasks under their assignee's user id,
// keeping each bucket in the order tasks arrive (the store returns them
// newest first).
func GroupTasksByAssignee(tasks []Task) map[uuid.UUID][]Task {
	grouped := make(map[uuid.UUID][]Task)
	for _, task := range tasks {
		grouped[task.UserID] = append(grouped[task.UserID], task)
	}
	return grouped
}
