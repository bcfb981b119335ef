package sse

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/oguzhan/teamboard-api/internal/models"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type MemberJoinedEvent struct {
	TeamID    uuid.UUID `json:"team_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserEmail string    `json:"user_email"`
}

type MemberLeftEvent struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}

type TaskAssignedEvent struct {
	TeamID     uuid.UUID `json:"team_id"`
	TaskID     uuid.UUID `json:"task_id"`
	AssigneeID uuid.UUID `json:"assignee_id"`
	Title      string    `json:"title"`
}

type TaskStatusChangedEvent struct {
	TeamID uuid.UUID         `json:"team_id"`
	TaskID uuid.UUID         `json:"task_id"`
	Status models.TaskStatus `json:"status"`
}

type TeamDeletedEvent struct {
	TeamID uuid.UUID `json:"team_id"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Teams  map[uuid.UUID]bool
	Send   chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *TeamMessage
	mu         sync.RWMutex
}

type TeamMessage struct {
	TeamID uuid.UUID
	Event  Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *TeamMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.Teams[msg.TeamID] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) SubscribeToTeam(clientID string, teamID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Teams[teamID] = true
	}
}

func (h *Hub) UnsubscribeFromTeam(clientID string, teamID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Teams, teamID)
	}
}

func (h *Hub) BroadcastMemberJoined(teamID, userID uuid.UUID, userEmail string) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "member_joined",
			Data: MemberJoinedEvent{
				TeamID:    teamID,
				UserID:    userID,
				UserEmail: userEmail,
			},
		},
	}
}

func (h *Hub) BroadcastMemberLeft(teamID, userID uuid.UUID) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "member_left",
			Data: MemberLeftEvent{
				TeamID: teamID,
				UserID: userID,
			},
		},
	}
}

func (h *Hub) BroadcastTaskAssigned(teamID, taskID, assigneeID uuid.UUID, title string) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "task_assigned",
			Data: TaskAssignedEvent{
				TeamID:     teamID,
				TaskID:     taskID,
				AssigneeID: assigneeID,
				Title:      title,
			},
		},
	}
}

func (h *Hub) BroadcastTaskStatusChanged(teamID, taskID uuid.UUID, status models.TaskStatus) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "task_status_changed",
			Data: TaskStatusChangedEvent{
				TeamID: teamID,
				TaskID: taskID,
				Status: status,
			},
		},
	}
}

func (h *Hub) BroadcastTeamDeleted(teamID uuid.UUID) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "team_deleted",
			Data: TeamDeletedEvent{
				TeamID: teamID,
			},
		},
	}
}
