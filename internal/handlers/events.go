package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/oguzhan/teamboard-api/internal/middleware"
	"github.com/oguzhan/teamboard-api/internal/sse"
)

type EventsHandler struct {
	hub         HubInterface
	teamService TeamServiceInterface
}

func NewEventsHandler(hub HubInterface, teamService TeamServiceInterface) *EventsHandler {
	return &EventsHandler{
		hub:         hub,
		teamService: teamService,
	}
}

// Connect opens a server-sent events stream scoped to one team. Only
// members can subscribe.
func (h *EventsHandler) Connect(c *drift.Context) {
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

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Teams:  map[uuid.UUID]bool{teamID: true},
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
