// Package ws pushes live board events to connected project viewers.
package ws

import (
	"encoding/json"
	"sync"

	"taskflow/internal/logger"
)

// Event is a broadcast sent to everyone watching a project.
type Event struct {
	Type      string      `json:"type"`
	ProjectID string      `json:"project_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Event types
const (
	EventBoardReordered = "board.reordered"
	EventTaskCreated    = "task.created"
	EventTaskUpdated    = "task.updated"
	EventTaskDeleted    = "task.deleted"
	EventColumnCreated  = "column.created"
)

// Hub fans events out to clients grouped by project. Clients register on
// connect and are dropped when their send buffer is full or the socket
// closes.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.ProjectID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[c.ProjectID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.ProjectID]
	if room == nil {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.ProjectID)
	}
}

// Broadcast delivers the event to every client watching its project. Slow
// clients are disconnected rather than blocking the rest.
func (h *Hub) Broadcast(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws event marshal failed", "error", err, "type", ev.Type)
		return
	}

	h.mu.RLock()
	var stale []*Client
	for c := range h.rooms[ev.ProjectID] {
		select {
		case c.send <- msg:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.unregister(c)
	}
}

// Viewers returns how many clients are watching the project.
func (h *Hub) Viewers(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[projectID])
}
