// Package chat is the room gateway the bot lives in: websocket rooms with a
// short history ring, plus command routing into the dispatcher so members
// can query the scan-record catalog in-room.
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const defaultHistorySize = 50

// BotName labels replies the bot broadcasts into a room.
const BotName = "扫书宝典"

type Message struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"` // message | bot | batch | user_join | user_leave
	Room    string    `json:"room"`
	User    string    `json:"user"`
	Text    string    `json:"text,omitempty"`
	Entries []string  `json:"entries,omitempty"` // set for type "batch"
	At      time.Time `json:"at"`
}

type room struct {
	connections map[*websocket.Conn]string
	history     []Message
}

type Hub struct {
	mu          sync.Mutex
	rooms       map[string]*room
	historySize int
}

func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		rooms:       make(map[string]*room),
		historySize: historySize,
	}
}

func (h *Hub) Join(roomID string, ws *websocket.Conn, user string) []Message {
	var history []Message
	h.mu.Lock()
	r := h.roomLocked(roomID)
	r.connections[ws] = user
	history = append(history, r.history...)
	h.mu.Unlock()

	h.Broadcast(Message{
		Type: "user_join",
		Room: roomID,
		User: user,
	})

	return history
}

func (h *Hub) Leave(roomID string, ws *websocket.Conn) {
	var user string
	h.mu.Lock()
	if r, ok := h.rooms[roomID]; ok {
		if u, exists := r.connections[ws]; exists {
			user = u
		}
		delete(r.connections, ws)
	}
	h.mu.Unlock()

	_ = ws.Close()

	if user != "" {
		h.Broadcast(Message{
			Type: "user_leave",
			Room: roomID,
			User: user,
		})
	}
}

func (h *Hub) Broadcast(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[msg.Room]
	if !ok {
		return
	}

	switch msg.Type {
	case "message", "bot":
		r.history = append(r.history, msg)
		if len(r.history) > h.historySize {
			r.history = r.history[len(r.history)-h.historySize:]
		}
	}

	for ws := range r.connections {
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = ws.Close()
			delete(r.connections, ws)
		}
	}
}

func (h *Hub) History(roomID string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok {
		return append([]Message(nil), r.history...)
	}
	return nil
}

func (h *Hub) User(roomID string, ws *websocket.Conn) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok {
		return r.connections[ws]
	}
	return ""
}

func (h *Hub) roomLocked(roomID string) *room {
	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{connections: make(map[*websocket.Conn]string)}
		h.rooms[roomID] = r
	}
	return r
}
