package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"novelbible/internal/bot"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type incomingMessage struct {
	Text string `json:"text"`
	User string `json:"user"`
}

// roomResponder broadcasts dispatcher output into a room as bot messages.
type roomResponder struct {
	hub  *Hub
	room string
}

func (r *roomResponder) Reply(text string) error {
	r.hub.Broadcast(Message{
		Type: "bot",
		Room: r.room,
		User: BotName,
		Text: text,
	})
	return nil
}

func (r *roomResponder) ReplyBatch(entries []string) error {
	r.hub.Broadcast(Message{
		Type:    "batch",
		Room:    r.room,
		User:    BotName,
		Entries: entries,
	})
	return nil
}

// PaceBatches opts room delivery into the inter-batch pause; chat channels
// rate-limit successive sends.
func (r *roomResponder) PaceBatches() bool { return true }

func HistoryHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		room := strings.TrimSpace(c.Query("room"))
		if room == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room is required"})
			return
		}

		c.JSON(http.StatusOK, hub.History(room))
	}
}

// WSHandler upgrades a room member's connection. Messages that start with a
// known command token go through the dispatcher (replies broadcast to the
// room); anything else is ordinary room chat.
func WSHandler(hub *Hub, dispatcher *bot.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		room := strings.TrimSpace(c.Query("room"))
		if room == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room is required"})
			return
		}

		user := strings.TrimSpace(c.Query("user"))
		if user == "" {
			user = "anon"
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		history := hub.Join(room, ws, user)
		for _, msg := range history {
			_ = ws.WriteJSON(msg)
		}

		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				break
			}

			text := strings.TrimSpace(string(payload))
			sender := hub.User(room, ws)

			var incoming incomingMessage
			if err := json.Unmarshal(payload, &incoming); err == nil {
				text = strings.TrimSpace(incoming.Text)
				if u := strings.TrimSpace(incoming.User); u != "" {
					sender = u
				}
			}
			if text == "" {
				continue
			}

			if bot.IsCommand(text) {
				// dispatch pauses between batches; keep the read loop
				// responsive while it runs
				go func(text, sender string) {
					_ = dispatcher.Dispatch(context.Background(), bot.Request{
						Room: room,
						User: sender,
						Text: text,
					}, &roomResponder{hub: hub, room: room})
				}(text, sender)
				continue
			}

			hub.Broadcast(Message{
				Type: "message",
				Room: room,
				User: sender,
				Text: text,
				At:   time.Now().UTC(),
			})
		}

		hub.Leave(room, ws)
	}
}
