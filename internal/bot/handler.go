package bot

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	Dispatcher *Dispatcher
}

func NewHandler(d *Dispatcher) *Handler {
	return &Handler{Dispatcher: d}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.command) // POST /commands
}

type commandRequest struct {
	Room string `json:"room"`
	User string `json:"user"`
	Text string `json:"text" binding:"required"`
}

// Reply is one outbound unit: a plain text message or a batch of rendered
// entries that belong in a single send.
type Reply struct {
	Type    string   `json:"type"` // "text" | "batch"
	Text    string   `json:"text,omitempty"`
	Entries []string `json:"entries,omitempty"`
}

// Collector buffers dispatcher output, for transports that return
// everything in one response instead of streaming messages.
type Collector struct {
	Replies []Reply
}

func (c *Collector) Reply(text string) error {
	c.Replies = append(c.Replies, Reply{Type: "text", Text: text})
	return nil
}

func (c *Collector) ReplyBatch(entries []string) error {
	c.Replies = append(c.Replies, Reply{Type: "batch", Entries: entries})
	return nil
}

func (h *Handler) command(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room, user and text expected"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	user := strings.TrimSpace(req.User)
	if user == "" {
		user = "anon"
	}

	var out Collector
	if err := h.Dispatcher.Dispatch(c.Request.Context(), Request{
		Room: strings.TrimSpace(req.Room),
		User: user,
		Text: req.Text,
	}, &out); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": uuid.NewString(),
		"replies":    out.Replies,
	})
}
