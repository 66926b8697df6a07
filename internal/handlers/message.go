package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"anonchat-service/internal/models"
	"anonchat-service/internal/observability"
	"anonchat-service/internal/repositories"
	"anonchat-service/internal/telemetry"
)

// MessageHandler manages message send/list endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// SendMessage stores a message and refreshes the sender's presence.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		ChatID  int    `json:"chat_id"`
		UserID  int    `json:"user_id"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}
	if req.ChatID == 0 || req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id and user_id required"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), req.ChatID, req.UserID, content)
	if err != nil {
		h.fail(c, err)
		return
	}

	observability.IncMessagesSent()
	emitAudit(c, h.audit, "INFO", "message sent")

	type sentMessage struct {
		models.Message
		Sender string `json:"sender"`
	}
	c.JSON(http.StatusOK, sentMessage{Message: msg, Sender: "me"})
}

// ListMessages returns a chat's messages oldest first, annotated for
// the requesting user. Reading counts as activity, so the requester's
// last_seen is refreshed as a side effect.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	chatID, chatErr := strconv.Atoi(c.Query("chat_id"))
	userID, userErr := strconv.Atoi(c.Query("user_id"))
	if chatErr != nil || userErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id and user_id required"})
		return
	}

	views, err := h.messageRepo.ListChatMessages(c.Request.Context(), chatID)
	if err != nil {
		h.fail(c, err)
		return
	}

	type messageUser struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	type messageResponse struct {
		ID        int         `json:"id"`
		Text      string      `json:"text"`
		Sender    string      `json:"sender"`
		Encrypted bool        `json:"encrypted"`
		Timestamp time.Time   `json:"timestamp"`
		User      messageUser `json:"user"`
	}

	resp := make([]messageResponse, 0, len(views))
	for _, v := range views {
		sender := "other"
		if v.UserID == userID {
			sender = "me"
		}
		resp = append(resp, messageResponse{
			ID:        v.ID,
			Text:      v.Content,
			Sender:    sender,
			Encrypted: v.Encrypted,
			Timestamp: v.CreatedAt,
			User:      messageUser{Name: v.AuthorName, Avatar: v.AuthorAvatar},
		})
	}

	if err := h.userRepo.TouchLastSeen(c.Request.Context(), userID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MessageHandler) fail(c *gin.Context, err error) {
	emitAudit(c, h.audit, "ERROR", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
