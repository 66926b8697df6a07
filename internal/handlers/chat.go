package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"anonchat-service/internal/idgen"
	"anonchat-service/internal/models"
	"anonchat-service/internal/observability"
	"anonchat-service/internal/repositories"
	"anonchat-service/internal/telemetry"
)

// ChatAction is the closed set of operations accepted by POST /chats.
type ChatAction string

const (
	ActionCreateUser ChatAction = "create_user"
	ActionCreateChat ChatAction = "create_chat"
	ActionJoinChat   ChatAction = "join_chat"
)

// chatCodeAttempts bounds retries when a generated chat_code collides
// with the unique constraint.
const chatCodeAttempts = 3

// ChatHandler manages identity and chat endpoints.
type ChatHandler struct {
	userRepo repositories.UserRepository
	chatRepo repositories.ChatRepository
	audit    *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(userRepo repositories.UserRepository, chatRepo repositories.ChatRepository, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		userRepo: userRepo,
		chatRepo: chatRepo,
		audit:    audit,
	}
}

// HandleAction dispatches POST /chats on the action field.
func (h *ChatHandler) HandleAction(c *gin.Context) {
	var req struct {
		Action   ChatAction `json:"action"`
		UserID   int        `json:"user_id"`
		ChatCode string     `json:"chat_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case ActionCreateUser:
		h.createUser(c)
	case ActionCreateChat:
		h.createChat(c, req.UserID)
	case ActionJoinChat:
		h.joinChat(c, req.UserID, req.ChatCode)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

func (h *ChatHandler) createUser(c *gin.Context) {
	anonymousID := idgen.AnonymousID()
	user, err := h.userRepo.CreateUser(c.Request.Context(), anonymousID, idgen.DisplayName(anonymousID), idgen.AvatarCode())
	if err != nil {
		h.fail(c, err)
		return
	}

	observability.IncUsersCreated()
	emitAudit(c, h.audit, "INFO", "user created")
	c.JSON(http.StatusOK, user)
}

func (h *ChatHandler) createChat(c *gin.Context, userID int) {
	if userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	var chat models.Chat
	var err error
	for attempt := 0; attempt < chatCodeAttempts; attempt++ {
		chat, err = h.chatRepo.CreateChat(c.Request.Context(), idgen.ChatCode(), userID)
		if err == nil || !repositories.IsUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	observability.IncChatsCreated()
	emitAudit(c, h.audit, "INFO", "chat created")
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) joinChat(c *gin.Context, userID int, chatCode string) {
	if userID == 0 || chatCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and chat_code required"})
		return
	}

	chat, err := h.chatRepo.GetChatByCode(c.Request.Context(), chatCode)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
			return
		}
		h.fail(c, err)
		return
	}

	if err := h.chatRepo.AddParticipant(c.Request.Context(), chat.ID, userID); err != nil {
		h.fail(c, err)
		return
	}

	observability.IncChatsJoined()
	emitAudit(c, h.audit, "INFO", "chat joined")
	c.JSON(http.StatusOK, gin.H{"success": true, "chat_id": chat.ID})
}

// ListChats returns the user's chats ordered by most recent activity,
// each shaped with counterpart identity, preview, unread count and
// presence. Read-only: listing chats does not refresh last_seen.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	overviews, err := h.chatRepo.ListChatOverviews(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	now := time.Now()
	summaries := make([]models.ChatSummary, 0, len(overviews))
	for _, ov := range overviews {
		summaries = append(summaries, shapeSummary(ov, now))
	}
	c.JSON(http.StatusOK, summaries)
}

// shapeSummary applies the display defaults and computes presence for
// one aggregation row.
func shapeSummary(ov models.ChatOverview, now time.Time) models.ChatSummary {
	s := models.ChatSummary{
		ID:          ov.ChatID,
		ChatCode:    ov.ChatCode,
		Name:        models.DefaultChatName,
		Avatar:      models.DefaultAvatarCode,
		LastMessage: models.DefaultLastMessage,
		Timestamp:   ov.CreatedAt,
		Unread:      ov.Unread,
	}
	if ov.PartnerName.Valid && ov.PartnerName.String != "" {
		s.Name = ov.PartnerName.String
	}
	if ov.PartnerAvatar.Valid && ov.PartnerAvatar.String != "" {
		s.Avatar = ov.PartnerAvatar.String
	}
	if ov.LastMessage.Valid {
		s.LastMessage = ov.LastMessage.String
	}
	if ov.LastMessageAt.Valid {
		s.Timestamp = ov.LastMessageAt.Time
	}
	if ov.PartnerLastSeen.Valid {
		s.Online = models.IsOnline(&ov.PartnerLastSeen.Time, now)
	}
	return s
}

// fail reports an unhandled failure, surfacing the raw error text.
func (h *ChatHandler) fail(c *gin.Context, err error) {
	emitAudit(c, h.audit, "ERROR", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
