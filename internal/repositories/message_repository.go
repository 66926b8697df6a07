package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"anonchat-service/internal/models"
)

// MessageRepository abstracts message persistence.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID int, userID int, content string) (models.Message, error)
	ListChatMessages(ctx context.Context, chatID int) ([]models.MessageView, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and refreshes the sender's last_seen
// in one transaction so presence cannot go stale on a partial failure.
// The encrypted flag is always stored as true.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID int, userID int, content string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	if err := tx.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, user_id, content, encrypted) VALUES ($1, $2, $3, TRUE)
        RETURNING id, chat_id, user_id, content, encrypted, created_at`, chatID, userID, content).
		StructScan(&msg); err != nil {
		return models.Message{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET last_seen = CURRENT_TIMESTAMP WHERE id=$1`, userID); err != nil {
		return models.Message{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListChatMessages returns every message in the chat joined with its
// author profile, oldest first. Ties on created_at resolve by id so the
// order is stable.
func (r *MessageRepo) ListChatMessages(ctx context.Context, chatID int) ([]models.MessageView, error) {
	query := `SELECT m.id, m.content, m.user_id, m.encrypted, m.created_at,
            u.display_name AS author_name, u.avatar_code AS author_avatar
        FROM messages m
        JOIN users u ON m.user_id = u.id
        WHERE m.chat_id = $1
        ORDER BY m.created_at ASC, m.id ASC`
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs, query, chatID)
	return msgs, err
}
