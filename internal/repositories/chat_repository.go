package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"anonchat-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// uniqueViolation is the Postgres error code for a unique constraint
// violation.
const uniqueViolation = "23505"

// ChatRepository abstracts chat and participant persistence.
type ChatRepository interface {
	CreateChat(ctx context.Context, chatCode string, creatorID int) (models.Chat, error)
	GetChatByCode(ctx context.Context, chatCode string) (models.Chat, error)
	AddParticipant(ctx context.Context, chatID int, userID int) error
	ListChatOverviews(ctx context.Context, userID int) ([]models.ChatOverview, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// error, e.g. a chat_code collision.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateChat inserts the chat and its creator as first participant in
// one transaction so a failed participant insert cannot orphan the chat.
func (r *ChatRepo) CreateChat(ctx context.Context, chatCode string, creatorID int) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer tx.Rollback()

	var chat models.Chat
	if err := tx.QueryRowxContext(ctx, `INSERT INTO chats (chat_code) VALUES ($1) RETURNING id, chat_code, created_at`, chatCode).
		StructScan(&chat); err != nil {
		return models.Chat{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)`, chat.ID, creatorID); err != nil {
		return models.Chat{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// GetChatByCode resolves a join token to its chat.
func (r *ChatRepo) GetChatByCode(ctx context.Context, chatCode string) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT id, chat_code, created_at FROM chats WHERE chat_code=$1`, chatCode)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// AddParticipant joins a user to a chat. Joining twice is a no-op: the
// primary key on (chat_id, user_id) absorbs concurrent duplicates.
func (r *ChatRepo) AddParticipant(ctx context.Context, chatID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, chatID, userID)
	return err
}

// chatOverviewQuery joins each of the user's chats with a single
// counterpart (lowest user id wins, keeps rows stable) and the latest
// message, ordered by most recent activity.
const chatOverviewQuery = `SELECT c.id, c.chat_code, c.created_at,
        p.user_id AS partner_id, u.display_name AS partner_name,
        u.avatar_code AS partner_avatar, u.last_seen AS partner_last_seen,
        m.content AS last_message, m.created_at AS last_message_at
    FROM chats c
    JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = $1
    LEFT JOIN LATERAL (
        SELECT user_id FROM chat_participants
        WHERE chat_id = c.id AND user_id <> $1
        ORDER BY user_id
        LIMIT 1
    ) p ON TRUE
    LEFT JOIN users u ON u.id = p.user_id
    LEFT JOIN LATERAL (
        SELECT content, created_at FROM messages
        WHERE chat_id = c.id
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    ) m ON TRUE
    ORDER BY COALESCE(m.created_at, c.created_at) DESC`

// unreadCountQuery counts messages from other participants newer than
// the viewer's last_seen, treating a never-seen viewer as epoch.
const unreadCountQuery = `SELECT COUNT(*) FROM messages
    WHERE chat_id = $1 AND user_id <> $2
      AND created_at > COALESCE((SELECT last_seen FROM users WHERE id = $2), 'epoch'::timestamptz)`

// ListChatOverviews returns the user's chats ordered by recent activity,
// each with its unread count filled in.
func (r *ChatRepo) ListChatOverviews(ctx context.Context, userID int) ([]models.ChatOverview, error) {
	rows, err := r.db.QueryxContext(ctx, chatOverviewQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ChatOverview
	for rows.Next() {
		var ov models.ChatOverview
		if err := rows.StructScan(&ov); err != nil {
			return nil, err
		}
		result = append(result, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if err := r.db.GetContext(ctx, &result[i].Unread, unreadCountQuery, result[i].ChatID, userID); err != nil {
			return nil, err
		}
	}
	return result, nil
}
