package models

import (
	"database/sql"
	"time"
)

// Display defaults for chats that have no counterpart or no messages
// yet. Product strings are Russian and rendered by clients as-is.
const (
	DefaultChatName    = "Новый чат"
	DefaultAvatarCode  = "A1"
	DefaultLastMessage = "Нет сообщений"
)

// Chat is a two-party conversation joined via its public chat_code.
type Chat struct {
	ID        int       `db:"id" json:"id"`
	ChatCode  string    `db:"chat_code" json:"chat_code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatOverview is one raw row of the chat-list aggregation: the chat
// joined with the counterpart profile and the latest message, before
// placeholder shaping. Counterpart and preview columns are nullable
// because a freshly created chat has neither.
type ChatOverview struct {
	ChatID          int            `db:"id"`
	ChatCode        string         `db:"chat_code"`
	CreatedAt       time.Time      `db:"created_at"`
	PartnerID       sql.NullInt64  `db:"partner_id"`
	PartnerName     sql.NullString `db:"partner_name"`
	PartnerAvatar   sql.NullString `db:"partner_avatar"`
	PartnerLastSeen sql.NullTime   `db:"partner_last_seen"`
	LastMessage     sql.NullString `db:"last_message"`
	LastMessageAt   sql.NullTime   `db:"last_message_at"`
	Unread          int            `db:"-"`
}

// ChatSummary is the API shape of one chat-list entry.
type ChatSummary struct {
	ID          int       `json:"id"`
	ChatCode    string    `json:"chat_code"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   time.Time `json:"timestamp"`
	Unread      int       `json:"unread"`
	Online      bool      `json:"online"`
}
