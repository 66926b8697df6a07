package models

import "time"

// Message is an immutable chat message. The encrypted flag is stored
// for every message but no encryption is applied server-side.
type Message struct {
	ID        int       `db:"id" json:"id"`
	ChatID    int       `db:"chat_id" json:"chat_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	Encrypted bool      `db:"encrypted" json:"encrypted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MessageView is a message joined with its author profile, as read by
// the message-list query.
type MessageView struct {
	ID           int       `db:"id"`
	Content      string    `db:"content"`
	UserID       int       `db:"user_id"`
	Encrypted    bool      `db:"encrypted"`
	CreatedAt    time.Time `db:"created_at"`
	AuthorName   string    `db:"author_name"`
	AuthorAvatar string    `db:"author_avatar"`
}
