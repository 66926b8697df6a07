package models

import "time"

// PresenceWindow is how recent last_seen must be for a user to count as
// online.
const PresenceWindow = 300 * time.Second

// User is an anonymous identity. There are no accounts: the id is
// handed to the client on creation and supplied back on every request.
type User struct {
	ID          int        `db:"id" json:"id"`
	AnonymousID string     `db:"anonymous_id" json:"anonymous_id"`
	DisplayName string     `db:"display_name" json:"display_name"`
	AvatarCode  string     `db:"avatar_code" json:"avatar_code"`
	LastSeen    *time.Time `db:"last_seen" json:"last_seen,omitempty"`
}

// IsOnline reports whether lastSeen falls strictly within PresenceWindow
// of now. A user with no recorded activity is offline.
func IsOnline(lastSeen *time.Time, now time.Time) bool {
	if lastSeen == nil {
		return false
	}
	return now.Sub(*lastSeen) < PresenceWindow
}
