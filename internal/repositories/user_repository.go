package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"anonchat-service/internal/models"
)

// UserRepository abstracts anonymous user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, anonymousID, displayName, avatarCode string) (models.User, error)
	TouchLastSeen(ctx context.Context, userID int) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser stores a fresh anonymous identity.
func (r *UserRepo) CreateUser(ctx context.Context, anonymousID, displayName, avatarCode string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (anonymous_id, display_name, avatar_code) VALUES ($1, $2, $3)
        RETURNING id, anonymous_id, display_name, avatar_code, last_seen`, anonymousID, displayName, avatarCode).
		StructScan(&user)
	return user, err
}

// TouchLastSeen moves the user's presence timestamp forward to now.
// Both sending and reading messages count as activity.
func (r *UserRepo) TouchLastSeen(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_seen = CURRENT_TIMESTAMP WHERE id=$1`, userID)
	return err
}
