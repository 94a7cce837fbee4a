package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/vocabtrainer/pkg/models"
	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`
		SELECT id, username, telegram_chat_id, notifications_enabled, created_at
		FROM users WHERE id = ?
	`)
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = dbTime(user.CreatedAt)
	query := r.db.Rebind(`
		INSERT INTO users (username, telegram_chat_id, notifications_enabled, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		user.Username,
		user.TelegramChatID,
		user.NotificationsEnabled,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// SetNotificationsByChat turns reminders on or off for the user linked to chatID
func (r *UserRepository) SetNotificationsByChat(ctx context.Context, chatID int64, enabled bool) error {
	query := r.db.Rebind(`
		UPDATE users
		SET notifications_enabled = ?
		WHERE telegram_chat_id = ?
	`)
	res, err := r.db.ExecContext(ctx, query, enabled, chatID)
	if err != nil {
		return fmt.Errorf("failed to update notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update notifications: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("chat %d: %w", chatID, ErrNotFound)
	}
	return nil
}
