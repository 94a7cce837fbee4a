package models

import "time"

// User is a learner known to the backend
type User struct {
	ID                   int64     `json:"id" db:"id"`
	Username             string    `json:"username" db:"username"`
	TelegramChatID       *int64    `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// DueSummary is the number of due reviews for a user who wants reminders
type DueSummary struct {
	User
	Due int `json:"due" db:"due"`
}
