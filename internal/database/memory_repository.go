package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/vocabtrainer/pkg/models"
	"github.com/jmoiron/sqlx"
)

const memoryColumns = `id, user_id, vocab_id, ease_factor, intervall, repetitions,
	next_repeat, last_reviewed_at, created_at, updated_at`

// MemoryRepository handles database operations for per-user memory records
type MemoryRepository struct {
	db *sqlx.DB
}

// NewMemoryRepository creates a new repository instance
func NewMemoryRepository(db *sqlx.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// dbTime normalizes timestamps before they reach the database. SQLite keeps them as
// text, so every stored value and query bound must share one zone and precision.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Get returns the record for a user and vocabulary item
func (r *MemoryRepository) Get(ctx context.Context, userID, vocabID int64) (*models.MemoryRecord, error) {
	var record models.MemoryRecord
	query := r.db.Rebind("SELECT " + memoryColumns + " FROM memory_records WHERE user_id = ? AND vocab_id = ?")
	err := r.db.GetContext(ctx, &record, query, userID, vocabID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("memory record (%d, %d): %w", userID, vocabID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory record: %w", err)
	}
	return &record, nil
}

// ListDue returns the user's records with next_repeat <= now, most overdue first
func (r *MemoryRepository) ListDue(ctx context.Context, userID int64, now time.Time) ([]models.MemoryRecord, error) {
	query := r.db.Rebind(`
		SELECT ` + memoryColumns + `
		FROM memory_records
		WHERE user_id = ? AND next_repeat <= ?
		ORDER BY next_repeat ASC, vocab_id ASC
	`)
	var records []models.MemoryRecord
	if err := r.db.SelectContext(ctx, &records, query, userID, dbTime(now)); err != nil {
		return nil, fmt.Errorf("failed to get due records: %w", err)
	}
	return records, nil
}

// ListByUser returns all of the user's records joined with their words
func (r *MemoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.MemoryEntry, error) {
	query := r.db.Rebind(`
		SELECT m.id, m.user_id, m.vocab_id, m.ease_factor, m.intervall, m.repetitions,
			m.next_repeat, m.last_reviewed_at, m.created_at, m.updated_at,
			v.vocab, v.translation
		FROM memory_records m
		JOIN vocabulary v ON v.id = m.vocab_id
		WHERE m.user_id = ?
		ORDER BY m.next_repeat ASC, m.vocab_id ASC
	`)
	var entries []models.MemoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get memory records: %w", err)
	}
	return entries, nil
}

// CountCreatedSince counts records the user started at or after since
func (r *MemoryRepository) CountCreatedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	query := r.db.Rebind("SELECT COUNT(*) FROM memory_records WHERE user_id = ? AND created_at >= ?")
	var n int
	if err := r.db.GetContext(ctx, &n, query, userID, dbTime(since)); err != nil {
		return 0, fmt.Errorf("failed to count new records: %w", err)
	}
	return n, nil
}

// Modify runs one read-modify-write of the record for (userID, vocabID) inside a
// transaction. fn receives nil when no record exists yet and returns the record to store.
func (r *MemoryRepository) Modify(ctx context.Context, userID, vocabID int64, fn func(current *models.MemoryRecord) (*models.MemoryRecord, error)) (*models.MemoryRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := "SELECT " + memoryColumns + " FROM memory_records WHERE user_id = ? AND vocab_id = ?"
	if isPostgres(tx) {
		query += " FOR UPDATE"
	}

	var current *models.MemoryRecord
	var existing models.MemoryRecord
	err = tx.GetContext(ctx, &existing, tx.Rebind(query), userID, vocabID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to read memory record: %w", err)
	default:
		current = &existing
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	next.UserID = userID
	next.VocabID = vocabID
	normalize(next)

	upsert := tx.Rebind(`
		INSERT INTO memory_records (
			user_id, vocab_id, ease_factor, intervall, repetitions,
			next_repeat, last_reviewed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, vocab_id) DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			intervall = EXCLUDED.intervall,
			repetitions = EXCLUDED.repetitions,
			next_repeat = EXCLUDED.next_repeat,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`)
	err = tx.QueryRowxContext(ctx, upsert,
		next.UserID,
		next.VocabID,
		next.EaseFactor,
		next.Interval,
		next.Repetitions,
		next.NextRepeat,
		next.LastReviewedAt,
		next.CreatedAt,
		next.UpdatedAt,
	).Scan(&next.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to save memory record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return next, nil
}

// DueSummaries returns, for every user with reminders enabled, how many reviews are due
func (r *MemoryRepository) DueSummaries(ctx context.Context, now time.Time) ([]models.DueSummary, error) {
	query := r.db.Rebind(`
		SELECT u.id, u.username, u.telegram_chat_id, COUNT(m.id) AS due
		FROM users u
		JOIN memory_records m ON m.user_id = u.id
		WHERE u.notifications_enabled = ?
			AND u.telegram_chat_id IS NOT NULL
			AND m.next_repeat <= ?
		GROUP BY u.id, u.username, u.telegram_chat_id
		ORDER BY u.id
	`)
	var summaries []models.DueSummary
	if err := r.db.SelectContext(ctx, &summaries, query, true, dbTime(now)); err != nil {
		return nil, fmt.Errorf("failed to get due summaries: %w", err)
	}
	for i := range summaries {
		summaries[i].NotificationsEnabled = true
	}
	return summaries, nil
}

func normalize(record *models.MemoryRecord) {
	record.NextRepeat = dbTime(record.NextRepeat)
	record.CreatedAt = dbTime(record.CreatedAt)
	record.UpdatedAt = dbTime(record.UpdatedAt)
	if record.LastReviewedAt != nil {
		reviewed := dbTime(*record.LastReviewedAt)
		record.LastReviewedAt = &reviewed
	}
}
