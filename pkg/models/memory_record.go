package models

import "time"

// MemoryRecord tracks a user's SM-2 state for a single vocabulary item
type MemoryRecord struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	VocabID        int64      `json:"vocab_id" db:"vocab_id"`
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`
	Interval       int        `json:"intervall" db:"intervall"` // Days until the next review
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	NextRepeat     time.Time  `json:"next_repeat" db:"next_repeat"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the record should be reviewed at now
func (r *MemoryRecord) IsDue(now time.Time) bool {
	return !r.NextRepeat.After(now)
}

// Card is what the trainer hands to the front end: the word plus its review metadata.
// Memory is nil for a word the user has never reviewed.
type Card struct {
	VocabularyItem
	IsNew  bool          `json:"is_new"`
	Memory *MemoryRecord `json:"memory,omitempty"`
}

// MemoryEntry joins a record with its word for the memory overview
type MemoryEntry struct {
	MemoryRecord
	Vocab       string `json:"vocab" db:"vocab"`
	Translation string `json:"translation" db:"translation"`
}
