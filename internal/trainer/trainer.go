package trainer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/vocabtrainer/internal/database"
	"github.com/example/vocabtrainer/internal/spaced_repetition"
	"github.com/example/vocabtrainer/pkg/models"
)

// MemoryStore persists one memory record per (user, vocabulary item)
type MemoryStore interface {
	ListDue(ctx context.Context, userID int64, now time.Time) ([]models.MemoryRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]models.MemoryEntry, error)
	CountCreatedSince(ctx context.Context, userID int64, since time.Time) (int, error)
	Modify(ctx context.Context, userID, vocabID int64, fn func(current *models.MemoryRecord) (*models.MemoryRecord, error)) (*models.MemoryRecord, error)
}

// Config tunes the trainer
type Config struct {
	// Words a user may start per UTC day; 0 stops introducing new words
	NewItemsPerDay int
	// Upper bound for review intervals in days; 0 means unbounded
	MaxIntervalDays int
}

// DefaultConfig returns the default trainer configuration
func DefaultConfig() Config {
	return Config{
		NewItemsPerDay:  20,
		MaxIntervalDays: spaced_repetition.DefaultMaxInterval,
	}
}

// Trainer serves vocabulary cards and records review outcomes
type Trainer struct {
	catalog        Catalog
	memory         MemoryStore
	sm2            *spaced_repetition.SM2
	newItemsPerDay int
}

// New creates a trainer on top of a catalog and a memory store
func New(catalog Catalog, memory MemoryStore, cfg Config) *Trainer {
	sm2 := spaced_repetition.NewSM2()
	sm2.MaxInterval = cfg.MaxIntervalDays
	return &Trainer{
		catalog:        catalog,
		memory:         memory,
		sm2:            sm2,
		newItemsPerDay: cfg.NewItemsPerDay,
	}
}

// NextDueCard returns the card the user should see now, or nil when nothing is due.
//
// Due reviews always come first, most overdue first. Only when no review is due is a
// never-seen word introduced: the one with the lowest catalog id, limited to
// NewItemsPerDay introductions per UTC day. The call never modifies any record.
func (t *Trainer) NextDueCard(ctx context.Context, userID int64, now time.Time) (*models.Card, error) {
	due, err := t.memory.ListDue(ctx, userID, now)
	if err != nil {
		return nil, storageError("list due records", err)
	}

	if next := spaced_repetition.SelectNext(due, now); next != nil {
		item, err := t.catalog.GetByID(ctx, next.VocabID)
		if err != nil {
			return nil, storageError("get vocabulary item", err)
		}
		return &models.Card{VocabularyItem: *item, Memory: next}, nil
	}

	return t.introduceNew(ctx, userID, now)
}

func (t *Trainer) introduceNew(ctx context.Context, userID int64, now time.Time) (*models.Card, error) {
	if t.newItemsPerDay <= 0 {
		return nil, nil
	}

	startOfDay := now.UTC().Truncate(24 * time.Hour)
	introduced, err := t.memory.CountCreatedSince(ctx, userID, startOfDay)
	if err != nil {
		return nil, storageError("count new records", err)
	}
	if introduced >= t.newItemsPerDay {
		return nil, nil
	}

	item, err := t.catalog.NextUnseen(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("get unseen vocabulary", err)
	}
	return &models.Card{VocabularyItem: *item, IsNew: true}, nil
}

// SubmitReview applies a recall quality (0..5) to the user's record for itemID,
// creating the record on the first review, and returns the stored result.
func (t *Trainer) SubmitReview(ctx context.Context, userID, itemID int64, quality int, now time.Time) (*models.MemoryRecord, error) {
	q := spaced_repetition.QualityResponse(quality)
	if !q.IsValid() {
		return nil, fmt.Errorf("%w: quality %d outside 0..5", ErrInvalidArgument, quality)
	}

	if _, err := t.catalog.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: vocabulary item %d", ErrNotFound, itemID)
		}
		return nil, storageError("get vocabulary item", err)
	}

	// Stored timestamps have second precision
	now = now.UTC().Truncate(time.Second)

	record, err := t.memory.Modify(ctx, userID, itemID, func(current *models.MemoryRecord) (*models.MemoryRecord, error) {
		if current == nil {
			current = t.sm2.NewRecord(userID, itemID, now)
		}
		if err := t.sm2.Process(current, q, now); err != nil {
			return nil, err
		}
		return current, nil
	})
	if err != nil {
		return nil, storageError("save review", err)
	}
	return record, nil
}

// Memory lists every record of the user together with its word
func (t *Trainer) Memory(ctx context.Context, userID int64) ([]models.MemoryEntry, error) {
	entries, err := t.memory.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("list memory records", err)
	}
	return entries, nil
}

// Stats summarises the user's progress at now
func (t *Trainer) Stats(ctx context.Context, userID int64, now time.Time) (*models.Statistics, error) {
	total, err := t.catalog.Count(ctx)
	if err != nil {
		return nil, storageError("count vocabulary", err)
	}
	entries, err := t.memory.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("list memory records", err)
	}

	stats := &models.Statistics{
		TotalWords: total,
		Unseen:     total - len(entries),
	}
	for i := range entries {
		record := &entries[i].MemoryRecord
		if record.IsDue(now) {
			stats.Due++
		}
		switch spaced_repetition.PhaseOf(record) {
		case spaced_repetition.PhaseLearning:
			stats.Learning++
		case spaced_repetition.PhaseReview:
			stats.Review++
		case spaced_repetition.PhaseRelearning:
			stats.Relearning++
		}
	}
	return stats, nil
}
