package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/vocabtrainer/pkg/models"
	"github.com/jmoiron/sqlx"
)

const vocabColumns = "id, vocab, article, word_type, translation, context"

// VocabRepository handles database operations for the vocabulary catalog
type VocabRepository struct {
	db *sqlx.DB
}

// NewVocabRepository creates a new repository instance
func NewVocabRepository(db *sqlx.DB) *VocabRepository {
	return &VocabRepository{db: db}
}

// GetByID returns a catalog item by ID
func (r *VocabRepository) GetByID(ctx context.Context, id int64) (*models.VocabularyItem, error) {
	var item models.VocabularyItem
	query := r.db.Rebind("SELECT " + vocabColumns + " FROM vocabulary WHERE id = ?")
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vocabulary item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vocabulary item: %w", err)
	}
	return &item, nil
}

// GetByVocab looks an item up by its natural key
func (r *VocabRepository) GetByVocab(ctx context.Context, vocab, translation string) (*models.VocabularyItem, error) {
	var item models.VocabularyItem
	query := r.db.Rebind("SELECT " + vocabColumns + " FROM vocabulary WHERE vocab = ? AND translation = ?")
	err := r.db.GetContext(ctx, &item, query, vocab, translation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vocabulary item %q: %w", vocab, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vocabulary item: %w", err)
	}
	return &item, nil
}

// NextUnseen returns the catalog item with the lowest id the user has no memory record for
func (r *VocabRepository) NextUnseen(ctx context.Context, userID int64) (*models.VocabularyItem, error) {
	var item models.VocabularyItem
	query := r.db.Rebind(`
		SELECT v.id, v.vocab, v.article, v.word_type, v.translation, v.context
		FROM vocabulary v
		LEFT JOIN memory_records m ON m.vocab_id = v.id AND m.user_id = ?
		WHERE m.id IS NULL
		ORDER BY v.id ASC
		LIMIT 1
	`)
	err := r.db.GetContext(ctx, &item, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unseen vocabulary for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unseen vocabulary: %w", err)
	}
	return &item, nil
}

// Count returns the size of the catalog
func (r *VocabRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM vocabulary"); err != nil {
		return 0, fmt.Errorf("failed to count vocabulary: %w", err)
	}
	return n, nil
}

// Create inserts a new catalog item
func (r *VocabRepository) Create(ctx context.Context, item *models.VocabularyItem) error {
	query := r.db.Rebind(`
		INSERT INTO vocabulary (vocab, article, word_type, translation, context)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		item.Vocab,
		item.Article,
		item.WordType,
		item.Translation,
		item.Context,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary item: %w", err)
	}
	return nil
}

// Update modifies an existing catalog item
func (r *VocabRepository) Update(ctx context.Context, item *models.VocabularyItem) error {
	query := r.db.Rebind(`
		UPDATE vocabulary SET
			vocab = ?,
			article = ?,
			word_type = ?,
			translation = ?,
			context = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		item.Vocab,
		item.Article,
		item.WordType,
		item.Translation,
		item.Context,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vocabulary item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("vocabulary item %d: %w", item.ID, ErrNotFound)
	}
	return nil
}
