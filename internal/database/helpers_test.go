package database

import (
	"context"
	"testing"
	"time"

	"github.com/example/vocabtrainer/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func seedVocabulary(t *testing.T, db *sqlx.DB, words ...string) []models.VocabularyItem {
	t.Helper()
	repo := NewVocabRepository(db)
	items := make([]models.VocabularyItem, 0, len(words))
	for _, w := range words {
		item := models.VocabularyItem{Vocab: w, Translation: "tr:" + w}
		require.NoError(t, repo.Create(context.Background(), &item))
		items = append(items, item)
	}
	return items
}
