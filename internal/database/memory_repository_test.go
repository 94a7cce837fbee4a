package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/vocabtrainer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(next time.Time) *models.MemoryRecord {
	return &models.MemoryRecord{EaseFactor: 2.5, NextRepeat: next, CreatedAt: t0, UpdatedAt: t0}
}

func TestModifyCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMemoryRepository(db)
	items := seedVocabulary(t, db, "Hund")

	created, err := repo.Modify(ctx, 7, items[0].ID, func(current *models.MemoryRecord) (*models.MemoryRecord, error) {
		assert.Nil(t, current)
		return record(t0.Add(24 * time.Hour)), nil
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(7), created.UserID)

	updated, err := repo.Modify(ctx, 7, items[0].ID, func(current *models.MemoryRecord) (*models.MemoryRecord, error) {
		require.NotNil(t, current)
		assert.Equal(t, created.ID, current.ID)
		current.Repetitions = 1
		current.Interval = 1
		current.EaseFactor = 2.6
		reviewed := t0.Add(500 * time.Millisecond)
		current.LastReviewedAt = &reviewed
		return current, nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := repo.Get(ctx, 7, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
	assert.Equal(t, 1, got.Interval)
	assert.Equal(t, 2.6, got.EaseFactor)
	assert.True(t, got.NextRepeat.Equal(updated.NextRepeat))
	require.NotNil(t, got.LastReviewedAt)
	assert.True(t, got.LastReviewedAt.Equal(t0), "sub-second precision is dropped")
	assert.True(t, got.CreatedAt.Equal(t0))
}

func TestModifyCallbackErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMemoryRepository(db)
	items := seedVocabulary(t, db, "Katze")

	boom := errors.New("boom")
	_, err := repo.Modify(ctx, 1, items[0].ID, func(*models.MemoryRecord) (*models.MemoryRecord, error) {
		return nil, boom
	})
	assert.True(t, errors.Is(err, boom))

	_, err = repo.Get(ctx, 1, items[0].ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestModifyIsAtomicUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMemoryRepository(db)
	items := seedVocabulary(t, db, "Maus")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Modify(ctx, 1, items[0].ID, func(current *models.MemoryRecord) (*models.MemoryRecord, error) {
				if current == nil {
					current = record(t0)
				}
				current.Repetitions++
				current.Interval = current.Repetitions * 2
				return current, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, 1, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, writers, got.Repetitions)
	assert.Equal(t, writers*2, got.Interval)
}

func TestListDue(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMemoryRepository(db)
	items := seedVocabulary(t, db, "a", "b", "c", "d")

	schedule := map[int64]time.Time{
		items[0].ID: t0.Add(time.Hour),      // future
		items[1].ID: t0.Add(-2 * time.Hour), // overdue
		items[2].ID: t0,                     // due exactly now
		items[3].ID: t0.Add(-2 * time.Hour), // overdue, higher id
	}
	for id, next := range schedule {
		next := next
		_, err := repo.Modify(ctx, 1, id, func(*models.MemoryRecord) (*models.MemoryRecord, error) {
			return record(next), nil
		})
		require.NoError(t, err)
	}

	due, err := repo.ListDue(ctx, 1, t0)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, items[1].ID, due[0].VocabID)
	assert.Equal(t, items[3].ID, due[1].VocabID)
	assert.Equal(t, items[2].ID, due[2].VocabID)

	none, err := repo.ListDue(ctx, 2, t0)
	require.NoError(t, err)
	assert.Empty(t, none)

	entries, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "b", entries[0].Vocab)
	assert.Equal(t, "tr:b", entries[0].Translation)
}

func TestCountCreatedSince(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMemoryRepository(db)
	items := seedVocabulary(t, db, "x", "y")

	yesterday := record(t0)
	yesterday.CreatedAt = t0.AddDate(0, 0, -1)
	_, err := repo.Modify(ctx, 1, items[0].ID, func(*models.MemoryRecord) (*models.MemoryRecord, error) { return yesterday, nil })
	require.NoError(t, err)
	_, err = repo.Modify(ctx, 1, items[1].ID, func(*models.MemoryRecord) (*models.MemoryRecord, error) { return record(t0), nil })
	require.NoError(t, err)

	n, err := repo.CountCreatedSince(ctx, 1, t0.Truncate(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDueSummaries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewMemoryRepository(db)
	items := seedVocabulary(t, db, "p", "q", "r")

	chat := int64(555)
	withChat := models.User{Username: "anna", TelegramChatID: &chat, NotificationsEnabled: true, CreatedAt: t0}
	muted := models.User{Username: "ben", TelegramChatID: &chat, NotificationsEnabled: false, CreatedAt: t0}
	noChat := models.User{Username: "cleo", NotificationsEnabled: true, CreatedAt: t0}
	for _, u := range []*models.User{&withChat, &muted, &noChat} {
		require.NoError(t, users.Create(ctx, u))
		for _, item := range items {
			_, err := repo.Modify(ctx, u.ID, item.ID, func(*models.MemoryRecord) (*models.MemoryRecord, error) {
				return record(t0.Add(-time.Minute)), nil
			})
			require.NoError(t, err)
		}
	}

	summaries, err := repo.DueSummaries(ctx, t0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, withChat.ID, summaries[0].ID)
	assert.Equal(t, 3, summaries[0].Due)
	require.NotNil(t, summaries[0].TelegramChatID)
	assert.Equal(t, chat, *summaries[0].TelegramChatID)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := models.User{Username: "dora", NotificationsEnabled: true, CreatedAt: t0}
	require.NoError(t, repo.Create(ctx, &user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dora", got.Username)
	assert.Nil(t, got.TelegramChatID)
	assert.True(t, got.NotificationsEnabled)

	_, err = repo.GetByID(ctx, user.ID+1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSetNotificationsByChat(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	chat := int64(777)
	user := models.User{Username: "emil", TelegramChatID: &chat, NotificationsEnabled: true, CreatedAt: t0}
	require.NoError(t, repo.Create(ctx, &user))

	require.NoError(t, repo.SetNotificationsByChat(ctx, chat, false))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.NotificationsEnabled)

	err = repo.SetNotificationsByChat(ctx, 999, true)
	assert.True(t, errors.Is(err, ErrNotFound))
}
