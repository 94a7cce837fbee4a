package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/vocabtrainer/internal/database"
	"github.com/example/vocabtrainer/internal/middleware"
	"github.com/example/vocabtrainer/internal/trainer"
	"github.com/example/vocabtrainer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0     = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	secret = []byte("router-test")
)

type server struct {
	mux   *http.ServeMux
	rt    *Router
	items []models.VocabularyItem
	token string
}

func newServer(t *testing.T) *server {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	vocab := database.NewVocabRepository(db)
	article, wordType := "die", "noun"
	items := []models.VocabularyItem{
		{Vocab: "Blume", Article: &article, WordType: &wordType, Translation: "flower"},
		{Vocab: "gehen", Translation: "to go"},
	}
	for i := range items {
		require.NoError(t, vocab.Create(context.Background(), &items[i]))
	}

	tr := trainer.New(vocab, database.NewMemoryRepository(db), trainer.DefaultConfig())
	rt := NewRouter(tr, secret)
	rt.now = func() time.Time { return t0 }
	mux := http.NewServeMux()
	rt.Register(mux)

	token, err := middleware.SignSession(secret, 3, time.Hour)
	require.NoError(t, err)
	return &server{mux: mux, rt: rt, items: items, token: token}
}

func (s *server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: s.token})
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func TestNextReturnsNewCard(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodGet, "/api/vocab/next", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, float64(s.items[0].ID), got["id"])
	assert.Equal(t, "Blume", got["vocab"])
	assert.Equal(t, "die", got["article"])
	assert.Equal(t, "noun", got["word_type"])
	assert.Equal(t, "flower", got["translation"])
	assert.Equal(t, true, got["is_new"])
	assert.NotContains(t, got, "memory")
}

func TestSubmitThenNext(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodPost, "/api/vocab/submit", map[string]int64{"id": s.items[0].ID, "quality": 5})
	require.Equal(t, http.StatusOK, rr.Code)

	var rec models.MemoryRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, 1, rec.Repetitions)
	assert.Equal(t, 1, rec.Interval)
	assert.InDelta(t, 2.6, rec.EaseFactor, 1e-9)
	assert.True(t, rec.NextRepeat.Equal(t0.AddDate(0, 0, 1)))
	assert.Contains(t, rr.Body.String(), `"intervall":1`)

	// The first word is scheduled for tomorrow, so the second one is introduced
	rr = s.do(t, http.MethodGet, "/api/vocab/next", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var card models.Card
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &card))
	assert.Equal(t, s.items[1].ID, card.ID)
	assert.Nil(t, card.Article)

	rr = s.do(t, http.MethodPost, "/api/vocab/submit", map[string]int64{"id": s.items[1].ID, "quality": 2})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/vocab/next", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", string(bytes.TrimSpace(rr.Body.Bytes())))

	s.rt.now = func() time.Time { return t0.AddDate(0, 0, 1) }
	rr = s.do(t, http.MethodGet, "/api/vocab/next", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &card))
	assert.Equal(t, s.items[0].ID, card.ID)
	require.NotNil(t, card.Memory)
	assert.Equal(t, 1, card.Memory.Repetitions)
}

func TestSubmitErrors(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"quality too high", map[string]int64{"id": s.items[0].ID, "quality": 7}, http.StatusBadRequest},
		{"negative quality", map[string]int64{"id": s.items[0].ID, "quality": -1}, http.StatusBadRequest},
		{"unknown item", map[string]int64{"id": 999, "quality": 5}, http.StatusNotFound},
		{"missing quality", map[string]int64{"id": s.items[0].ID}, http.StatusBadRequest},
		{"not json", "oops", http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, "/api/vocab/submit", c.body)
			assert.Equal(t, c.want, rr.Code)
		})
	}

	rr := s.do(t, http.MethodGet, "/api/vocab/memory", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rr.Body.Bytes())))
}

func TestMethodAndAuth(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodPost, "/api/vocab/next", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/vocab/submit", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/vocab/next", nil)
	anon := httptest.NewRecorder()
	s.mux.ServeHTTP(anon, req)
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	health := httptest.NewRecorder()
	s.mux.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestMemoryAndStats(t *testing.T) {
	s := newServer(t)
	rr := s.do(t, http.MethodPost, "/api/vocab/submit", map[string]int64{"id": s.items[0].ID, "quality": 4})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/vocab/memory", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []models.MemoryEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Blume", entries[0].Vocab)
	assert.Equal(t, 1, entries[0].Repetitions)

	rr = s.do(t, http.MethodGet, "/api/vocab/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats models.Statistics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, models.Statistics{TotalWords: 2, Unseen: 1, Learning: 1}, stats)
}
