package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/example/vocabtrainer/internal/middleware"
	"github.com/example/vocabtrainer/internal/trainer"
	"github.com/example/vocabtrainer/pkg/models"
)

// Trainer is the part of the trainer the HTTP layer needs
type Trainer interface {
	NextDueCard(ctx context.Context, userID int64, now time.Time) (*models.Card, error)
	SubmitReview(ctx context.Context, userID, itemID int64, quality int, now time.Time) (*models.MemoryRecord, error)
	Memory(ctx context.Context, userID int64) ([]models.MemoryEntry, error)
	Stats(ctx context.Context, userID int64, now time.Time) (*models.Statistics, error)
}

type Router struct {
	trainer Trainer
	secret  []byte
	now     func() time.Time
}

func NewRouter(t Trainer, sessionSecret []byte) *Router {
	return &Router{trainer: t, secret: sessionSecret, now: time.Now}
}

func (rt *Router) Register(mux *http.ServeMux) {
	auth := func(h http.HandlerFunc) http.Handler { return middleware.RequireSession(rt.secret, h) }

	mux.Handle("/api/vocab/next", auth(rt.handleNext))     // GET
	mux.Handle("/api/vocab/submit", auth(rt.handleSubmit)) // POST
	mux.Handle("/api/vocab/memory", auth(rt.handleMemory)) // GET
	mux.Handle("/api/vocab/stats", auth(rt.handleStats))   // GET
	mux.HandleFunc("/health", rt.handleHealth)
}

type submitRequest struct {
	ID      *int64 `json:"id"`
	Quality *int   `json:"quality"`
}

// GET /api/vocab/next returns the next due card, or null
func (rt *Router) handleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())

	card, err := rt.trainer.NextDueCard(r.Context(), userID, rt.now())
	if err != nil {
		writeError(w, err)
		return
	}
	// A nil card encodes as null
	writeJSON(w, http.StatusOK, card)
}

// POST /api/vocab/submit {id, quality}
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == nil || req.Quality == nil {
		http.Error(w, "id and quality are required", http.StatusBadRequest)
		return
	}

	record, err := rt.trainer.SubmitReview(r.Context(), userID, *req.ID, *req.Quality, rt.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// GET /api/vocab/memory
func (rt *Router) handleMemory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())

	entries, err := rt.trainer.Memory(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.MemoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GET /api/vocab/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())

	stats, err := rt.trainer.Stats(r.Context(), userID, rt.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trainer.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, trainer.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("[API] %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
