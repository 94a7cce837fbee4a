package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/vocabtrainer/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("database: not found")

// Connect establishes a connection to the configured database
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.DBType == "postgres" {
		return Open("postgres", cfg.DatabaseURL)
	}

	// Create data directory if it doesn't exist
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return Open("sqlite3", cfg.SQLitePath)
}

// Open connects with the given driver and initializes the schema
func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers; one connection also keeps
		// an in-memory database alive for the lifetime of the pool.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func isPostgres(db interface{ DriverName() string }) bool {
	return db.DriverName() == "postgres"
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := sqliteSchema
	if isPostgres(db) {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		telegram_chat_id INTEGER,
		notifications_enabled BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vocab TEXT NOT NULL,
		article TEXT,
		word_type TEXT,
		translation TEXT NOT NULL,
		context TEXT,
		UNIQUE(vocab, translation)
	)`,
	`CREATE TABLE IF NOT EXISTS memory_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		vocab_id INTEGER NOT NULL,
		ease_factor REAL NOT NULL DEFAULT 2.5,
		intervall INTEGER NOT NULL DEFAULT 0,
		repetitions INTEGER NOT NULL DEFAULT 0,
		next_repeat TIMESTAMP NOT NULL,
		last_reviewed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY (vocab_id) REFERENCES vocabulary(id),
		UNIQUE(user_id, vocab_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memory_records_due ON memory_records(user_id, next_repeat)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		telegram_chat_id BIGINT,
		notifications_enabled BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id BIGSERIAL PRIMARY KEY,
		vocab TEXT NOT NULL,
		article TEXT,
		word_type TEXT,
		translation TEXT NOT NULL,
		context TEXT,
		UNIQUE(vocab, translation)
	)`,
	`CREATE TABLE IF NOT EXISTS memory_records (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		vocab_id BIGINT NOT NULL REFERENCES vocabulary(id),
		ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		intervall INTEGER NOT NULL DEFAULT 0,
		repetitions INTEGER NOT NULL DEFAULT 0,
		next_repeat TIMESTAMPTZ NOT NULL,
		last_reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE(user_id, vocab_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memory_records_due ON memory_records(user_id, next_repeat)`,
}
