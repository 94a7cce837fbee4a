package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default notification window, hours in UTC
const (
	DefaultNotificationStartHour = 4
	DefaultNotificationEndHour   = 18
)

// Config holds all runtime settings of the trainer
type Config struct {
	HTTPAddr string

	DBType      string // "sqlite" or "postgres"
	SQLitePath  string
	DatabaseURL string

	SessionSecret string
	SessionTTL    time.Duration

	// Maximum number of never-seen words introduced per user per day
	NewItemsPerDay   int
	MaxIntervalDays  int
	CatalogCacheSize int64

	TelegramToken         string
	SchedulerEnabled      bool
	ReminderInterval      time.Duration
	NotificationStartHour int
	NotificationEndHour   int
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env: %v", err)
	}

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DBType:        getEnv("DB_TYPE", "sqlite"),
		SQLitePath:    getEnv("SQLITE_PATH", "data/vocab.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SessionSecret: getEnv("SESSION_SECRET", "vocabtrainer-dev-secret"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		// Scheduler runs unless explicitly switched off
		SchedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReminderInterval, err = getDuration("REMINDER_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.NewItemsPerDay, err = getInt("NEW_ITEMS_PER_DAY", 20); err != nil {
		return nil, err
	}
	if cfg.MaxIntervalDays, err = getInt("MAX_INTERVAL_DAYS", 36500); err != nil {
		return nil, err
	}
	cacheSize, err := getInt("CATALOG_CACHE_SIZE", 10000)
	if err != nil {
		return nil, err
	}
	cfg.CatalogCacheSize = int64(cacheSize)
	if cfg.NotificationStartHour, err = getInt("NOTIFICATION_START_HOUR", DefaultNotificationStartHour); err != nil {
		return nil, err
	}
	if cfg.NotificationEndHour, err = getInt("NOTIFICATION_END_HOUR", DefaultNotificationEndHour); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBType {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when DB_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.NewItemsPerDay < 0 {
		return fmt.Errorf("NEW_ITEMS_PER_DAY must not be negative, got %d", c.NewItemsPerDay)
	}
	if c.MaxIntervalDays < 0 {
		return fmt.Errorf("MAX_INTERVAL_DAYS must not be negative, got %d", c.MaxIntervalDays)
	}
	if c.CatalogCacheSize <= 0 {
		return fmt.Errorf("CATALOG_CACHE_SIZE must be positive, got %d", c.CatalogCacheSize)
	}
	for _, h := range []int{c.NotificationStartHour, c.NotificationEndHour} {
		if h < 0 || h > 23 {
			return fmt.Errorf("notification hour %d out of range 0-23", h)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return d, nil
}
