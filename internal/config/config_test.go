package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_TYPE", "SQLITE_PATH", "NEW_ITEMS_PER_DAY", "REMINDER_INTERVAL", "ENABLE_SCHEDULER"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "data/vocab.db", cfg.SQLitePath)
	assert.Equal(t, 20, cfg.NewItemsPerDay)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.True(t, cfg.SchedulerEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NEW_ITEMS_PER_DAY", "5")
	t.Setenv("REMINDER_INTERVAL", "15m")
	t.Setenv("ENABLE_SCHEDULER", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.NewItemsPerDay)
	assert.Equal(t, 15*time.Minute, cfg.ReminderInterval)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"NEW_ITEMS_PER_DAY":       "many",
		"MAX_INTERVAL_DAYS":       "-1",
		"NOTIFICATION_START_HOUR": "24",
		"DB_TYPE":                 "mysql",
		"SESSION_TTL":             "forever",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPostgresNeedsURL(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}
