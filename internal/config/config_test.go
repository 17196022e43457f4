package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "8080", cfg.GetServerPort())
	assert.Equal(t, "data/todo.db", cfg.GetDatabasePath())
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.Equal(t, 0, cfg.GetRedisDB())
	assert.Equal(t, 60*time.Second, cfg.GetUndoTTL())
	assert.Equal(t, 2*time.Minute, cfg.GetBatchUndoTTL())
	assert.Equal(t, "development", cfg.GetEnvironment())
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("UNDO_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := NewConfig()

	assert.Equal(t, "9999", cfg.GetServerPort())
	assert.Equal(t, "redis.internal:6380", cfg.GetRedisAddr())
	assert.Equal(t, 3, cfg.GetRedisDB())
	assert.Equal(t, 90*time.Second, cfg.GetUndoTTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetAllowedOrigins())
}

func TestNewConfig_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("UNDO_TTL", "soon")

	cfg := NewConfig()

	assert.Equal(t, 0, cfg.GetRedisDB())
	assert.Equal(t, 60*time.Second, cfg.GetUndoTTL())
}

func TestAppConfig_Validate(t *testing.T) {
	t.Run("Error_NonNumericPort", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "eighty")
		cfg := NewConfig()
		require.Error(t, cfg.Validate())
	})

	t.Run("Error_DefaultSecretInProduction", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		cfg := NewConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("Error_ShortSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "short")
		cfg := NewConfig()
		require.Error(t, cfg.Validate())
	})
}
