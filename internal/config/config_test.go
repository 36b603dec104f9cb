package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lifeboard/internal/factory"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, factory.StorageTypeMemory, cfg.StorageType)
	assert.Equal(t, 500*time.Millisecond, cfg.HoldDelay)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	fc := cfg.Factory(nil)
	assert.Nil(t, fc.RedisConfig)
	assert.Equal(t, 10, fc.Gesture.BurstMultiplier)
}

func TestLoadRedis(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("REDIS_GAME_TTL", "0s")
	t.Setenv("LIFEBOARD_PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	fc := cfg.Factory(nil)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", fc.RedisConfig.URL)
	assert.Equal(t, time.Duration(0), fc.RedisConfig.GameTTL)
	assert.Equal(t, 9090, cfg.HTTP().Port)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"redis without url", map[string]string{"STORAGE_TYPE": "redis"}, "REDIS_URL required"},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "etcd"}, "invalid STORAGE_TYPE"},
		{"bad port", map[string]string{"LIFEBOARD_PORT": "not-an-int"}, "parse env:"},
		{"port out of range", map[string]string{"LIFEBOARD_PORT": "70000"}, "invalid LIFEBOARD_PORT"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "invalid LOG_LEVEL"},
		{"zero hold", map[string]string{"LIFEBOARD_HOLD_DELAY": "0s"}, "invalid LIFEBOARD_HOLD_DELAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "got %v", err)
		})
	}
}
