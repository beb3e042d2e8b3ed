package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		// Given: a config file with only the secret
		path := writeConfig(t, "jwt-secret-key: secret\n")

		// When: it is loaded
		config, err := Load(path)
		require.NoError(t, err)

		// Then: every section falls back to its defaults
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "9090", config.HTTPPort)
		assert.Equal(t, "localhost:6379", config.Redis.GetRedisAddr())
		assert.Equal(t, Rating{Win: 25, Loss: 15, Draw: 5}, config.Rating)
		assert.Equal(t, BroadcastRedis, config.Broadcast.Mode)
		assert.False(t, config.WebSocket.AllowObservers)
		assert.Equal(t, 16, config.WebSocket.SendBuffer)
		assert.Equal(t, 5*time.Second, config.WebSocket.MoveTimeout)
	})

	t.Run("file values win over defaults", func(t *testing.T) {
		path := writeConfig(t, `
jwt-secret-key: secret
redis:
  host: cache
  port: "6380"
  db: 2
rating:
  win: 30
  loss: 10
  draw: 3
websocket:
  allow-observers: true
broadcast:
  mode: local
`)

		config, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "cache:6380", config.Redis.GetRedisAddr())
		assert.Equal(t, 2, config.Redis.DB)
		assert.Equal(t, Rating{Win: 30, Loss: 10, Draw: 3}, config.Rating)
		assert.True(t, config.WebSocket.AllowObservers)
		assert.Equal(t, BroadcastLocal, config.Broadcast.Mode)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "jwt-secret-key: secret\nhttp-port: \"7000\"\n")
		t.Setenv("HTTP_PORT", "7001")

		config, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "7001", config.HTTPPort)
	})

	t.Run("unknown broadcast mode is rejected", func(t *testing.T) {
		path := writeConfig(t, "jwt-secret-key: secret\nbroadcast:\n  mode: kafka\n")

		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("negative websocket settings are rejected", func(t *testing.T) {
		for _, section := range []string{
			"websocket:\n  ping-period: -1s\n",
			"websocket:\n  move-timeout: -5s\n",
			"websocket:\n  max-message-size: -1\n",
		} {
			path := writeConfig(t, "jwt-secret-key: secret\n"+section)

			_, err := Load(path)
			require.Error(t, err, section)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		require.Error(t, err)
		assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yml")) })
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Broadcast: Broadcast{Mode: BroadcastRedis},
			Rating:    Rating{Win: 25, Loss: 15, Draw: 5},
			WebSocket: WebSocket{SendBuffer: 16, MaxMessageSize: 1024, PingPeriod: 30 * time.Second, MoveTimeout: 5 * time.Second},
		}
	}

	require.NoError(t, valid().Validate())

	// zero values never reach a ticker or a move deadline
	for name, mutate := range map[string]func(*Config){
		"ping period":      func(c *Config) { c.WebSocket.PingPeriod = 0 },
		"move timeout":     func(c *Config) { c.WebSocket.MoveTimeout = 0 },
		"max message size": func(c *Config) { c.WebSocket.MaxMessageSize = 0 },
		"send buffer":      func(c *Config) { c.WebSocket.SendBuffer = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			config := valid()
			mutate(config)

			assert.Error(t, config.Validate())
		})
	}
}
