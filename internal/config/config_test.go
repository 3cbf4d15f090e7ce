package config

import (
	"os"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults fill what the file leaves out", func(t *testing.T) {
		// Given: a file that only sets the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: it is loaded
		conf, err := Load(path)

		// Then: the rest falls back to defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "5000", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 24*time.Hour, conf.TokenTTL)
		assert.Equal(t, int64(0), conf.Noise.Seed)

		opts, err := conf.Codec.Options()
		require.NoError(t, err)
		assert.Equal(t, codec.DefaultOptions(), opts)
	})

	t.Run("Codec section is read", func(t *testing.T) {
		path := writeConfig(t, `
socket-port: "5050"
codec:
  parity-mode: odd
  crc-generator: "10011"
  checksum-block-width: 16
noise:
  seed: 42
`)

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "5050", conf.SocketPort)
		assert.Equal(t, int64(42), conf.Noise.Seed)

		opts, err := conf.Codec.Options()
		require.NoError(t, err)
		assert.Equal(t, codec.Options{Parity: codec.ParityOdd, Generator: bits.Sequence("10011"), BlockWidth: 16}, opts)
	})

	t.Run("Invalid generator is refused", func(t *testing.T) {
		path := writeConfig(t, "codec:\n  crc-generator: \"10x1\"\n")

		_, err := Load(path)

		require.ErrorIs(t, err, codec.ErrInvalidGenerator)
	})

	t.Run("Invalid parity mode is refused", func(t *testing.T) {
		path := writeConfig(t, "codec:\n  parity-mode: mark\n")

		_, err := Load(path)

		require.ErrorIs(t, err, codec.ErrInvalidParityMode)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.Error(t, err)
		assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yml")) })
	})
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("loud"))
}
