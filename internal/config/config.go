package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"5000"`
	Redis             Redis         `yaml:"redis"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"relay.db"`
	JWTSecretKey      string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY"`
	TokenTTL          time.Duration `yaml:"token-ttl" env:"TOKEN_TTL" env-default:"24h"`
	Codec             Codec         `yaml:"codec"`
	Noise             Noise         `yaml:"noise"`
}

type Redis struct {
	Host        string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port        string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SnapshotTTL time.Duration `yaml:"snapshot-ttl" env:"REDIS_SNAPSHOT_TTL" env-default:"24h"`
}

// Codec must match on both peers, otherwise every chat decodes as corrupted.
type Codec struct {
	ParityMode         string `yaml:"parity-mode" env:"CODEC_PARITY_MODE" env-default:"even"`
	CRCGenerator       string `yaml:"crc-generator" env:"CODEC_CRC_GENERATOR" env-default:"1011"`
	ChecksumBlockWidth int    `yaml:"checksum-block-width" env:"CODEC_CHECKSUM_BLOCK_WIDTH" env-default:"8"`
}

type Noise struct {
	// Seed 0 seeds from the clock.
	Seed int64 `yaml:"seed" env:"NOISE_SEED" env-default:"0"`
}

// Load reads path and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if _, err := config.Codec.Options(); err != nil {
		return nil, fmt.Errorf("invalid codec section: %w", err)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that Codec) Options() (codec.Options, error) {
	parity, err := codec.ParseParityMode(that.ParityMode)
	if err != nil {
		return codec.Options{}, err
	}

	generator, err := bits.Parse(that.CRCGenerator)
	if err != nil {
		return codec.Options{}, fmt.Errorf("%w: %w", codec.ErrInvalidGenerator, err)
	}

	opts := codec.Options{
		Parity:     parity,
		Generator:  generator,
		BlockWidth: that.ChecksumBlockWidth,
	}

	if err = opts.Validate(); err != nil {
		return codec.Options{}, err
	}

	return opts, nil
}

// ParseLogLevel maps log-level onto slog. Anything unknown is info.
func ParseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
