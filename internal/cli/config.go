package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/ccpubsub/internal/factory"
	"github.com/mcoot/ccpubsub/internal/services/gamesession"
	"github.com/mcoot/ccpubsub/internal/services/protocol"
	redisstorage "github.com/mcoot/ccpubsub/internal/storage/redis"
	"github.com/mcoot/ccpubsub/internal/transport"
)

// Config holds CLI configuration. Environment variables provide the
// defaults and flags override them.
type Config struct {
	URL             string        `env:"CCPUBSUB_URL" envDefault:"wss://pubsub.crowdcontrol.live/"`
	AuthURL         string        `env:"CCPUBSUB_AUTH_URL" envDefault:"https://auth.crowdcontrol.live/"`
	APIURL          string        `env:"CCPUBSUB_API_URL" envDefault:"https://openapi.crowdcontrol.live"`
	UserAgent       string        `env:"CCPUBSUB_USER_AGENT" envDefault:"Super Example Game 65"`
	Storage         string        `env:"CCPUBSUB_STORAGE" envDefault:"file"`
	TokenFile       string        `env:"CCPUBSUB_TOKEN_FILE" envDefault:"creds.jwt"`
	RedisURL        string        `env:"CCPUBSUB_REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisProfile    string        `env:"CCPUBSUB_REDIS_PROFILE" envDefault:"default"`
	GamePackID      string        `env:"CCPUBSUB_GAME_PACK"`
	HiddenEffects   []string      `env:"CCPUBSUB_HIDE_EFFECTS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"CCPUBSUB_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Output          string        `env:"CCPUBSUB_OUTPUT" envDefault:"text"`
	Verbose         bool          `env:"CCPUBSUB_VERBOSE"`
}

// LoadConfig reads a Config from the environment
func LoadConfig() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// Validate checks flag values that cobra cannot
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: must be 'text' or 'json'", c.Output)
	}
	switch c.Storage {
	case factory.StorageTypeFile, factory.StorageTypeMemory, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid storage %q: must be 'file', 'memory' or 'redis'", c.Storage)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Logger returns the CLI logger: text on w, debug level when verbose
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// FactoryConfig translates the CLI configuration into a factory Config
func (c *Config) FactoryConfig(logger *slog.Logger, notifier protocol.Notifier) factory.Config {
	transportCfg := transport.DefaultConfig()
	transportCfg.URL = c.URL
	transportCfg.UserAgent = c.UserAgent

	sessionCfg := gamesession.DefaultClientConfig()
	sessionCfg.BaseURL = c.APIURL
	sessionCfg.UserAgent = c.UserAgent

	fc := factory.Config{
		Logger:      logger,
		StorageType: c.Storage,
		TokenFile:   c.TokenFile,
		Transport:   transportCfg,
		Protocol: protocol.Config{
			AuthURL:       c.AuthURL,
			HiddenEffects: c.HiddenEffects,
		},
		GameSession: sessionCfg,
		GamePackID:  c.GamePackID,
		Notifier:    notifier,
	}

	if c.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.Profile = c.RedisProfile
		fc.RedisConfig = &redisCfg
	}
	return fc
}
