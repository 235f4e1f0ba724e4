package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Profile namespaces the token so several clients can share one Redis
	Profile string

	// TokenTTL bounds how long a saved token is kept. Zero keeps it until
	// it is overwritten or deleted.
	TokenTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     2,
		MinIdleConns: 0,
		Profile:      "default",
		TokenTTL:     0,
	}
}
