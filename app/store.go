package app

import (
	"context"
	"os"
	"time"
)

// StateTTL is how long shared stores keep a place's state after its last
// write. It outlives ReloadDelay so a scheduled reload is never forgotten
// early.
const StateTTL = 24 * time.Hour

// StateStore persists the reload state of each place, keyed by GenerateCacheKey
type StateStore interface {
	Get(ctx context.Context, key string) (ReloadState, bool, error)
	Set(ctx context.Context, key string, state ReloadState) error
}

// NewStateStore picks a store from the configuration: a Redis server when
// RedisAddr is set, Upstash's REST API when its URL and token are set, memory
// otherwise.
func NewStateStore(cfg Config) (StateStore, error) {
	switch {
	case cfg.RedisAddr != "":
		logger.Info("using redis state store", "addr", cfg.RedisAddr)
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case cfg.UpstashURL != "" && cfg.UpstashToken != "":
		logger.Info("using upstash state store")
		return NewUpstashStore(cfg.UpstashURL, cfg.UpstashToken), nil
	default:
		if os.Getenv("VERCEL") != "" {
			logger.Warn("no shared state store configured, reload state is per instance")
		}
		return NewMemoryStore(), nil
	}
}
