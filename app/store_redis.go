package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ StateStore = (*RedisStore)(nil)

// RedisStore implements StateStore on a Redis server
type RedisStore struct {
	cli *redis.Client
}

// NewRedisStore connects to Redis and checks the connection with a ping
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := cli.Ping(context.Background()).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{cli: cli}, nil
}

// Get retrieves the state stored under key
func (s *RedisStore) Get(ctx context.Context, key string) (ReloadState, bool, error) {
	raw, err := s.cli.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ReloadState{}, false, nil
		}
		return ReloadState{}, false, fmt.Errorf("redis get: %w", err)
	}

	var state ReloadState
	if err := json.Unmarshal(raw, &state); err != nil {
		return ReloadState{}, false, fmt.Errorf("unmarshaling state: %w", err)
	}
	return state, true, nil
}

// Set stores state under key for StateTTL
func (s *RedisStore) Set(ctx context.Context, key string, state ReloadState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := s.cli.Set(ctx, key, raw, StateTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the connection
func (s *RedisStore) Close() error {
	return s.cli.Close()
}
