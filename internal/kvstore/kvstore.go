// Package kvstore is a thin redis wrapper giving the importer the two
// primitives that do not survive as in-process mutable state across a
// multi-instance deployment: a single-holder slot with TTL and TTL'd JSON
// values.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Acquire takes the slot at key for token if nobody holds it. The TTL
// guarantees a crashed holder eventually frees the slot.
func (s *Store) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire slot %s: %w", key, err)
	}
	return ok, nil
}

// Release frees the slot only if token still holds it, so a slow previous
// holder cannot release a slot re-acquired by someone else.
func (s *Store) Release(ctx context.Context, key, token string) error {
	const script = `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`
	if err := s.client.Eval(ctx, script, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release slot %s: %w", key, err)
	}
	return nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// GetJSON unmarshals key into dest. Returns false when the key is absent
// or expired.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}
