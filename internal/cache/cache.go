// Package cache provides the short-lived key/value store placed in front of
// upstream market data lookups. Entries expire lazily; there is no
// invalidation API.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a key/value store with per-entry TTL. A missing or expired key
// reports ok == false. Concurrent writers follow last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes v and stores it under key for ttl.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s for cache: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}
