// Package dedup keeps short-lived replay keys for sender-provided message IDs
// in Redis.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LaughingJackalope/agentrouter/internal/config"
)

// releaseScript deletes the key only while it still holds the caller's value.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, cfg config.DedupConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

// Store reserves replay keys with SET NX.
type Store struct {
	rdb redis.Cmdable
}

// NewStore creates a Store on rdb.
func NewStore(rdb redis.Cmdable) *Store {
	return &Store{rdb: rdb}
}

// Reserve claims key for messageID for ttl. When the key is already held it
// returns the holder's message ID and reserved=false.
func (s *Store) Reserve(ctx context.Context, key, messageID string, ttl time.Duration) (string, bool, error) {
	// A second round covers a key that expires between SET NX and GET.
	for range 2 {
		ok, err := s.rdb.SetNX(ctx, key, messageID, ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("reserve %s: %w", key, err)
		}
		if ok {
			return "", true, nil
		}

		existing, err := s.rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("read %s: %w", key, err)
		}
		return existing, false, nil
	}
	return "", false, fmt.Errorf("reserve %s: key kept expiring", key)
}

// Release drops key if it is still held by messageID.
func (s *Store) Release(ctx context.Context, key, messageID string) error {
	if err := releaseScript.Run(ctx, s.rdb, []string{key}, messageID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
