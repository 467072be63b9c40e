package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps entries as JSON values under "page:<hash>" keys. When a
// max age is set, keys expire on their own and Prune has nothing to do.
type RedisStore struct {
	client *redis.Client
	maxAge time.Duration
}

func NewRedisStore(ctx context.Context, addr string, maxAge time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &RedisStore{client: client, maxAge: maxAge}, nil
}

func (s *RedisStore) Key(urlHash string) string {
	return "page:" + urlHash
}

func (s *RedisStore) Load(ctx context.Context, urlHash string) (*Entry, error) {
	data, err := s.client.Get(ctx, s.Key(urlHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", s.Key(urlHash), err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode key %s: %w", s.Key(urlHash), err)
	}
	return &entry, nil
}

func (s *RedisStore) Save(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", entry.URLHash, err)
	}

	// A zero expiration keeps the key forever.
	if err := s.client.Set(ctx, s.Key(entry.URLHash), data, s.maxAge).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", s.Key(entry.URLHash), err)
	}
	return nil
}

func (s *RedisStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
