package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultIdleTTL bounds how long an untouched session survives in
// Redis. Each Get refreshes the clock, approximating browser-session
// lifetime for active users.
const DefaultIdleTTL = 24 * time.Hour

const keyPrefix = "session:%s"

// RedisStore keeps sessions in Redis so they survive process restarts
// and are shared across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Redis-backed session store with the default idle TTL.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: DefaultIdleTTL}
}

func key(id string) string {
	return fmt.Sprintf(keyPrefix, id)
}

func (s *RedisStore) Create(ctx context.Context, userID uint) (string, error) {
	id := uuid.New().String()
	if err := s.client.Set(ctx, key(id), strconv.FormatUint(uint64(userID), 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (uint, error) {
	val, err := s.client.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, ErrNotFound
	}

	// Sliding expiry: active sessions stay alive.
	s.client.Expire(ctx, key(id), s.ttl)

	return uint(userID), nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
