// Package session implements server-tracked login sessions with
// pluggable backing stores.
package session

import (
	"context"
	"errors"

	"carelog/internal/config"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when the session id is unknown,
// expired, or has been destroyed.
var ErrNotFound = errors.New("session not found")

// Store tracks the association between a session id and a user id.
// A session lives until Destroy or, for the redis backend, until its
// idle TTL lapses. There is no refresh or multi-device invalidation.
type Store interface {
	// Create establishes a new session bound to userID and returns its id.
	Create(ctx context.Context, userID uint) (string, error)
	// Get resolves a session id to the bound user id.
	Get(ctx context.Context, id string) (uint, error)
	// Destroy removes the session unconditionally. Destroying an
	// unknown id is not an error.
	Destroy(ctx context.Context, id string) error
}

// New selects a Store backend from configuration.
func New(cfg *config.Config, rdb *redis.Client) (Store, error) {
	switch cfg.SessionBackend {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("session backend 'redis' requires a reachable Redis instance")
		}
		return NewRedisStore(rdb), nil
	case "token":
		return NewTokenStore(cfg.SessionSecret), nil
	default:
		return nil, errors.New("unsupported session backend: " + cfg.SessionBackend)
	}
}
