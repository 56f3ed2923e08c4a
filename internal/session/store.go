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

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store maps opaque session IDs to user IDs.
type Store interface {
	Create(ctx context.Context, userID int) (string, error)
	Get(ctx context.Context, sessionID string) (int, error)
	Destroy(ctx context.Context, sessionID string) error
}

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis with a TTL. Session IDs are random
// UUIDs; the stored value is just the user ID.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Create registers a new session for userID and returns its ID.
func (s *RedisStore) Create(ctx context.Context, userID int) (string, error) {
	sessionID := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+sessionID, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sessionID, nil
}

// Get resolves a session ID to its user ID and refreshes the TTL.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (int, error) {
	value, err := s.client.GetEx(ctx, keyPrefix+sessionID, s.ttl).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return userID, nil
}

// Destroy removes a session. Destroying an unknown session is not an
// error.
func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
