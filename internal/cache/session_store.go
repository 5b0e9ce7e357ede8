package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/examify/examify-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// SessionStore tracks live login sessions by JWT ID so tokens can be revoked
// before they expire.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Save registers a session for ttl.
func (s *SessionStore) Save(ctx context.Context, userID, jti string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, config.CacheKey.UserSessionKey(userID, jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Exists reports whether the session is still live.
func (s *SessionStore) Exists(ctx context.Context, userID, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.UserSessionKey(userID, jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n == 1, nil
}

// Delete revokes a session.
func (s *SessionStore) Delete(ctx context.Context, userID, jti string) error {
	return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(userID, jti)).Err()
}
