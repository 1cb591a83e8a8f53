// Package session provides the gateway's server-side browsing-session
// state: a redis-backed per-session key-value store and the registry of
// session-scoped state containers.
package session

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/browser"

	"github.com/redis/go-redis/v9"
)

// Store keeps per-session values in redis with a session TTL, giving the
// gateway the sessionStorage semantics the browser would otherwise hold.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Session returns the storage scoped to one session id.
func (s *Store) Session(sessionID string) browser.Storage {
	return &sessionStorage{store: s, sessionID: sessionID}
}

// PlatformCookie returns the platform session credential bound to the
// session, or "" for anonymous sessions.
func (s *Store) PlatformCookie(ctx context.Context, sessionID string) (string, error) {
	return s.Session(sessionID).Get(ctx, platformCookieKey)
}

// BindPlatformCookie stores the platform session credential for the
// session, binding future platform calls to the authenticated user.
func (s *Store) BindPlatformCookie(ctx context.Context, sessionID, cookie string) error {
	return s.Session(sessionID).Set(ctx, platformCookieKey, cookie)
}

// UnbindPlatformCookie drops the platform credential, returning the
// session to anonymous.
func (s *Store) UnbindPlatformCookie(ctx context.Context, sessionID string) error {
	return s.Session(sessionID).Delete(ctx, platformCookieKey)
}

type sessionStorage struct {
	store     *Store
	sessionID string
}

func (s *sessionStorage) key(key string) string {
	return fmt.Sprintf("session:%s:%s", s.sessionID, key)
}

func (s *sessionStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.store.rdb.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session value: %w", err)
	}
	return value, nil
}

func (s *sessionStorage) Set(ctx context.Context, key, value string) error {
	if err := s.store.rdb.Set(ctx, s.key(key), value, s.store.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session value: %w", err)
	}
	return nil
}

func (s *sessionStorage) Delete(ctx context.Context, key string) error {
	if err := s.store.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete session value: %w", err)
	}
	return nil
}
