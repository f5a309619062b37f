// Package session persists the client session: access token, refresh token
// and the cached user record. Callers never see storage failures; a driver
// error is logged and reported as an absent value.
package session

import (
	"context"
	"log/slog"
	"time"
)

const (
	KeyToken        = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user_data"
)

// Keys lists every key the session owns. They are always cleared together.
var Keys = []string{KeyToken, KeyRefreshToken, KeyUser}

// Store is the synchronous key-value contract used by the rest of the client.
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string)
	Remove(key string)
}

// Driver is a fallible storage backend. Implementations serialize their own
// writes so concurrent callers resolve as last write wins.
type Driver interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const defaultOpTimeout = 5 * time.Second

// DriverStore adapts a Driver to the infallible Store contract.
type DriverStore struct {
	driver  Driver
	timeout time.Duration
	log     *slog.Logger
}

var _ Store = (*DriverStore)(nil)

func NewStore(driver Driver) *DriverStore {
	return &DriverStore{
		driver:  driver,
		timeout: defaultOpTimeout,
		log:     slog.Default().With("component", "session_store"),
	}
}

func (s *DriverStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	value, ok, err := s.driver.Load(ctx, key)
	if err != nil {
		s.log.Warn("session read failed", "key", key, "error", err)
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func (s *DriverStore) Set(key string, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.driver.Save(ctx, key, value); err != nil {
		s.log.Error("session write failed", "key", key, "error", err)
	}
}

func (s *DriverStore) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.driver.Delete(ctx, key); err != nil {
		s.log.Error("session delete failed", "key", key, "error", err)
	}
}

func (s *DriverStore) Close() error {
	return s.driver.Close()
}
