package session

import (
	"encoding/json"
	"log/slog"

	"go-auth-dashboard/internal/model"
)

// Session reads and writes the three session keys as a unit on top of a Store.
type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

func (s *Session) Token() (string, bool) {
	return s.store.Get(KeyToken)
}

func (s *Session) RefreshToken() (string, bool) {
	return s.store.Get(KeyRefreshToken)
}

// User decodes the cached user. A corrupt record reads as no user.
func (s *Session) User() (*model.User, bool) {
	raw, ok := s.store.Get(KeyUser)
	if !ok {
		return nil, false
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		slog.Warn("cached user record is unreadable", "error", err)
		return nil, false
	}
	return &user, true
}

// IsAuthenticated reports whether an access token is stored.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

func (s *Session) Save(auth model.AuthResponse) {
	s.store.Set(KeyToken, auth.Token)
	s.store.Set(KeyRefreshToken, auth.RefreshToken)
	s.SetUser(auth.User)
}

func (s *Session) SetToken(token string) {
	s.store.Set(KeyToken, token)
}

func (s *Session) SetUser(user model.User) {
	data, err := json.Marshal(user)
	if err != nil {
		slog.Error("encode user record", "error", err)
		return
	}
	s.store.Set(KeyUser, string(data))
}

func (s *Session) Clear() {
	for _, key := range Keys {
		s.store.Remove(key)
	}
}
