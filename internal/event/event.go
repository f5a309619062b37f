package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSessionStarted Type = "session.started"
	TypeSessionEnded   Type = "session.ended"
	TypeSessionExpired Type = "session.expired"
	TypeUserUpdated    Type = "user.updated"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
}

// New stamps an event with an id and the current time.
func New(t Type, userID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		UserID:    userID,
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
