package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeTurnRecorded       = "tutor.turn.recorded"
	TypeConversationClosed = "tutor.conversation.closed"
)

// Event is one mirrored occurrence inside a tutoring session.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	SessionID uuid.UUID       `json:"session_id"`
	RecordID  uuid.UUID       `json:"record_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Subject identifies who and what an event is about.
type Subject struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	RecordID  uuid.UUID
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event of eventType with payload serialized as JSON.
func NewEvent(eventType string, subject Subject, payload any) (*Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    subject.UserID,
		SessionID: subject.SessionID,
		RecordID:  subject.RecordID,
		Payload:   b,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler consumes emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter publishes events without knowing who handles them.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
