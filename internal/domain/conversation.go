package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ConversationStatus is the trailing status of a ConversationRecord.
type ConversationStatus string

const (
	ConversationInProgress ConversationStatus = "in_progress"
	ConversationCompleted  ConversationStatus = "completed"
	ConversationEnded      ConversationStatus = "ended"
)

// IsValid reports whether s is a known status.
func (s ConversationStatus) IsValid() bool {
	switch s {
	case ConversationInProgress, ConversationCompleted, ConversationEnded:
		return true
	default:
		return false
	}
}

// TurnRole identifies who produced a turn.
type TurnRole string

const (
	RoleLearner TurnRole = "learner"
	RoleTutor   TurnRole = "tutor"
	RoleSystem  TurnRole = "system"
)

// IsValid reports whether r is a known role.
func (r TurnRole) IsValid() bool {
	switch r {
	case RoleLearner, RoleTutor, RoleSystem:
		return true
	default:
		return false
	}
}

// MetadataAccuracy is the record metadata key holding the session accuracy
// percentage.
const MetadataAccuracy = "accuracy"

// Turn is one utterance in a conversation transcript.
type Turn struct {
	Role      TurnRole       `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewTurn creates a turn stamped with the current UTC time.
func NewTurn(role TurnRole, content string, metadata map[string]any) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// ConversationRecord is the durable, append-only transcript of one call.
type ConversationRecord struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	DocumentID uuid.UUID          `json:"document_id,omitempty"`
	SessionID  uuid.UUID          `json:"session_id,omitempty"`
	Mode       SessionMode        `json:"mode"`
	Status     ConversationStatus `json:"status"`
	DurationMS *int64             `json:"duration_ms,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	EndTime    *time.Time         `json:"end_time,omitempty"`
	Summary    string             `json:"summary,omitempty"`
	Turns      []Turn             `json:"turns"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
}

// NewConversationRecord opens an in-progress record for a session.
func NewConversationRecord(userID, documentID, sessionID uuid.UUID, mode SessionMode) (*ConversationRecord, error) {
	rec := &ConversationRecord{
		ID:         uuid.New(),
		UserID:     userID,
		DocumentID: documentID,
		SessionID:  sessionID,
		Mode:       mode,
		Status:     ConversationInProgress,
		CreatedAt:  time.Now().UTC(),
		Turns:      []Turn{},
		Metadata:   map[string]any{},
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks if the record has valid data.
func (r *ConversationRecord) Validate() error {
	if r.ID == uuid.Nil {
		return errors.Join(ErrValidation, ErrInvalidID)
	}
	if r.UserID == uuid.Nil {
		return ErrUserIDEmpty
	}
	if !r.Mode.IsValid() {
		return ErrInvalidMode
	}
	if !r.Status.IsValid() {
		return ErrInvalidConversationStatus
	}
	for _, t := range r.Turns {
		if !t.Role.IsValid() {
			return ErrInvalidRole
		}
	}
	return nil
}

// Accuracy returns the accuracy metadata as a float. Records written by
// other producers may carry it as any JSON number, so every numeric kind
// is accepted. ok is false when the field is absent or not numeric.
func (r *ConversationRecord) Accuracy() (float64, bool) {
	if r.Metadata == nil {
		return 0, false
	}
	switch v := r.Metadata[MetadataAccuracy].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}

// Finalization carries the trailing fields written when a call ends.
type Finalization struct {
	Status     ConversationStatus
	EndTime    time.Time
	DurationMS int64
	Summary    string
	Metadata   map[string]any
}
