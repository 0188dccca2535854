package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
)

// ListFilter narrows ListRecent.
type ListFilter struct {
	// DocumentID restricts results to one deck when non-nil.
	DocumentID *uuid.UUID
}

// ConversationStore persists conversation records.
//
// Turns are append-only. Nothing in this interface mutates or deletes a
// turn once written.
type ConversationStore interface {
	// Create inserts a new record. Returns ErrDuplicate if the ID exists.
	Create(ctx context.Context, record *domain.ConversationRecord) error

	// AppendTurns adds turns to the end of a record's transcript.
	// Returns ErrConversationNotFound if the record does not exist.
	AppendTurns(ctx context.Context, id uuid.UUID, turns []domain.Turn) error

	// Finalize sets the terminal status, timing, summary, and merges
	// metadata into the record.
	// Returns ErrConversationNotFound if the record does not exist.
	Finalize(ctx context.Context, id uuid.UUID, fin domain.Finalization) error

	// GetByID retrieves a single record with its full transcript.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ConversationRecord, error)

	// ListRecent returns at most limit records for userID, newest first.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int, filter ListFilter) ([]domain.ConversationRecord, error)

	// WithTx returns a ConversationStore bound to tx.
	WithTx(tx *sql.Tx) ConversationStore
}
