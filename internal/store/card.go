package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
)

// CardStore supplies flashcard decks.
type CardStore interface {
	// ListByDocument returns the cards of a document ordered by position.
	// An unknown document yields an empty slice, not an error.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.FlashcardCard, error)

	// CreateMultiple saves cards in one statement batch. Run it inside
	// RunInTransaction via WithTx when the batch must be atomic.
	//
	// Every card must pass domain validation and carry a DocumentID.
	CreateMultiple(ctx context.Context, cards []domain.FlashcardCard) error

	// WithTx returns a CardStore bound to tx.
	WithTx(tx *sql.Tx) CardStore
}
