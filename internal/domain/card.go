package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDocumentIDEmpty is returned when a card's document ID is nil.
	ErrCardDocumentIDEmpty = errors.New("card document ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card has no prompt text.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card has no expected answer.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// FlashcardCard is a single question/answer pair derived from a document.
// Cards are immutable once generated; the tutor only reads them.
type FlashcardCard struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Position   int       `json:"position"`
	Front      string    `json:"front"`
	Back       string    `json:"back"`
	Hint       string    `json:"hint,omitempty"`
	Type       string    `json:"type,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewFlashcardCard creates a card for the given document with a fresh ID.
// Returns an error if validation fails.
func NewFlashcardCard(documentID uuid.UUID, position int, front, back string) (*FlashcardCard, error) {
	card := &FlashcardCard{
		ID:         uuid.New(),
		DocumentID: documentID,
		Position:   position,
		Front:      front,
		Back:       back,
		CreatedAt:  time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the FlashcardCard has valid data.
// The document ID is optional so that ad-hoc decks supplied by a caller
// can be studied without being persisted first.
func (c *FlashcardCard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	return nil
}
