package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewFlashcardCard(t *testing.T) {
	t.Parallel()
	documentID := uuid.New()

	card, err := NewFlashcardCard(documentID, 2, "What is Go?", "A programming language")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if card.DocumentID != documentID {
		t.Errorf("Expected document ID %s, got %s", documentID, card.DocumentID)
	}

	if card.Position != 2 {
		t.Errorf("Expected position 2, got %d", card.Position)
	}

	if card.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	_, err = NewFlashcardCard(documentID, 0, "   ", "answer")
	if err != ErrCardFrontEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardFrontEmpty, err)
	}

	_, err = NewFlashcardCard(documentID, 0, "question", "")
	if err != ErrCardBackEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardBackEmpty, err)
	}
}

func TestFlashcardCardValidate(t *testing.T) {
	t.Parallel()

	card := FlashcardCard{Front: "front", Back: "back"}
	if err := card.Validate(); err != ErrCardIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardIDEmpty, err)
	}

	// Ad-hoc decks are allowed to omit the document ID.
	card.ID = uuid.New()
	if err := card.Validate(); err != nil {
		t.Errorf("Expected no error for card without document, got %v", err)
	}
}
