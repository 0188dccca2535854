package domain

import (
	"testing"

	"github.com/google/uuid"
)

func testDeck(t *testing.T, n int) []FlashcardCard {
	t.Helper()
	cards := make([]FlashcardCard, 0, n)
	for i := 0; i < n; i++ {
		c, err := NewFlashcardCard(uuid.New(), i, "question", "answer")
		if err != nil {
			t.Fatalf("failed to build card: %v", err)
		}
		cards = append(cards, *c)
	}
	return cards
}

func TestNewLearningSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := testDeck(t, 3)

	s, err := NewLearningSession(userID, uuid.New(), ModeStudy, deck)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if s.Status != SessionNotStarted {
		t.Errorf("Expected status %s, got %s", SessionNotStarted, s.Status)
	}
	if s.Hints != DefaultSessionHints() {
		t.Errorf("Expected default hints, got %+v", s.Hints)
	}

	// The session owns its own copy of the deck.
	deck[0].Front = "mutated"
	if s.Cards[0].Front == "mutated" {
		t.Error("Expected session deck to be independent of caller slice")
	}

	if _, err := NewLearningSession(uuid.Nil, uuid.New(), ModeStudy, deck); err != ErrUserIDEmpty {
		t.Errorf("Expected %v, got %v", ErrUserIDEmpty, err)
	}
	if _, err := NewLearningSession(userID, uuid.New(), SessionMode("quiz"), deck); err != ErrInvalidMode {
		t.Errorf("Expected %v, got %v", ErrInvalidMode, err)
	}

	bad := []FlashcardCard{{ID: uuid.New(), Front: "q"}}
	if _, err := NewLearningSession(userID, uuid.New(), ModeTest, bad); err != ErrCardBackEmpty {
		t.Errorf("Expected %v, got %v", ErrCardBackEmpty, err)
	}
}

func TestLearningSessionCursor(t *testing.T) {
	t.Parallel()
	s, err := NewLearningSession(uuid.New(), uuid.Nil, ModeTeach, testDeck(t, 2))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if c := s.CurrentCard(); c == nil || c.ID != s.Cards[0].ID {
		t.Fatal("Expected first card at index 0")
	}

	s.CurrentIndex = 2
	if s.CurrentCard() != nil {
		t.Error("Expected nil card past the end of the deck")
	}
	if !s.IsExhausted() {
		t.Error("Expected session to be exhausted")
	}
}

func TestLearningSessionAccuracy(t *testing.T) {
	t.Parallel()
	s, err := NewLearningSession(uuid.New(), uuid.Nil, ModeTest, testDeck(t, 3))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	s.CurrentIndex = 3
	s.CorrectCount = 2
	s.IncorrectCount = 1

	if got := s.AccuracyPercent(); got != 66 {
		t.Errorf("Expected accuracy 66, got %d", got)
	}

	p := s.Progress()
	if p.TotalCards != 3 || p.Answered() != 3 || p.CurrentIndex != 3 {
		t.Errorf("Unexpected progress %+v", p)
	}

	empty := &LearningSession{}
	if empty.AccuracyPercent() != 0 {
		t.Error("Expected zero accuracy for empty deck")
	}
}
