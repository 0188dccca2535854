package api

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
)

// CardPayload is one caller-supplied flashcard.
type CardPayload struct {
	// ID is optional; a fresh one is assigned when absent.
	ID         *uuid.UUID `json:"id,omitempty"`
	Front      string     `json:"front"                validate:"required,max=2000"`
	Back       string     `json:"back"                 validate:"required,max=2000"`
	Hint       string     `json:"hint,omitempty"       validate:"max=1000"`
	Type       string     `json:"type,omitempty"       validate:"max=64"`
	Difficulty string     `json:"difficulty,omitempty" validate:"max=64"`
	Subject    string     `json:"subject,omitempty"    validate:"max=128"`
}

// StartSessionPayload is the body of POST /api/sessions.
type StartSessionPayload struct {
	DocumentID uuid.UUID     `json:"document_id"`
	Mode       string        `json:"mode,omitempty"  validate:"omitempty,oneof=study test teach"`
	Cards      []CardPayload `json:"cards,omitempty" validate:"max=500,dive"`
}

// TurnPayload is the body of POST /api/sessions/{id}/turns.
type TurnPayload struct {
	// Utterance may be empty; the tutor answers with a reprompt.
	Utterance string `json:"utterance" validate:"max=4000"`
}

// toCards converts the payload deck to domain cards in order.
func (p StartSessionPayload) toCards() ([]domain.FlashcardCard, error) {
	cards := make([]domain.FlashcardCard, 0, len(p.Cards))
	for i, in := range p.Cards {
		card, err := domain.NewFlashcardCard(p.DocumentID, i, in.Front, in.Back)
		if err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", domain.ErrValidation, i, err)
		}
		if in.ID != nil && *in.ID != uuid.Nil {
			card.ID = *in.ID
		}
		card.Hint = in.Hint
		card.Type = in.Type
		card.Difficulty = in.Difficulty
		card.Subject = in.Subject
		cards = append(cards, *card)
	}
	return cards, nil
}
