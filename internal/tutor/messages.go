package tutor

import (
	"fmt"
	"strings"

	"github.com/phrazzld/scry-tutor/internal/domain"
)

const (
	msgNotUnderstood = "Sorry, I didn't catch that. Could you say it one more time?"
	msgEnding        = "Okay, let's stop here. Thanks for studying with me!"
	msgEmptyDeck     = "There are no cards in this deck yet, so we're all done for now."
)

// promptText renders the question for the card at the session cursor.
func promptText(s *domain.LearningSession) string {
	card := s.CurrentCard()
	if card == nil {
		return ""
	}
	return fmt.Sprintf("Question %d of %d: %s", s.CurrentIndex+1, len(s.Cards), card.Front)
}

// hintText returns the card's authored hint, or a generic one built from
// the expected answer.
func hintText(card *domain.FlashcardCard) string {
	if h := strings.TrimSpace(card.Hint); h != "" {
		return "Here's a hint: " + h
	}
	words := strings.Fields(card.Back)
	if len(words) == 0 {
		return "Here's a hint: think about the key idea in the question."
	}
	return fmt.Sprintf("Here's a hint: the answer has %d words and starts with %q.",
		len(words), strings.Trim(words[0], ".,;:!?"))
}

// CompletionSummary is spoken when the deck is exhausted and stored as the
// conversation record summary.
func CompletionSummary(s *domain.LearningSession) string {
	if len(s.Cards) == 0 {
		return msgEmptyDeck
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session complete! You got %d out of %d correct", s.CorrectCount, len(s.Cards))
	if s.PartialCount > 0 {
		fmt.Fprintf(&b, ", %d partially correct", s.PartialCount)
	}
	fmt.Fprintf(&b, " and %d incorrect. Your accuracy was %d%%.", s.IncorrectCount, s.AccuracyPercent())
	return b.String()
}

// EndedSummary is stored as the record summary when the learner stops
// before the deck is exhausted.
func EndedSummary(s *domain.LearningSession) string {
	return fmt.Sprintf("Session ended after %d of %d cards: %d correct, %d partially correct and %d incorrect.",
		s.Progress().Answered(), len(s.Cards), s.CorrectCount, s.PartialCount, s.IncorrectCount)
}

// Farewell is spoken when the caller ends the session explicitly.
func Farewell(s *domain.LearningSession) string {
	if s.Status == domain.SessionCompleted {
		return CompletionSummary(s)
	}
	return msgEnding
}
