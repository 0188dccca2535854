package tutor

import (
	"strings"

	"github.com/phrazzld/scry-tutor/internal/lexicon"
)

// TurnKind tags what an utterance was classified as.
type TurnKind string

const (
	// TurnEmpty is blank or whitespace-only input.
	TurnEmpty TurnKind = "empty"
	// TurnNavigation is a control command such as repeat or next.
	TurnNavigation TurnKind = "navigation"
	// TurnAnswer is anything else; it is scored against the current card.
	TurnAnswer TurnKind = "answer"
)

// Turn is an utterance after ingress classification. Intent is set only
// for TurnNavigation.
type Turn struct {
	Kind   TurnKind       `json:"kind"`
	Intent lexicon.Intent `json:"intent,omitempty"`
	Text   string         `json:"text"`
}

// Classify decides once, at ingress, whether an utterance is navigation or
// an answer. Navigation phrases are matched as whole words in lexicon order.
func Classify(lex *lexicon.Lexicon, utterance string) Turn {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return Turn{Kind: TurnEmpty}
	}

	if intent, ok := lex.MatchIntent(strings.ToLower(text)); ok {
		return Turn{Kind: TurnNavigation, Intent: intent, Text: text}
	}
	return Turn{Kind: TurnAnswer, Text: text}
}
