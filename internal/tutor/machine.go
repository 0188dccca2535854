// Package tutor drives a single flashcard session turn by turn.
//
// A [Machine] is stateless; all progress lives on the [domain.LearningSession]
// passed to [Machine.Process], which the caller must not share between
// concurrent writers.
package tutor

import (
	"strings"

	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/domain/grading"
	"github.com/phrazzld/scry-tutor/internal/lexicon"
)

// Directive is an instruction to the voice layer accompanying a response.
type Directive string

const (
	DirectiveNone       Directive = "none"
	DirectiveEndSession Directive = "end_session"
	DirectiveShowHint   Directive = "show_hint"
	DirectiveShowAnswer Directive = "show_answer"
)

// Tally is the per-turn change to the session counters. At most one field
// is 1; the running totals live on the session.
type Tally struct {
	Correct   int `json:"correct"`
	Partial   int `json:"partial"`
	Incorrect int `json:"incorrect"`
}

// Outcome is everything produced by one call to Process.
type Outcome struct {
	ResponseText string          `json:"response_text"`
	Progress     domain.Progress `json:"progress"`
	Directive    Directive       `json:"directive"`
	Turn         Turn            `json:"turn"`
	Tally        Tally           `json:"tally"`

	// Evaluation is set when the utterance was scored as an answer.
	Evaluation *grading.Result `json:"evaluation,omitempty"`
	// Completed is true only on the turn that exhausted the deck.
	Completed bool `json:"completed"`
}

// Machine applies utterances to sessions.
type Machine struct {
	lex       *lexicon.Lexicon
	evaluator grading.Evaluator
}

// NewMachine creates a Machine. It panics if evaluator is nil; a nil
// lexicon falls back to the built-in English tables.
func NewMachine(lex *lexicon.Lexicon, evaluator grading.Evaluator) *Machine {
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Machine{lex: lex, evaluator: evaluator}
}

// Classify exposes ingress classification with the machine's lexicon.
func (m *Machine) Classify(utterance string) Turn {
	return Classify(m.lex, utterance)
}

// Process applies one learner utterance to s and returns the tutor's reply.
func (m *Machine) Process(s *domain.LearningSession, utterance string) Outcome {
	turn := m.Classify(utterance)
	out := m.step(s, turn)
	out.Turn = turn
	out.Progress = s.Progress()
	if out.Directive == "" {
		out.Directive = DirectiveNone
	}
	return out
}

func (m *Machine) step(s *domain.LearningSession, turn Turn) Outcome {
	if s.Status == domain.SessionCompleted {
		return Outcome{ResponseText: CompletionSummary(s), Directive: DirectiveEndSession}
	}

	if turn.Kind == TurnEmpty {
		return Outcome{ResponseText: msgNotUnderstood}
	}

	if turn.Kind == TurnNavigation {
		switch turn.Intent {
		case lexicon.IntentEnd:
			return Outcome{ResponseText: msgEnding, Directive: DirectiveEndSession}
		case lexicon.IntentHelp:
			return Outcome{ResponseText: m.helpText(s)}
		}
	}

	// Anything else before the first card, or with the cursor off the deck,
	// starts the deck from the top.
	if s.Status == domain.SessionNotStarted || s.CurrentCard() == nil {
		return m.start(s)
	}

	if turn.Kind == TurnNavigation {
		switch turn.Intent {
		case lexicon.IntentRepeat:
			return Outcome{ResponseText: promptText(s)}
		case lexicon.IntentNext:
			return m.advance(s, "Okay, skipping that one.")
		case lexicon.IntentHint:
			return Outcome{ResponseText: hintText(s.CurrentCard()), Directive: DirectiveShowHint}
		}
	}

	return m.answer(s, turn)
}

// start moves s to InProgress at the first card. The counters are reset so
// the tallies never exceed the cursor.
func (m *Machine) start(s *domain.LearningSession) Outcome {
	s.Status = domain.SessionInProgress
	s.CurrentIndex = 0
	s.CorrectCount, s.PartialCount, s.IncorrectCount = 0, 0, 0

	if len(s.Cards) == 0 {
		s.Status = domain.SessionCompleted
		return Outcome{ResponseText: CompletionSummary(s), Directive: DirectiveEndSession, Completed: true}
	}
	return Outcome{ResponseText: "Let's begin. " + promptText(s)}
}

func (m *Machine) answer(s *domain.LearningSession, turn Turn) Outcome {
	card := s.CurrentCard()
	res := m.evaluator.Evaluate(turn.Text, card.Back)

	var tally Tally
	directive := DirectiveShowAnswer
	switch res.Tier {
	case grading.TierCorrect:
		s.CorrectCount++
		tally.Correct = 1
		directive = DirectiveNone
	case grading.TierPartial:
		s.PartialCount++
		tally.Partial = 1
	default:
		s.IncorrectCount++
		tally.Incorrect = 1
	}

	out := m.advance(s, res.Feedback)
	out.Tally = tally
	out.Evaluation = &res
	if !out.Completed {
		out.Directive = directive
	}
	return out
}

// advance moves the cursor forward one card, prefixing lead to the next
// prompt or to the completion summary.
func (m *Machine) advance(s *domain.LearningSession, lead string) Outcome {
	s.CurrentIndex++
	if s.IsExhausted() {
		s.Status = domain.SessionCompleted
		return Outcome{
			ResponseText: join(lead, CompletionSummary(s)),
			Directive:    DirectiveEndSession,
			Completed:    true,
		}
	}
	return Outcome{ResponseText: join(lead, "Next up. "+promptText(s))}
}

func (m *Machine) helpText(s *domain.LearningSession) string {
	help := m.lex.HelpPhrases()
	if s.Status == domain.SessionNotStarted {
		return help + " Say anything when you're ready to begin."
	}
	return help
}

func join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
