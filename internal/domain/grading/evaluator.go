// Package grading scores spoken answers against a flashcard's expected
// answer.
//
// The default [HeuristicEvaluator] uses concept overlap rather than semantic
// similarity: it pulls the first few content words out of both strings and
// counts how many expected concepts the learner mentioned. The [Evaluator]
// interface lets a different scorer be swapped in without touching the
// session state machine.
package grading

import (
	"fmt"
	"strings"

	"github.com/phrazzld/scry-tutor/internal/lexicon"
)

// Tier is the three-way correctness classification of an answer.
type Tier string

const (
	TierCorrect   Tier = "correct"
	TierPartial   Tier = "partial"
	TierIncorrect Tier = "incorrect"
)

// Result is the outcome of scoring one utterance.
type Result struct {
	Tier       Tier    `json:"tier"`
	MatchRatio float64 `json:"match_ratio"`
	Exact      bool    `json:"exact"`
	Feedback   string  `json:"feedback"`
}

// Evaluator scores a free-text utterance against an expected answer.
type Evaluator interface {
	Evaluate(utterance, expectedAnswer string) Result
}

// HeuristicEvaluator is the concept-matching Evaluator.
type HeuristicEvaluator struct {
	lex    *lexicon.Lexicon
	params *Params
}

var _ Evaluator = (*HeuristicEvaluator)(nil)

// NewHeuristicEvaluator creates an evaluator over the given lexicon and
// parameters. Nil arguments fall back to the defaults.
func NewHeuristicEvaluator(lex *lexicon.Lexicon, params *Params) *HeuristicEvaluator {
	if lex == nil {
		lex = lexicon.Default()
	}
	if params == nil {
		params = NewDefaultParams()
	}
	return &HeuristicEvaluator{lex: lex, params: params}
}

// Evaluate implements Evaluator.
func (e *HeuristicEvaluator) Evaluate(utterance, expectedAnswer string) Result {
	u := normalize(utterance)
	x := normalize(expectedAnswer)

	if u == "" {
		return e.result(TierIncorrect, 0, false, expectedAnswer)
	}

	if x != "" && strings.Contains(u, x) {
		return e.result(TierCorrect, 1, true, expectedAnswer)
	}
	if x != "" && e.isFragment(u, x) {
		return e.result(TierCorrect, 1, true, expectedAnswer)
	}

	expectedConcepts := extractConcepts(x, e.lex, e.params)
	if len(expectedConcepts) == 0 {
		// Nothing to overlap on; only the exact check above can pass.
		return e.result(TierIncorrect, 0, false, expectedAnswer)
	}

	ratio := matchRatio(expectedConcepts, extractConcepts(u, e.lex, e.params), e.lex, e.params)
	return e.result(e.tierFor(ratio), ratio, false, expectedAnswer)
}

// isFragment reports whether u is a whole-word slice of x carrying at least
// MinFragmentConcepts content words. Bare stop words such as "a" or "the"
// fall through to concept matching.
func (e *HeuristicEvaluator) isFragment(u, x string) bool {
	if !containsWholeWords(x, u) {
		return false
	}
	need := min(e.params.MinFragmentConcepts, e.params.MaxConcepts)
	return len(extractConcepts(u, e.lex, e.params)) >= need
}

// tierFor maps a match ratio to a tier.
func (e *HeuristicEvaluator) tierFor(ratio float64) Tier {
	switch {
	case ratio > e.params.CorrectThreshold:
		return TierCorrect
	case ratio > e.params.PartialThreshold:
		return TierPartial
	default:
		return TierIncorrect
	}
}

func (e *HeuristicEvaluator) result(tier Tier, ratio float64, exact bool, expected string) Result {
	return Result{
		Tier:       tier,
		MatchRatio: ratio,
		Exact:      exact,
		Feedback:   Feedback(tier, expected),
	}
}

// Feedback returns the spoken feedback for a tier. Every tier repeats the
// expected answer so the learner hears it once more.
func Feedback(tier Tier, expected string) string {
	answer := strings.TrimSpace(expected)
	switch tier {
	case TierCorrect:
		return fmt.Sprintf("Excellent! That's right. %s", answer)
	case TierPartial:
		return fmt.Sprintf("You're on the right track. The full answer is: %s", answer)
	default:
		return fmt.Sprintf("Not quite, and that's okay. The answer is: %s", answer)
	}
}
