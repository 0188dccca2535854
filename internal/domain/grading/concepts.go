package grading

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/phrazzld/scry-tutor/internal/lexicon"
)

// normalize lowercases and trims s.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsWholeWords reports whether inner occurs in outer on word
// boundaries.
func containsWholeWords(outer, inner string) bool {
	in := strings.Join(lexicon.Words(inner), " ")
	if in == "" {
		return false
	}
	return strings.Contains(" "+strings.Join(lexicon.Words(outer), " ")+" ", " "+in+" ")
}

// trimToken strips leading and trailing punctuation so "cell." and "cell"
// are the same concept. Inner punctuation (don't, hands-on) is kept.
func trimToken(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// extractConcepts returns up to params.MaxConcepts content words of the
// already-normalized text, in order of appearance.
func extractConcepts(normalized string, lex *lexicon.Lexicon, params *Params) []string {
	var concepts []string
	for _, raw := range strings.Fields(normalized) {
		tok := trimToken(raw)
		if len([]rune(tok)) < params.MinConceptLength {
			continue
		}
		if lex.IsStopWord(tok) {
			continue
		}
		concepts = append(concepts, tok)
		if len(concepts) == params.MaxConcepts {
			break
		}
	}
	return concepts
}

// conceptsMatch reports whether two concepts overlap: substring either way, a shared synonym
// group, or near-identical spelling.
func conceptsMatch(a, b string, lex *lexicon.Lexicon, params *Params) bool {
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if lex.AreSynonyms(a, b) {
		return true
	}
	if params.FuzzyThreshold > 0 && matchr.JaroWinkler(a, b, false) >= params.FuzzyThreshold {
		return true
	}
	return false
}

// matchRatio counts the expected concepts matched by at least one utterance
// concept, divided by the number of expected concepts. The caller must
// ensure expected is non-empty.
func matchRatio(expected, utterance []string, lex *lexicon.Lexicon, params *Params) float64 {
	matched := 0
	for _, e := range expected {
		for _, u := range utterance {
			if conceptsMatch(e, u, lex, params) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(expected))
}
