// Package lexicon holds the phrase and keyword tables the tutor matches
// utterances and transcripts against: navigation phrases, stop words,
// learning-style keywords, pattern trigger phrases and answer synonyms.
//
// The tables are plain data so they can be tuned or localized from a YAML
// file without touching control flow. [Default] returns the built-in English
// tables; [LoadFile] and [LoadFromReader] read an override.
package lexicon

import (
	"strings"
	"unicode"

	"github.com/phrazzld/scry-tutor/internal/domain"
)

// Intent is a navigation command recognized in an utterance.
type Intent string

const (
	IntentEnd    Intent = "end"
	IntentRepeat Intent = "repeat"
	IntentNext   Intent = "next"
	IntentHelp   Intent = "help"
	IntentHint   Intent = "hint"
)

// IntentPhrases binds an intent to the phrases that trigger it.
type IntentPhrases struct {
	Intent  Intent   `yaml:"intent" validate:"required,oneof=end repeat next help hint"`
	Phrases []string `yaml:"phrases" validate:"required,min=1,dive,required"`
}

// StyleKeywords lists the words that signal one learning style.
type StyleKeywords struct {
	Style    domain.LearningStyle `yaml:"style" validate:"required,oneof=visual auditory kinesthetic"`
	Keywords []string             `yaml:"keywords" validate:"required,min=1,dive,required"`
}

// Triggers are the transcript phrases that produce pattern tags.
type Triggers struct {
	Praise     []string `yaml:"praise" validate:"required,min=1,dive,required"`
	Difficulty []string `yaml:"difficulty" validate:"required,min=1,dive,required"`
	Repetition []string `yaml:"repetition" validate:"required,min=1,dive,required"`
}

// Lexicon is the full set of tables.
//
// Navigation is ordered: the first entry with a phrase found in an utterance
// wins, regardless of how specific later entries are. Phrases match whole
// words only.
type Lexicon struct {
	Navigation []IntentPhrases `yaml:"navigation" validate:"required,min=1,dive"`
	StopWords  []string        `yaml:"stop_words" validate:"dive,required"`
	Styles     []StyleKeywords `yaml:"styles" validate:"required,min=1,dive"`
	Triggers   Triggers        `yaml:"triggers" validate:"required"`
	Synonyms   [][]string      `yaml:"synonyms" validate:"dive,min=2,dive,required"`
	HelpText   string          `yaml:"help_text"`

	stopSet    map[string]struct{}
	synonymIdx map[string]int
}

// Default returns the built-in English tables.
func Default() *Lexicon {
	l := &Lexicon{
		Navigation: []IntentPhrases{
			{Intent: IntentEnd, Phrases: []string{"end session", "end", "stop", "goodbye", "i'm done"}},
			{Intent: IntentRepeat, Phrases: []string{"repeat", "say again", "say that again", "one more time"}},
			{Intent: IntentNext, Phrases: []string{"next", "skip"}},
			{Intent: IntentHelp, Phrases: []string{"help", "what can i say"}},
			{Intent: IntentHint, Phrases: []string{"hint", "give me a clue"}},
		},
		StopWords: []string{
			"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of",
			"with", "by", "from", "is", "are", "was", "were", "be", "been", "being",
			"have", "has", "had", "do", "does", "did", "will", "would", "could",
			"should", "may", "might", "must", "can", "this", "that", "these", "those",
			"it", "its", "they", "them", "their", "there", "which", "what", "when",
			"where", "who", "how", "about", "into", "than", "then", "also", "very",
		},
		Styles: []StyleKeywords{
			{Style: domain.StyleVisual, Keywords: []string{"see", "show", "picture", "diagram", "visual", "look", "image", "chart"}},
			{Style: domain.StyleAuditory, Keywords: []string{"hear", "listen", "sound", "explain", "tell me", "talk", "discuss"}},
			{Style: domain.StyleKinesthetic, Keywords: []string{"practice", "try", "hands-on", "example", "do it", "work through", "exercise"}},
		},
		Triggers: Triggers{
			Praise:     []string{"excellent", "great job", "well done", "perfect"},
			Difficulty: []string{"struggling", "difficult", "confused", "hard to"},
			Repetition: []string{"repeat", "again"},
		},
		Synonyms: [][]string{
			{"make", "makes", "produce", "produces", "create", "creates", "generate", "generates"},
			{"large", "big", "huge"},
			{"small", "little", "tiny"},
			{"begin", "start", "initiate"},
			{"finish", "end", "complete"},
			{"quick", "fast", "rapid"},
		},
		HelpText: "You can answer the question, ask me to say it one more time, ask for a hint, skip to the next card, or say stop to finish.",
	}
	l.index()
	return l
}

// index builds the lookup tables used on the hot path.
func (l *Lexicon) index() {
	l.stopSet = make(map[string]struct{}, len(l.StopWords))
	for _, w := range l.StopWords {
		l.stopSet[strings.ToLower(w)] = struct{}{}
	}

	l.synonymIdx = make(map[string]int)
	for i, group := range l.Synonyms {
		for _, w := range group {
			l.synonymIdx[strings.ToLower(w)] = i
		}
	}
}

// IsStopWord reports whether word (already lowercased) is a stop word.
func (l *Lexicon) IsStopWord(word string) bool {
	_, ok := l.stopSet[word]
	return ok
}

// AreSynonyms reports whether a and b (already lowercased) share a synonym group.
func (l *Lexicon) AreSynonyms(a, b string) bool {
	ga, ok := l.synonymIdx[a]
	if !ok {
		return false
	}
	gb, ok := l.synonymIdx[b]
	return ok && ga == gb
}

// MatchIntent returns the first navigation intent with a phrase that occurs
// in the utterance as whole words, so "end" matches "the end" but not
// "attend".
func (l *Lexicon) MatchIntent(normalized string) (Intent, bool) {
	words := Words(normalized)
	for _, entry := range l.Navigation {
		for _, phrase := range entry.Phrases {
			if containsWords(words, Words(phrase)) {
				return entry.Intent, true
			}
		}
	}
	return "", false
}

// Words lowercases s and splits it on anything other than letters, digits
// and apostrophes. Typographic apostrophes are folded to ASCII.
func Words(s string) []string {
	s = strings.ReplaceAll(strings.ToLower(s), "’", "'")
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// containsWords reports whether phrase occurs as a contiguous run in words.
func containsWords(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, w := range phrase {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// ContainsAny reports whether text contains any of phrases.
func ContainsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// HelpPhrases returns the help response, built from the navigation table
// when no explicit text is configured. The help text is stored in
// transcripts, so the generated form prefers phrases that carry no learner
// signal.
func (l *Lexicon) HelpPhrases() string {
	if l.HelpText != "" {
		return l.HelpText
	}
	var parts []string
	for _, entry := range l.Navigation {
		if p, ok := l.neutralPhrase(entry.Phrases); ok {
			parts = append(parts, p)
		}
	}
	return "You can answer the question, or say: " + strings.Join(parts, ", ") + "."
}

// neutralPhrase picks the first phrase free of trigger and style keywords,
// falling back to the first phrase.
func (l *Lexicon) neutralPhrase(phrases []string) (string, bool) {
	if len(phrases) == 0 {
		return "", false
	}
	for _, p := range phrases {
		if !l.HasSignal(p) {
			return p, true
		}
	}
	return phrases[0], true
}

// HasSignal reports whether text contains any trigger or style keyword, the
// same way transcripts are scanned for learner patterns.
func (l *Lexicon) HasSignal(text string) bool {
	text = strings.ToLower(text)
	if ContainsAny(text, l.Triggers.Praise) || ContainsAny(text, l.Triggers.Difficulty) || ContainsAny(text, l.Triggers.Repetition) {
		return true
	}
	for _, style := range l.Styles {
		if ContainsAny(text, style.Keywords) {
			return true
		}
	}
	return false
}
