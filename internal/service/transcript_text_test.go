package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/domain/grading"
	"github.com/phrazzld/scry-tutor/internal/insight"
	"github.com/phrazzld/scry-tutor/internal/lexicon"
	"github.com/phrazzld/scry-tutor/internal/tutor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neutralDeck(t *testing.T, cards ...[2]string) *domain.LearningSession {
	t.Helper()
	docID := uuid.New()
	deck := make([]domain.FlashcardCard, 0, len(cards))
	for i, qa := range cards {
		card, err := domain.NewFlashcardCard(docID, i, qa[0], qa[1])
		require.NoError(t, err)
		deck = append(deck, *card)
	}
	s, err := domain.NewLearningSession(uuid.New(), docID, domain.ModeStudy, deck)
	require.NoError(t, err)
	return s
}

// tutorLines collects everything the tutor stores in a transcript apart from
// praise feedback, which is meant to register as a strength.
func tutorLines(t *testing.T, lex *lexicon.Lexicon) []string {
	t.Helper()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	composer := insight.NewComposer(func() time.Time { return now })

	var lines []string
	lastSessions := []*time.Time{nil}
	for _, ago := range []time.Duration{time.Hour, 24 * time.Hour, 3 * 24 * time.Hour, 30 * 24 * time.Hour} {
		last := now.Add(-ago)
		lastSessions = append(lastSessions, &last)
	}
	for _, last := range lastSessions {
		for _, total := range []int{0, 2, 10} {
			lc := domain.DefaultLearningContext()
			lc.LastSessionDate = last
			lc.TotalConversations = total
			lines = append(lines, openingMessage(composer.Compose(lc), 2))
		}
	}
	lines = append(lines, openingMessage(composer.Generic(), 1))

	m := tutor.NewMachine(lex, grading.NewHeuristicEvaluator(lex, nil))
	s := neutralDeck(t,
		[2]string{"What is the capital of France?", "Paris"},
		[2]string{"How many continents are there?", "Seven"},
		[2]string{"Which planet is largest?", "Jupiter"},
	)
	for _, utterance := range []string{"help", "", "begin", "hint", "help", "", "bananas", "next"} {
		lines = append(lines, m.Process(s, utterance).ResponseText)
	}
	lines = append(lines, tutor.Farewell(s), tutor.EndedSummary(s))

	out := m.Process(s, "bananas")
	require.True(t, out.Completed)
	lines = append(lines, out.ResponseText, m.Process(s, "anything").ResponseText, tutor.Farewell(s))

	empty := neutralDeck(t)
	lines = append(lines, m.Process(empty, "begin").ResponseText)

	lines = append(lines,
		grading.Feedback(grading.TierPartial, "Paris"),
		grading.Feedback(grading.TierIncorrect, "Paris"),
	)
	return lines
}

func TestTutorTextCarriesNoLearnerSignals(t *testing.T) {
	t.Parallel()
	lex := lexicon.Default()

	for _, line := range tutorLines(t, lex) {
		rec := domain.ConversationRecord{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			Turns:     []domain.Turn{{Role: domain.RoleTutor, Content: line}},
		}
		lc := insight.Derive([]domain.ConversationRecord{rec}, lex)

		assert.Empty(t, lc.Weaknesses, "tutor line %q", line)
		assert.Empty(t, lc.Strengths, "tutor line %q", line)
		for _, style := range lex.Styles {
			assert.False(t, lexicon.ContainsAny(strings.ToLower(line), style.Keywords),
				"tutor line %q counts toward the %s style", line, style.Style)
		}
	}
}

func TestTutorText_YesterdayLearnerStaysUnflagged(t *testing.T) {
	t.Parallel()
	lex := lexicon.Default()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	lc := domain.DefaultLearningContext()
	lc.LastSessionDate = &yesterday
	lc.TotalConversations = 1
	composer := insight.NewComposer(func() time.Time { return now })
	opening := openingMessage(composer.Compose(lc), 3)
	require.Contains(t, opening, "yesterday")

	rec := domain.ConversationRecord{
		ID:        uuid.New(),
		CreatedAt: yesterday,
		Turns:     []domain.Turn{{Role: domain.RoleTutor, Content: opening}},
	}
	next := insight.Derive([]domain.ConversationRecord{rec}, lex)
	assert.False(t, next.HasWeakness(domain.TagNeedsRepetition))
	assert.Empty(t, composer.Compose(next).Recommendations)
}
