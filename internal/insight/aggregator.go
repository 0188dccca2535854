// Package insight turns a learner's conversation history into a
// LearningContext and the personalized greeting and hints built from it.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/lexicon"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// ErrContextUnavailable is returned when the history needed to build a
// LearningContext cannot be read. Callers decide whether to fall back.
var ErrContextUnavailable = errors.New("learning context unavailable")

// DefaultHistoryLimit is how many recent conversations are scanned.
const DefaultHistoryLimit = 10

// RecordLister is the slice of store.ConversationStore the aggregator needs.
type RecordLister interface {
	ListRecent(ctx context.Context, userID uuid.UUID, limit int, filter store.ListFilter) ([]domain.ConversationRecord, error)
}

// ContextBuilder builds a LearningContext for a learner, optionally scoped
// to one document.
type ContextBuilder interface {
	BuildContext(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (domain.LearningContext, error)
}

// Aggregator is the store-backed ContextBuilder.
type Aggregator struct {
	records RecordLister
	lex     *lexicon.Lexicon
	limit   int
	logger  *slog.Logger
}

var _ ContextBuilder = (*Aggregator)(nil)

// NewAggregator creates an Aggregator. It panics if records is nil. A nil
// lexicon uses the defaults and a non-positive limit uses DefaultHistoryLimit.
func NewAggregator(records RecordLister, lex *lexicon.Lexicon, limit int, log *slog.Logger) *Aggregator {
	if records == nil {
		panic("records cannot be nil")
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		records: records,
		lex:     lex,
		limit:   limit,
		logger:  log.With(slog.String("component", "context_aggregator")),
	}
}

// BuildContext implements ContextBuilder.
func (a *Aggregator) BuildContext(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (domain.LearningContext, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	records, err := a.records.ListRecent(ctx, userID, a.limit, store.ListFilter{DocumentID: documentID})
	if err != nil {
		log.Warn("failed to load conversation history",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return domain.LearningContext{}, fmt.Errorf("%w: %w", ErrContextUnavailable, err)
	}

	lc := Derive(records, a.lex)
	log.Debug("learning context built",
		slog.String("user_id", userID.String()),
		slog.Int("records", len(records)),
		slog.String("style", string(lc.PreferredLearningStyle)),
		slog.String("mastery", string(lc.MasteryLevel)))
	return lc, nil
}

// Derive computes a LearningContext from records. It is pure: the same
// records always produce the same context.
func Derive(records []domain.ConversationRecord, lex *lexicon.Lexicon) domain.LearningContext {
	if lex == nil {
		lex = lexicon.Default()
	}
	lc := domain.DefaultLearningContext()
	lc.TotalConversations = len(records)

	styleCounts := make([]int, len(lex.Styles))
	var (
		accuracySum float64
		accuracyN   int
		durationSum int64
		durationN   int
	)

	for i := range records {
		rec := &records[i]
		text := transcriptText(rec)

		if lexicon.ContainsAny(text, lex.Triggers.Praise) {
			lc.Strengths = append(lc.Strengths, domain.TagPositiveFeedback)
		}
		if lexicon.ContainsAny(text, lex.Triggers.Difficulty) {
			lc.Weaknesses = append(lc.Weaknesses, domain.TagConceptDifficulty)
		}
		if lexicon.ContainsAny(text, lex.Triggers.Repetition) {
			lc.Weaknesses = append(lc.Weaknesses, domain.TagNeedsRepetition)
		}

		for s, style := range lex.Styles {
			for _, kw := range style.Keywords {
				styleCounts[s] += strings.Count(text, strings.ToLower(kw))
			}
		}

		if acc, ok := rec.Accuracy(); ok {
			accuracySum += acc
			accuracyN++
		}
		if rec.DurationMS != nil {
			durationSum += *rec.DurationMS
			durationN++
		}
		if lc.LastSessionDate == nil || rec.CreatedAt.After(*lc.LastSessionDate) {
			t := rec.CreatedAt
			lc.LastSessionDate = &t
		}
	}

	lc.PreferredLearningStyle = dominantStyle(lex.Styles, styleCounts)
	if accuracyN > 0 {
		lc.MasteryLevel = masteryFor(accuracySum / float64(accuracyN))
	}
	if durationN > 0 {
		mean := float64(durationSum) / float64(durationN)
		lc.AverageSessionDurationMinutes = int(math.Round(mean / 60000))
	}
	return lc
}

func transcriptText(rec *domain.ConversationRecord) string {
	parts := make([]string, len(rec.Turns))
	for i, t := range rec.Turns {
		parts[i] = t.Content
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

// dominantStyle returns the style with the strictly highest count. Ties,
// including no signal at all, resolve to visual.
func dominantStyle(styles []lexicon.StyleKeywords, counts []int) domain.LearningStyle {
	best, bestCount, tied := domain.StyleVisual, 0, true
	for i, c := range counts {
		switch {
		case c > bestCount:
			best, bestCount, tied = styles[i].Style, c, false
		case c == bestCount:
			tied = true
		}
	}
	if tied {
		return domain.StyleVisual
	}
	return best
}

func masteryFor(avgAccuracy float64) domain.MasteryLevel {
	switch {
	case avgAccuracy < 50:
		return domain.MasteryNovice
	case avgAccuracy < 70:
		return domain.MasteryBeginner
	case avgAccuracy < 90:
		return domain.MasteryIntermediate
	default:
		return domain.MasteryExpert
	}
}
