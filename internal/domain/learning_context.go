package domain

import "time"

// LearningStyle is the learner's dominant modality as inferred from transcripts.
type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
)

// MasteryLevel buckets the learner's average accuracy.
type MasteryLevel string

const (
	MasteryNovice       MasteryLevel = "novice"
	MasteryBeginner     MasteryLevel = "beginner"
	MasteryIntermediate MasteryLevel = "intermediate"
	MasteryExpert       MasteryLevel = "expert"
)

// Pattern tags accumulated from transcripts.
const (
	TagPositiveFeedback  = "positive_feedback"
	TagConceptDifficulty = "concept_difficulty"
	TagNeedsRepetition   = "needs_repetition"
)

// LearningContext is the personalization profile derived from a learner's
// conversation history. It is never persisted; rebuild it on demand.
type LearningContext struct {
	PreferredLearningStyle        LearningStyle `json:"preferred_learning_style"`
	MasteryLevel                  MasteryLevel  `json:"mastery_level"`
	Strengths                     []string      `json:"strengths"`
	Weaknesses                    []string      `json:"weaknesses"`
	TotalConversations            int           `json:"total_conversations"`
	AverageSessionDurationMinutes int           `json:"average_session_duration_minutes"`
	LastSessionDate               *time.Time    `json:"last_session_date,omitempty"`
}

// DefaultLearningContext is the context of a learner with no usable history.
func DefaultLearningContext() LearningContext {
	return LearningContext{
		PreferredLearningStyle: StyleVisual,
		MasteryLevel:           MasteryBeginner,
		Strengths:              []string{},
		Weaknesses:             []string{},
	}
}

// HasWeakness reports whether tag appears at least once in Weaknesses.
func (c LearningContext) HasWeakness(tag string) bool {
	for _, w := range c.Weaknesses {
		if w == tag {
			return true
		}
	}
	return false
}

// CountWeakness returns how many times tag was recorded.
func (c LearningContext) CountWeakness(tag string) int {
	n := 0
	for _, w := range c.Weaknesses {
		if w == tag {
			n++
		}
	}
	return n
}
