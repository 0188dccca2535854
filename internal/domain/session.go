package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a LearningSession.
type SessionStatus string

const (
	// SessionNotStarted is the state before the learner's first utterance.
	SessionNotStarted SessionStatus = "not_started"
	// SessionInProgress means a card is being presented.
	SessionInProgress SessionStatus = "in_progress"
	// SessionCompleted is terminal: every card has been answered or skipped.
	SessionCompleted SessionStatus = "completed"
)

// SessionMode describes the kind of interaction the learner asked for.
type SessionMode string

const (
	ModeStudy SessionMode = "study"
	ModeTest  SessionMode = "test"
	ModeTeach SessionMode = "teach"
)

// IsValid reports whether m is a known mode.
func (m SessionMode) IsValid() bool {
	switch m {
	case ModeStudy, ModeTest, ModeTeach:
		return true
	default:
		return false
	}
}

// ExplanationDepth controls how much the tutor elaborates.
type ExplanationDepth string

const (
	DepthBrief    ExplanationDepth = "brief"
	DepthStandard ExplanationDepth = "standard"
	DepthDetailed ExplanationDepth = "detailed"
)

// Pacing tells the voice layer how quickly to move between prompts.
type Pacing string

const (
	PacingSlow   Pacing = "slow"
	PacingNormal Pacing = "normal"
	PacingFast   Pacing = "fast"
)

// SessionHints are behavioral hints derived from the learner's history
// when a session starts.
type SessionHints struct {
	ExplanationDepth ExplanationDepth `json:"explanation_depth"`
	Pacing           Pacing           `json:"pacing"`
}

// DefaultSessionHints are used when no learner history is available.
func DefaultSessionHints() SessionHints {
	return SessionHints{
		ExplanationDepth: DepthStandard,
		Pacing:           PacingNormal,
	}
}

// Progress is the authoritative per-turn progress report.
type Progress struct {
	CurrentIndex   int `json:"current_index"`
	TotalCards     int `json:"total_cards"`
	CorrectCount   int `json:"correct_count"`
	PartialCount   int `json:"partial_count"`
	IncorrectCount int `json:"incorrect_count"`
}

// Answered returns the number of cards that have been scored.
func (p Progress) Answered() int {
	return p.CorrectCount + p.PartialCount + p.IncorrectCount
}

// LearningSession is one learner's traversal of a deck during a single call.
// It is owned by exactly one writer; nothing here is synchronized.
type LearningSession struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	DocumentID uuid.UUID       `json:"document_id"`
	RecordID   uuid.UUID       `json:"record_id"`
	Mode       SessionMode     `json:"mode"`
	Cards      []FlashcardCard `json:"cards"`

	CurrentIndex   int `json:"current_index"`
	CorrectCount   int `json:"correct_count"`
	PartialCount   int `json:"partial_count"`
	IncorrectCount int `json:"incorrect_count"`

	Status    SessionStatus `json:"status"`
	Hints     SessionHints  `json:"hints"`
	StartedAt time.Time     `json:"started_at"`
}

// NewLearningSession creates a session over cards in the NotStarted state.
func NewLearningSession(userID, documentID uuid.UUID, mode SessionMode, cards []FlashcardCard) (*LearningSession, error) {
	if userID == uuid.Nil {
		return nil, ErrUserIDEmpty
	}
	if !mode.IsValid() {
		return nil, ErrInvalidMode
	}
	for i := range cards {
		if err := cards[i].Validate(); err != nil {
			return nil, err
		}
	}

	deck := make([]FlashcardCard, len(cards))
	copy(deck, cards)

	return &LearningSession{
		ID:         uuid.New(),
		UserID:     userID,
		DocumentID: documentID,
		Mode:       mode,
		Cards:      deck,
		Status:     SessionNotStarted,
		Hints:      DefaultSessionHints(),
		StartedAt:  time.Now().UTC(),
	}, nil
}

// CurrentCard returns the card at the cursor, or nil when the cursor is
// outside the deck.
func (s *LearningSession) CurrentCard() *FlashcardCard {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Cards) {
		return nil
	}
	return &s.Cards[s.CurrentIndex]
}

// IsExhausted reports whether the cursor has moved past the last card.
func (s *LearningSession) IsExhausted() bool {
	return s.CurrentIndex >= len(s.Cards)
}

// Progress snapshots the session counters.
func (s *LearningSession) Progress() Progress {
	return Progress{
		CurrentIndex:   s.CurrentIndex,
		TotalCards:     len(s.Cards),
		CorrectCount:   s.CorrectCount,
		PartialCount:   s.PartialCount,
		IncorrectCount: s.IncorrectCount,
	}
}

// AccuracyPercent is the share of the deck answered correctly, truncated
// to a whole percentage. An empty deck reports 0.
func (s *LearningSession) AccuracyPercent() int {
	if len(s.Cards) == 0 {
		return 0
	}
	return s.CorrectCount * 100 / len(s.Cards)
}
