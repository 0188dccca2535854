package insight

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-tutor/internal/domain"
)

// Personalization is the learner-facing material derived from a context.
type Personalization struct {
	Greeting        string              `json:"greeting"`
	Recommendations []string            `json:"recommendations"`
	Encouragement   string              `json:"encouragement"`
	StudyTips       []string            `json:"study_tips"`
	Hints           domain.SessionHints `json:"hints"`
}

const (
	greetingSameDay   = "Welcome back! Ready to pick up where we left off today?"
	greetingYesterday = "Good to have you back! Our last session was just yesterday."
	greetingThisWeek  = "Welcome back! It's been %d days since we last studied together."
	greetingLongGap   = "It's great to have you back! It's been a while, so we'll start with a quick refresher."
	greetingFirst     = "Hi there! I'm excited to start learning with you."
	greetingGeneric   = "Hello! Let's get started with your flashcards."

	recBreakDown = "Let's break complex concepts into smaller, manageable parts."
	recSpaced    = "We'll revisit tricky cards with spaced repetition to help them stick."
	recVerbal    = "I'll lean on verbal explanations, since you learn well by listening."

	encourageDedicated = "Your dedication is impressive! You've completed %d sessions."
	encourageStarting  = "You're off to a great start!"
	encourageWelcome   = "Welcome to your learning journey!"
	encourageGeneric   = "Let's make this a great session!"

	tipBreaks = "Take a short break every 25 minutes to stay sharp."
	tipVerbal = "Try explaining each answer out loud in your own words."
)

// Composer renders a LearningContext into a Personalization.
type Composer struct {
	now func() time.Time
}

// NewComposer creates a Composer reading time from now. A nil clock uses
// time.Now.
func NewComposer(now func() time.Time) *Composer {
	if now == nil {
		now = time.Now
	}
	return &Composer{now: now}
}

// Compose builds the personalization for lc.
func (c *Composer) Compose(lc domain.LearningContext) Personalization {
	return Personalization{
		Greeting:        c.greeting(lc.LastSessionDate),
		Recommendations: recommendations(lc),
		Encouragement:   encouragement(lc.TotalConversations),
		StudyTips:       studyTips(lc.PreferredLearningStyle),
		Hints:           HintsFor(lc),
	}
}

// Generic is the personalization used when no context could be built. It
// makes no claims about the learner's history.
func (c *Composer) Generic() Personalization {
	return Personalization{
		Greeting:        greetingGeneric,
		Recommendations: []string{},
		Encouragement:   encourageGeneric,
		StudyTips:       []string{tipBreaks},
		Hints:           domain.DefaultSessionHints(),
	}
}

func (c *Composer) greeting(last *time.Time) string {
	if last == nil {
		return greetingFirst
	}

	days := calendarDays(*last, c.now())
	switch {
	case days <= 0:
		return greetingSameDay
	case days == 1:
		return greetingYesterday
	case days < 7:
		return fmt.Sprintf(greetingThisWeek, days)
	default:
		return greetingLongGap
	}
}

// calendarDays counts date changes between from and to in to's location. A
// from in the future counts as zero.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.In(to.Location()).Date()
	ty, tm, td := to.Date()
	// Midnight UTC on both dates keeps DST transitions out of the count.
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func recommendations(lc domain.LearningContext) []string {
	recs := []string{}
	if lc.HasWeakness(domain.TagConceptDifficulty) {
		recs = append(recs, recBreakDown)
	}
	if lc.HasWeakness(domain.TagNeedsRepetition) {
		recs = append(recs, recSpaced)
	}
	if lc.PreferredLearningStyle == domain.StyleAuditory {
		recs = append(recs, recVerbal)
	}
	return recs
}

func encouragement(sessions int) string {
	switch {
	case sessions > 5:
		return fmt.Sprintf(encourageDedicated, sessions)
	case sessions > 0:
		return encourageStarting
	default:
		return encourageWelcome
	}
}

func studyTips(style domain.LearningStyle) []string {
	tips := []string{tipBreaks}
	if style == domain.StyleAuditory {
		tips = append(tips, tipVerbal)
	}
	return tips
}

// HintsFor maps mastery to explanation depth and pacing. A recorded need
// for repetition always slows the pace.
func HintsFor(lc domain.LearningContext) domain.SessionHints {
	var h domain.SessionHints
	switch lc.MasteryLevel {
	case domain.MasteryNovice, domain.MasteryBeginner:
		h = domain.SessionHints{ExplanationDepth: domain.DepthDetailed, Pacing: domain.PacingSlow}
	case domain.MasteryExpert:
		h = domain.SessionHints{ExplanationDepth: domain.DepthBrief, Pacing: domain.PacingFast}
	default:
		h = domain.DefaultSessionHints()
	}
	if lc.HasWeakness(domain.TagNeedsRepetition) {
		h.Pacing = domain.PacingSlow
	}
	return h
}
