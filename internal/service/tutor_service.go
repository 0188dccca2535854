package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/domain/grading"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/insight"
	"github.com/phrazzld/scry-tutor/internal/observe"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/store"
	"github.com/phrazzld/scry-tutor/internal/tutor"
)

// StartSessionRequest opens a session over a deck.
type StartSessionRequest struct {
	UserID     uuid.UUID
	DocumentID uuid.UUID
	Mode       domain.SessionMode
	// Cards is the deck to study. When empty the deck is loaded from the
	// card store by DocumentID.
	Cards []domain.FlashcardCard
}

// SessionStart is returned by StartSession.
type SessionStart struct {
	SessionID       uuid.UUID               `json:"session_id"`
	RecordID        uuid.UUID               `json:"record_id"`
	OpeningMessage  string                  `json:"opening_message"`
	Personalization insight.Personalization `json:"personalization"`
	Progress        domain.Progress         `json:"progress"`
}

// TurnResponse is the tutor's reply to one utterance.
type TurnResponse struct {
	ResponseText string          `json:"response_text"`
	Progress     domain.Progress `json:"progress"`
	Directive    tutor.Directive `json:"directive"`
	Tally        tutor.Tally     `json:"tally"`
	Evaluation   *grading.Result `json:"evaluation,omitempty"`
	Completed    bool            `json:"completed"`
}

// Insights is a learner's derived context with the personalization built
// from it.
type Insights struct {
	Context         domain.LearningContext  `json:"context"`
	Personalization insight.Personalization `json:"personalization"`
}

// TutorService runs voice tutoring sessions.
type TutorService interface {
	// StartSession builds the learner's context, opens a conversation
	// record and registers a NotStarted session.
	//
	// A context failure does not fail the call; the generic personalization
	// is used instead. Returns ErrInvalidRequest for a missing user or an
	// unknown mode and ErrEmptyDeck when no cards can be found.
	StartSession(ctx context.Context, req StartSessionRequest) (*SessionStart, error)

	// ProcessTurn applies one utterance to the session. Transcript writes
	// are best-effort and never fail the turn.
	ProcessTurn(ctx context.Context, userID, sessionID uuid.UUID, utterance string) (*TurnResponse, error)

	// EndSession finalizes the record as ended, unless the deck was already
	// completed, and drops the session from the registry.
	EndSession(ctx context.Context, userID, sessionID uuid.UUID) (*TurnResponse, error)

	// GetProgress reports the session counters.
	GetProgress(ctx context.Context, userID, sessionID uuid.UUID) (domain.Progress, error)

	// BuildContext derives the learner's context, optionally scoped to one
	// document. Unlike StartSession it surfaces ErrContextUnavailable.
	BuildContext(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (*Insights, error)
}

// contextInvalidator is implemented by context builders that cache.
type contextInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID)
}

// TutorDeps are the collaborators of the tutor service. Emitter and
// Metrics are optional.
type TutorDeps struct {
	Conversations store.ConversationStore
	Cards         store.CardStore
	Contexts      insight.ContextBuilder
	Composer      *insight.Composer
	Machine       *tutor.Machine
	Registry      *SessionRegistry
	Emitter       events.EventEmitter
	Metrics       *observe.Metrics
	Logger        *slog.Logger
}

type tutorServiceImpl struct {
	conversations store.ConversationStore
	cards         store.CardStore
	contexts      insight.ContextBuilder
	composer      *insight.Composer
	machine       *tutor.Machine
	registry      *SessionRegistry
	emitter       events.EventEmitter
	metrics       *observe.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

var _ TutorService = (*tutorServiceImpl)(nil)

// NewTutorService creates a TutorService. It returns an error if a required
// dependency is nil.
func NewTutorService(deps TutorDeps) (TutorService, error) {
	switch {
	case deps.Conversations == nil:
		return nil, fmt.Errorf("%w: conversations store cannot be nil", domain.ErrValidation)
	case deps.Cards == nil:
		return nil, fmt.Errorf("%w: card store cannot be nil", domain.ErrValidation)
	case deps.Contexts == nil:
		return nil, fmt.Errorf("%w: context builder cannot be nil", domain.ErrValidation)
	case deps.Machine == nil:
		return nil, fmt.Errorf("%w: machine cannot be nil", domain.ErrValidation)
	case deps.Registry == nil:
		return nil, fmt.Errorf("%w: session registry cannot be nil", domain.ErrValidation)
	}

	if deps.Composer == nil {
		deps.Composer = insight.NewComposer(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &tutorServiceImpl{
		conversations: deps.Conversations,
		cards:         deps.Cards,
		contexts:      deps.Contexts,
		composer:      deps.Composer,
		machine:       deps.Machine,
		registry:      deps.Registry,
		emitter:       deps.Emitter,
		metrics:       deps.Metrics,
		logger:        deps.Logger.With(slog.String("component", "tutor_service")),
		now:           time.Now,
	}, nil
}

// StartSession implements TutorService.
func (s *tutorServiceImpl) StartSession(ctx context.Context, req StartSessionRequest) (*SessionStart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", req.UserID.String()),
		slog.String("document_id", req.DocumentID.String()))

	if req.Mode == "" {
		req.Mode = domain.ModeStudy
	}
	if req.UserID == uuid.Nil {
		return nil, NewServiceError(opStartSession, "user id is required", ErrInvalidRequest)
	}
	if !req.Mode.IsValid() {
		return nil, NewServiceError(opStartSession, fmt.Sprintf("unknown mode %q", req.Mode), ErrInvalidRequest)
	}

	cards := req.Cards
	if len(cards) == 0 {
		if req.DocumentID == uuid.Nil {
			return nil, NewServiceError(opStartSession, "document id is required when no cards are given", ErrInvalidRequest)
		}
		loaded, err := s.cards.ListByDocument(ctx, req.DocumentID)
		if err != nil {
			log.Error("failed to load deck", slog.String("error", err.Error()))
			return nil, NewServiceError(opStartSession, "failed to load deck", err)
		}
		cards = loaded
	}
	if len(cards) == 0 {
		return nil, NewServiceError(opStartSession, "no cards to study", ErrEmptyDeck)
	}

	session, err := domain.NewLearningSession(req.UserID, req.DocumentID, req.Mode, cards)
	if err != nil {
		return nil, NewServiceError(opStartSession, "invalid deck", errors.Join(ErrInvalidRequest, err))
	}

	personalization := s.personalize(ctx, log, req.UserID, req.DocumentID)
	session.Hints = personalization.Hints

	record, err := domain.NewConversationRecord(req.UserID, req.DocumentID, session.ID, req.Mode)
	if err != nil {
		return nil, NewServiceError(opStartSession, "failed to open conversation record", err)
	}
	if err := s.conversations.Create(ctx, record); err != nil {
		// The session still runs; turns are simply not recorded.
		log.Error("failed to create conversation record", slog.String("error", err.Error()))
		s.metrics.RecordPersistenceFailure(ctx, "create")
	} else {
		session.RecordID = record.ID
	}

	opening := openingMessage(personalization, len(session.Cards))
	s.record(ctx, session, domain.NewTurn(domain.RoleTutor, opening, map[string]any{"kind": "opening"}))

	s.registry.Put(session)
	s.metrics.SessionStarted(ctx, string(session.Mode))

	log.Info("session started",
		slog.String("session_id", session.ID.String()),
		slog.Int("cards", len(session.Cards)),
		slog.String("pacing", string(session.Hints.Pacing)))

	return &SessionStart{
		SessionID:       session.ID,
		RecordID:        session.RecordID,
		OpeningMessage:  opening,
		Personalization: personalization,
		Progress:        session.Progress(),
	}, nil
}

// personalize builds the learner's personalization, falling back to the
// generic one when the history cannot be read.
func (s *tutorServiceImpl) personalize(ctx context.Context, log *slog.Logger, userID, documentID uuid.UUID) insight.Personalization {
	var scope *uuid.UUID
	if documentID != uuid.Nil {
		scope = &documentID
	}

	start := s.now()
	lc, err := s.contexts.BuildContext(ctx, userID, scope)
	s.metrics.ObserveContextBuild(ctx, s.now().Sub(start), err)
	if err != nil {
		log.Warn("using generic personalization", slog.String("error", err.Error()))
		return s.composer.Generic()
	}
	return s.composer.Compose(lc)
}

// ProcessTurn implements TutorService.
func (s *tutorServiceImpl) ProcessTurn(ctx context.Context, userID, sessionID uuid.UUID, utterance string) (*TurnResponse, error) {
	live, err := s.lookup(userID, sessionID, opProcessTurn)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()
	session := live.session

	out := s.machine.Process(session, utterance)

	s.metrics.RecordTurn(ctx, string(out.Turn.Kind), string(out.Turn.Intent))
	learnerMeta := map[string]any{"kind": string(out.Turn.Kind)}
	if out.Turn.Intent != "" {
		learnerMeta["intent"] = string(out.Turn.Intent)
	}
	if out.Evaluation != nil {
		s.metrics.RecordAnswer(ctx, string(out.Evaluation.Tier))
		learnerMeta["tier"] = string(out.Evaluation.Tier)
		learnerMeta["match_ratio"] = out.Evaluation.MatchRatio
	}

	s.record(ctx, session,
		domain.NewTurn(domain.RoleLearner, strings.TrimSpace(utterance), learnerMeta),
		domain.NewTurn(domain.RoleTutor, out.ResponseText, map[string]any{"directive": string(out.Directive)}),
	)

	if out.Completed {
		s.finalize(ctx, session, domain.ConversationCompleted, tutor.CompletionSummary(session))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("turn processed",
		slog.String("session_id", sessionID.String()),
		slog.String("kind", string(out.Turn.Kind)),
		slog.String("directive", string(out.Directive)),
		slog.Int("current_index", out.Progress.CurrentIndex))

	return &TurnResponse{
		ResponseText: out.ResponseText,
		Progress:     out.Progress,
		Directive:    out.Directive,
		Tally:        out.Tally,
		Evaluation:   out.Evaluation,
		Completed:    out.Completed,
	}, nil
}

// EndSession implements TutorService.
func (s *tutorServiceImpl) EndSession(ctx context.Context, userID, sessionID uuid.UUID) (*TurnResponse, error) {
	live, err := s.lookup(userID, sessionID, opEndSession)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()
	session := live.session

	text := tutor.Farewell(session)
	s.record(ctx, session, domain.NewTurn(domain.RoleTutor, text, map[string]any{"directive": string(tutor.DirectiveEndSession)}))

	// A completed deck was finalized on its last turn.
	if session.Status != domain.SessionCompleted {
		s.finalize(ctx, session, domain.ConversationEnded, tutor.EndedSummary(session))
	}
	s.registry.Remove(sessionID)

	logger.FromContextOrDefault(ctx, s.logger).Info("session ended",
		slog.String("session_id", sessionID.String()),
		slog.String("status", string(session.Status)))

	return &TurnResponse{
		ResponseText: text,
		Progress:     session.Progress(),
		Directive:    tutor.DirectiveEndSession,
	}, nil
}

// GetProgress implements TutorService.
func (s *tutorServiceImpl) GetProgress(_ context.Context, userID, sessionID uuid.UUID) (domain.Progress, error) {
	live, err := s.lookup(userID, sessionID, opGetProgress)
	if err != nil {
		return domain.Progress{}, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()
	return live.session.Progress(), nil
}

// BuildContext implements TutorService.
func (s *tutorServiceImpl) BuildContext(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (*Insights, error) {
	if userID == uuid.Nil {
		return nil, NewServiceError(opBuildContext, "user id is required", ErrInvalidRequest)
	}

	start := s.now()
	lc, err := s.contexts.BuildContext(ctx, userID, documentID)
	s.metrics.ObserveContextBuild(ctx, s.now().Sub(start), err)
	if err != nil {
		return nil, NewServiceError(opBuildContext, "failed to build learning context", err)
	}

	return &Insights{Context: lc, Personalization: s.composer.Compose(lc)}, nil
}

func (s *tutorServiceImpl) lookup(userID, sessionID uuid.UUID, op string) (*liveSession, error) {
	live, ok := s.registry.get(sessionID)
	if !ok {
		return nil, NewServiceError(op, "session not found", ErrSessionNotFound)
	}
	if live.session.UserID != userID {
		return nil, NewServiceError(op, "session belongs to another user", ErrSessionNotOwned)
	}
	return live, nil
}

// record appends turns to the session's conversation record and mirrors
// them as events. Failures are logged and counted, never returned.
func (s *tutorServiceImpl) record(ctx context.Context, session *domain.LearningSession, turns ...domain.Turn) {
	if session.RecordID == uuid.Nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.conversations.AppendTurns(ctx, session.RecordID, turns); err != nil {
		log.Error("failed to append turns",
			slog.String("record_id", session.RecordID.String()),
			slog.String("error", err.Error()))
		s.metrics.RecordPersistenceFailure(ctx, "append_turns")
		return
	}

	for _, turn := range turns {
		s.emit(ctx, events.TypeTurnRecorded, session, turn)
	}
}

// finalize writes the trailing status of the session's record.
func (s *tutorServiceImpl) finalize(ctx context.Context, session *domain.LearningSession, status domain.ConversationStatus, summary string) {
	s.metrics.SessionFinished(ctx, string(status))
	if session.RecordID == uuid.Nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	end := s.now().UTC()
	fin := domain.Finalization{
		Status:     status,
		EndTime:    end,
		DurationMS: end.Sub(session.StartedAt).Milliseconds(),
		Summary:    summary,
		Metadata: map[string]any{
			domain.MetadataAccuracy: float64(session.AccuracyPercent()),
			"total_cards":           len(session.Cards),
			"correct_count":         session.CorrectCount,
			"partial_count":         session.PartialCount,
			"incorrect_count":       session.IncorrectCount,
		},
	}

	if err := s.conversations.Finalize(ctx, session.RecordID, fin); err != nil {
		log.Error("failed to finalize conversation record",
			slog.String("record_id", session.RecordID.String()),
			slog.String("error", err.Error()))
		s.metrics.RecordPersistenceFailure(ctx, "finalize")
		return
	}

	// The next session should see this record, not a cached context.
	if inv, ok := s.contexts.(contextInvalidator); ok {
		docID := session.DocumentID
		inv.Invalidate(ctx, session.UserID, &docID)
		inv.Invalidate(ctx, session.UserID, nil)
	}

	s.emit(ctx, events.TypeConversationClosed, session, map[string]any{
		"status":      string(status),
		"summary":     summary,
		"duration_ms": fin.DurationMS,
		"accuracy":    session.AccuracyPercent(),
	})
}

func (s *tutorServiceImpl) emit(ctx context.Context, eventType string, session *domain.LearningSession, payload any) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, events.Subject{
		UserID:    session.UserID,
		SessionID: session.ID,
		RecordID:  session.RecordID,
	}, payload)
	if err != nil {
		log.Warn("failed to build event", slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit event", slog.String("event_type", eventType), slog.String("error", err.Error()))
	}
}

func openingMessage(p insight.Personalization, cardCount int) string {
	parts := []string{p.Greeting}
	if p.Encouragement != "" {
		parts = append(parts, p.Encouragement)
	}
	noun := "cards"
	if cardCount == 1 {
		noun = "card"
	}
	parts = append(parts, fmt.Sprintf("We have %d %s to go through. Say anything when you're ready to begin.", cardCount, noun))
	return strings.Join(parts, " ")
}
