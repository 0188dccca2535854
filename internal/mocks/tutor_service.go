package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/service"
)

// MockTutorService implements service.TutorService for testing.
type MockTutorService struct {
	StartSessionFn func(ctx context.Context, req service.StartSessionRequest) (*service.SessionStart, error)
	ProcessTurnFn  func(ctx context.Context, userID, sessionID uuid.UUID, utterance string) (*service.TurnResponse, error)
	EndSessionFn   func(ctx context.Context, userID, sessionID uuid.UUID) (*service.TurnResponse, error)
	GetProgressFn  func(ctx context.Context, userID, sessionID uuid.UUID) (domain.Progress, error)
	BuildContextFn func(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (*service.Insights, error)

	// Err is returned by any method without a custom function.
	Err error

	// Utterances records every ProcessTurn utterance in call order.
	mu         sync.Mutex
	Utterances []string
}

var _ service.TutorService = (*MockTutorService)(nil)

// StartSession implements service.TutorService.
func (m *MockTutorService) StartSession(ctx context.Context, req service.StartSessionRequest) (*service.SessionStart, error) {
	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx, req)
	}
	return nil, m.Err
}

// ProcessTurn implements service.TutorService.
func (m *MockTutorService) ProcessTurn(ctx context.Context, userID, sessionID uuid.UUID, utterance string) (*service.TurnResponse, error) {
	m.mu.Lock()
	m.Utterances = append(m.Utterances, utterance)
	m.mu.Unlock()

	if m.ProcessTurnFn != nil {
		return m.ProcessTurnFn(ctx, userID, sessionID, utterance)
	}
	return nil, m.Err
}

// EndSession implements service.TutorService.
func (m *MockTutorService) EndSession(ctx context.Context, userID, sessionID uuid.UUID) (*service.TurnResponse, error) {
	if m.EndSessionFn != nil {
		return m.EndSessionFn(ctx, userID, sessionID)
	}
	return nil, m.Err
}

// GetProgress implements service.TutorService.
func (m *MockTutorService) GetProgress(ctx context.Context, userID, sessionID uuid.UUID) (domain.Progress, error) {
	if m.GetProgressFn != nil {
		return m.GetProgressFn(ctx, userID, sessionID)
	}
	return domain.Progress{}, m.Err
}

// BuildContext implements service.TutorService.
func (m *MockTutorService) BuildContext(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (*service.Insights, error) {
	if m.BuildContextFn != nil {
		return m.BuildContextFn(ctx, userID, documentID)
	}
	return nil, m.Err
}
