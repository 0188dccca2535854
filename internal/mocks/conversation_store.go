package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// MockConversationStore implements store.ConversationStore for testing.
// Without custom functions it keeps records in memory.
type MockConversationStore struct {
	CreateFn      func(ctx context.Context, record *domain.ConversationRecord) error
	AppendTurnsFn func(ctx context.Context, id uuid.UUID, turns []domain.Turn) error
	FinalizeFn    func(ctx context.Context, id uuid.UUID, fin domain.Finalization) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.ConversationRecord, error)
	ListRecentFn  func(ctx context.Context, userID uuid.UUID, limit int, filter store.ListFilter) ([]domain.ConversationRecord, error)

	mu            sync.Mutex
	Records       map[uuid.UUID]*domain.ConversationRecord
	AppendCalls   int
	FinalizeCalls []domain.Finalization
}

var _ store.ConversationStore = (*MockConversationStore)(nil)

// NewMockConversationStore returns an empty in-memory store.
func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{Records: make(map[uuid.UUID]*domain.ConversationRecord)}
}

// Create implements store.ConversationStore.
func (m *MockConversationStore) Create(ctx context.Context, record *domain.ConversationRecord) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Records[record.ID]; ok {
		return store.ErrDuplicate
	}
	cp := *record
	m.Records[record.ID] = &cp
	return nil
}

// AppendTurns implements store.ConversationStore.
func (m *MockConversationStore) AppendTurns(ctx context.Context, id uuid.UUID, turns []domain.Turn) error {
	m.mu.Lock()
	m.AppendCalls++
	m.mu.Unlock()

	if m.AppendTurnsFn != nil {
		return m.AppendTurnsFn(ctx, id, turns)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[id]
	if !ok {
		return store.ErrConversationNotFound
	}
	rec.Turns = append(rec.Turns, turns...)
	return nil
}

// Finalize implements store.ConversationStore.
func (m *MockConversationStore) Finalize(ctx context.Context, id uuid.UUID, fin domain.Finalization) error {
	m.mu.Lock()
	m.FinalizeCalls = append(m.FinalizeCalls, fin)
	m.mu.Unlock()

	if m.FinalizeFn != nil {
		return m.FinalizeFn(ctx, id, fin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[id]
	if !ok {
		return store.ErrConversationNotFound
	}
	end := fin.EndTime
	dur := fin.DurationMS
	rec.Status = fin.Status
	rec.EndTime = &end
	rec.DurationMS = &dur
	rec.Summary = fin.Summary
	if rec.Metadata == nil {
		rec.Metadata = map[string]any{}
	}
	for k, v := range fin.Metadata {
		rec.Metadata[k] = v
	}
	return nil
}

// GetByID implements store.ConversationStore.
func (m *MockConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConversationRecord, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[id]
	if !ok {
		return nil, store.ErrConversationNotFound
	}
	cp := *rec
	cp.Turns = append([]domain.Turn(nil), rec.Turns...)
	return &cp, nil
}

// ListRecent implements store.ConversationStore. The in-memory default
// ignores ordering and returns nothing unless ListRecentFn is set.
func (m *MockConversationStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int, filter store.ListFilter) ([]domain.ConversationRecord, error) {
	if m.ListRecentFn != nil {
		return m.ListRecentFn(ctx, userID, limit, filter)
	}
	return nil, nil
}

// WithTx returns the mock itself.
func (m *MockConversationStore) WithTx(_ *sql.Tx) store.ConversationStore {
	return m
}
