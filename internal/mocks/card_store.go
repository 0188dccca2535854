package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// MockCardStore implements store.CardStore for testing.
type MockCardStore struct {
	ListByDocumentFn func(ctx context.Context, documentID uuid.UUID) ([]domain.FlashcardCard, error)
	CreateMultipleFn func(ctx context.Context, cards []domain.FlashcardCard) error

	// Decks is consulted by ListByDocument when no custom function is set.
	Decks map[uuid.UUID][]domain.FlashcardCard
	Err   error
}

var _ store.CardStore = (*MockCardStore)(nil)

// ListByDocument implements store.CardStore.
func (m *MockCardStore) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.FlashcardCard, error) {
	if m.ListByDocumentFn != nil {
		return m.ListByDocumentFn(ctx, documentID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Decks[documentID], nil
}

// CreateMultiple implements store.CardStore.
func (m *MockCardStore) CreateMultiple(ctx context.Context, cards []domain.FlashcardCard) error {
	if m.CreateMultipleFn != nil {
		return m.CreateMultipleFn(ctx, cards)
	}
	return m.Err
}

// WithTx returns the mock itself.
func (m *MockCardStore) WithTx(_ *sql.Tx) store.CardStore {
	return m
}
