package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/stretchr/testify/mock"
)

// TestifyMockContextBuilder is a testify mock of insight.ContextBuilder.
type TestifyMockContextBuilder struct {
	mock.Mock
}

// BuildContext is a mock implementation of insight.ContextBuilder.BuildContext.
func (m *TestifyMockContextBuilder) BuildContext(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) (domain.LearningContext, error) {
	args := m.Called(ctx, userID, documentID)
	if lc, ok := args.Get(0).(domain.LearningContext); ok {
		return lc, args.Error(1)
	}
	return domain.LearningContext{}, args.Error(1)
}

// Invalidate records cache invalidations requested by the service.
func (m *TestifyMockContextBuilder) Invalidate(ctx context.Context, userID uuid.UUID, documentID *uuid.UUID) {
	m.Called(ctx, userID, documentID)
}
