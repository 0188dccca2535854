package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()
	sentinels := []error{ErrSessionNotFound, ErrSessionNotOwned, ErrEmptyDeck, ErrInvalidRequest}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestServiceError_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		op       string
		message  string
		err      error
		expected string
	}{
		{
			name:     "with sentinel error",
			op:       opProcessTurn,
			message:  "looking up session",
			err:      ErrSessionNotFound,
			expected: "process_turn operation failed: looking up session: session not found",
		},
		{
			name:     "with wrapped cause",
			op:       opStartSession,
			message:  "loading deck",
			err:      fmt.Errorf("query failed: %w", errors.New("connection reset")),
			expected: "start_session operation failed: loading deck: query failed: connection reset",
		},
		{
			name:     "without underlying error",
			op:       opEndSession,
			message:  "nothing to end",
			expected: "end_session operation failed: nothing to end",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NewServiceError(tt.op, tt.message, tt.err).Error())
		})
	}
}

func TestServiceError_ErrorsIsAndAs(t *testing.T) {
	t.Parallel()
	inner := NewServiceError(opGetProgress, "lookup", ErrSessionNotOwned)
	wrapped := fmt.Errorf("handler: %w", inner)

	assert.ErrorIs(t, wrapped, ErrSessionNotOwned)
	assert.NotErrorIs(t, wrapped, ErrSessionNotFound)

	var serviceErr *ServiceError
	assert.ErrorAs(t, wrapped, &serviceErr)
	assert.Equal(t, opGetProgress, serviceErr.Operation)
	assert.Equal(t, "lookup", serviceErr.Message)

	assert.NoError(t, NewServiceError(opBuildContext, "bare", nil).Unwrap())
}
