package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey namespaces request context values set by the API layer.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated learner's uuid.UUID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader is echoed on every response and honored on requests.
	TraceIDHeader = "X-Trace-ID"

	maxTraceIDLength = 64
)

// WithTraceID stores traceID on ctx. An empty or oversized traceID is
// replaced with a fresh one.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" || len(traceID) > maxTraceIDLength || strings.ContainsAny(traceID, " \t\r\n") {
		traceID = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID on ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// NewTraceID returns a random 32-character hex ID.
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithUserID stores the authenticated learner on ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// GetUserID returns the authenticated learner, if any.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
