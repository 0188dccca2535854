package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-tutor/internal/api/shared"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
)

// NewTraceMiddleware assigns each request a trace ID, honoring a valid
// incoming X-Trace-ID, echoes it on the response and puts a trace-scoped
// logger derived from base on the request context.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.WithTraceID(r.Context(), r.Header.Get(shared.TraceIDHeader))
			traceID := shared.GetTraceID(ctx)
			w.Header().Set(shared.TraceIDHeader, traceID)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
