package observe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	log, buf := logger.NewTestLogger(t)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(logger.WithLogger(req.Context(), log)))
		})
	})
	r.Use(Middleware(m))
	r.Get("/api/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/6f1c2d9e-0000-4000-8000-000000000001", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	met := findMetric(collect(t, reader), "http.server.request.duration")
	require.NotNil(t, met)
	hist, ok := met.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)

	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	route, _ := dp.Attributes.Value(attribute.Key("route"))
	assert.Equal(t, "/api/sessions/{id}", route.AsString())
	status, _ := dp.Attributes.Value(attribute.Key("status"))
	assert.Equal(t, "404", status.AsString())

	entries := buf.Entries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "request completed", entries[0]["msg"])
	assert.Equal(t, float64(404), entries[0]["status"])
}

func TestMiddleware_NilMetrics(t *testing.T) {
	t.Parallel()
	h := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
