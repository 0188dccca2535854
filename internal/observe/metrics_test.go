package observe

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the int64 sum data point matching attr, or fails.
func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	met := findMetric(rm, name)
	require.NotNil(t, met, "metric %s not found", name)
	sum, ok := met.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is %T", name, met.Data)
	for _, dp := range sum.DataPoints {
		if v, found := dp.Attributes.Value(attr.Key); found && v == attr.Value {
			return dp.Value
		}
	}
	t.Fatalf("no data point for %s=%s on %s", attr.Key, attr.Value.Emit(), name)
	return 0
}

func TestRecordTurn(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTurn(ctx, "answer", "")
	m.RecordTurn(ctx, "answer", "")
	m.RecordTurn(ctx, "navigation", "repeat")

	rm := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "tutor.turns", attribute.String("kind", "answer")))
	assert.Equal(t, int64(1), sumFor(t, rm, "tutor.turns", attribute.String("intent", "repeat")))
}

func TestRecordAnswer(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAnswer(ctx, "correct")
	m.RecordAnswer(ctx, "partial")
	m.RecordAnswer(ctx, "correct")

	rm := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "tutor.answers", attribute.String("tier", "correct")))
	assert.Equal(t, int64(1), sumFor(t, rm, "tutor.answers", attribute.String("tier", "partial")))
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.SessionStarted(ctx, "study")
	m.SessionStarted(ctx, "study")
	m.SessionFinished(ctx, "completed")
	m.SessionEvicted(ctx)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "tutor.sessions.started", attribute.String("mode", "study")))
	assert.Equal(t, int64(1), sumFor(t, rm, "tutor.sessions.finished", attribute.String("status", "completed")))

	active := findMetric(rm, "tutor.sessions.active")
	require.NotNil(t, active)
	sum, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	assert.False(t, sum.IsMonotonic)
}

func TestObserveContextBuild(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ObserveContextBuild(ctx, 20*time.Millisecond, nil)
	m.ObserveContextBuild(ctx, 5*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	met := findMetric(rm, "tutor.context.build.duration")
	require.NotNil(t, met)
	assert.Equal(t, "s", met.Unit)

	hist, ok := met.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)

	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	assert.Equal(t, uint64(2), total)
}

func TestRecordPersistenceFailure(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)

	m.RecordPersistenceFailure(context.Background(), "append_turns")

	rm := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, rm, "tutor.persistence.failures", attribute.String("operation", "append_turns")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordTurn(ctx, "answer", "")
		m.RecordAnswer(ctx, "correct")
		m.SessionStarted(ctx, "study")
		m.SessionFinished(ctx, "ended")
		m.SessionEvicted(ctx)
		m.ObserveContextBuild(ctx, time.Second, nil)
		m.RecordPersistenceFailure(ctx, "finalize")
	})
}

func TestInitProvider_ServiceResource(t *testing.T) {
	ctx := context.Background()
	p, err := InitProvider(ctx, "tutor-test", "1.2.3")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })
	p.Metrics.RecordAnswer(ctx, "correct")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "target_info")
	assert.Contains(t, body, `service_name="tutor-test"`)
	assert.Contains(t, body, `service_version="1.2.3"`)
}

func TestInitProvider_DefaultServiceName(t *testing.T) {
	ctx := context.Background()
	p, err := InitProvider(ctx, "", "dev")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })
	p.Metrics.RecordAnswer(ctx, "correct")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `service_name="scry-tutor"`)
}

func TestProviderHandler(t *testing.T) {
	ctx := context.Background()
	p, err := InitProvider(ctx, "tutor-test", "dev")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	p.Metrics.RecordAnswer(ctx, "incorrect")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "tutor_answers")
	assert.Contains(t, string(body), `tier="incorrect"`)
}
