// Package observe holds the tutor's OpenTelemetry metric instruments and
// the Prometheus bridge that serves them on /metrics.
//
// Components receive a *[Metrics] explicitly. Every recording method is
// safe to call on a nil receiver so tests and tools can pass nil.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/phrazzld/scry-tutor"

// Metrics holds all metric instruments. The underlying OTel types are safe
// for concurrent use.
type Metrics struct {
	// Turns counts processed utterances by kind and, for navigation, intent.
	Turns metric.Int64Counter

	// Answers counts scored answers by tier.
	Answers metric.Int64Counter

	// SessionsStarted counts sessions created.
	SessionsStarted metric.Int64Counter

	// SessionsFinished counts sessions that reached a terminal state, by
	// status (completed or ended).
	SessionsFinished metric.Int64Counter

	// ActiveSessions tracks sessions held in the registry.
	ActiveSessions metric.Int64UpDownCounter

	// ContextBuildDuration tracks how long building a learning context
	// takes, by outcome.
	ContextBuildDuration metric.Float64Histogram

	// PersistenceFailures counts transcript writes that failed without
	// failing the turn, by operation.
	PersistenceFailures metric.Int64Counter

	// HTTPRequestDuration tracks API latency by method, route and status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// NewMetrics creates all instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{}
	var err error

	if met.Turns, err = m.Int64Counter("tutor.turns",
		metric.WithDescription("Learner utterances processed, by kind and intent."),
	); err != nil {
		return nil, err
	}
	if met.Answers, err = m.Int64Counter("tutor.answers",
		metric.WithDescription("Answers scored, by tier."),
	); err != nil {
		return nil, err
	}
	if met.SessionsStarted, err = m.Int64Counter("tutor.sessions.started",
		metric.WithDescription("Tutoring sessions started."),
	); err != nil {
		return nil, err
	}
	if met.SessionsFinished, err = m.Int64Counter("tutor.sessions.finished",
		metric.WithDescription("Tutoring sessions finished, by status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("tutor.sessions.active",
		metric.WithDescription("Sessions currently held in memory."),
	); err != nil {
		return nil, err
	}
	if met.ContextBuildDuration, err = m.Float64Histogram("tutor.context.build.duration",
		metric.WithDescription("Latency of building a learner context."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PersistenceFailures, err = m.Int64Counter("tutor.persistence.failures",
		metric.WithDescription("Transcript writes that failed, by operation."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordTurn counts one processed utterance.
func (m *Metrics) RecordTurn(ctx context.Context, kind, intent string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("kind", kind)}
	if intent != "" {
		attrs = append(attrs, attribute.String("intent", intent))
	}
	m.Turns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAnswer counts one scored answer.
func (m *Metrics) RecordAnswer(ctx context.Context, tier string) {
	if m == nil {
		return
	}
	m.Answers.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

// SessionStarted records a new session.
func (m *Metrics) SessionStarted(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.SessionsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	m.ActiveSessions.Add(ctx, 1)
}

// SessionFinished records a session reaching a terminal status.
func (m *Metrics) SessionFinished(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.SessionsFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// SessionEvicted records a session leaving the registry.
func (m *Metrics) SessionEvicted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, -1)
}

// ObserveContextBuild records the latency of one context build.
func (m *Metrics) ObserveContextBuild(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ContextBuildDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordPersistenceFailure counts a transcript write that failed.
func (m *Metrics) RecordPersistenceFailure(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.PersistenceFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}
