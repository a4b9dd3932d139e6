// Package observe records dictation metrics through the OpenTelemetry
// metrics API. InitProvider bridges them to a Prometheus /metrics endpoint;
// tests should build Metrics from their own MeterProvider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "dictator"

// Metric names.
const (
	SessionsName              = "dictator.sessions"
	TranscriptionDurationName = "dictator.transcription.duration"
	TranscriptionErrorsName   = "dictator.transcription.errors"
	ClipDurationName          = "dictator.clip.duration"
)

// Transcription outcomes used as the status attribute.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Metrics holds the instruments. A nil *Metrics records nothing.
type Metrics struct {
	// Sessions counts recording sessions started, by language.
	Sessions metric.Int64Counter

	// TranscriptionDuration tracks remote call latency, by provider and status.
	TranscriptionDuration metric.Float64Histogram

	// TranscriptionErrors counts failed remote calls, by provider.
	TranscriptionErrors metric.Int64Counter

	// ClipDuration tracks the length of captured audio.
	ClipDuration metric.Float64Histogram
}

var latencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30}

var clipBuckets = []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Sessions, err = m.Int64Counter(SessionsName,
		metric.WithDescription("Recording sessions started by language."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram(TranscriptionDurationName,
		metric.WithDescription("Latency of remote transcription calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionErrors, err = m.Int64Counter(TranscriptionErrorsName,
		metric.WithDescription("Failed transcription calls by provider."),
	); err != nil {
		return nil, err
	}
	if met.ClipDuration, err = m.Float64Histogram(ClipDurationName,
		metric.WithDescription("Duration of captured audio clips."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(clipBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordSession counts a started session.
func (m *Metrics) RecordSession(ctx context.Context, lang string) {
	if m == nil {
		return
	}
	m.Sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("language", lang)))
}

// RecordClip records the captured audio length.
func (m *Metrics) RecordClip(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.ClipDuration.Record(ctx, d.Seconds())
}

// RecordTranscription records one remote call. status is StatusOK,
// StatusEmpty or StatusError; errors are also counted separately.
func (m *Metrics) RecordTranscription(ctx context.Context, provider, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.TranscriptionDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
	if status == StatusError {
		m.TranscriptionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
	}
}
