// Package audit normalizes and persists the compliance audit trail.
//
// Recorder.Record is fire-and-forget: an audit write that fails is logged to
// the operational log and counted, but never reaches the caller and never
// changes the outcome of the business operation it documents.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recordgate/internal/platform/logger"
	"recordgate/pkg/platform/sentinel"
)

// Sink is the append-only destination for normalized rows. Implementations
// assign OccurredAt at write time.
type Sink interface {
	Insert(ctx context.Context, record Record) error
}

// Reader lists persisted rows for audit review.
type Reader interface {
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]Record, error)
}

// Recorder writes one audit row per call.
type Recorder struct {
	sink       Sink
	normalizer Normalizer
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger sets the operational logger that receives dropped writes.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// NewRecorder creates a recorder over sink with fixed default version tags.
func NewRecorder(sink Sink, defaults Defaults, opts ...Option) (*Recorder, error) {
	if sink == nil {
		return nil, errors.New("audit sink is required")
	}
	r := &Recorder{
		sink:       sink,
		normalizer: NewNormalizer(defaults),
		logger:     logger.Discard(),
		tracer:     otel.Tracer("recordgate/audit"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Record normalizes and persists e. It returns nothing: failures are logged and
// discarded. The caller's cancellation does not abort the write.
func (r *Recorder) Record(ctx context.Context, e Event) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := r.tracer.Start(ctx, "audit.record", trace.WithAttributes(
		attribute.String("audit.action", e.Action),
		attribute.String("audit.resource", e.Resource),
	))
	defer span.End()

	result, err := r.write(ctx, e)
	if err == nil {
		if r.metrics != nil {
			r.metrics.IncWritten(result)
		}
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "audit write dropped")
	if r.metrics != nil {
		r.metrics.IncFailure(failureReason(err))
	}
	r.logger.ErrorContext(ctx, "audit write failed, event dropped",
		"tenant_id", e.TenantID,
		"action", e.Action,
		"resource", e.Resource,
		"outcome", e.Outcome,
		"request_id", e.RequestID,
		"reason", failureReason(err),
		"error", err,
	)
}

func (r *Recorder) write(ctx context.Context, e Event) (result Result, err error) {
	record, err := r.normalizer.Normalize(e)
	if err != nil {
		return "", err
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("audit sink panicked: %v", p)
		}
	}()
	if err := r.sink.Insert(ctx, record); err != nil {
		return "", err
	}
	return record.Result, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEvent):
		return "invalid"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, sentinel.ErrInvalidState):
		return "rejected"
	case errors.Is(err, sentinel.ErrUnavailable):
		return "unavailable"
	default:
		return "persist"
	}
}
