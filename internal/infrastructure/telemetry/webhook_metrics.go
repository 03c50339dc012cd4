package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Delivery outcomes recorded by RecordDelivery
const (
	OutcomeOK           = "ok"
	OutcomeForbidden    = "forbidden"
	OutcomeTooLarge     = "too_large"
	OutcomeBadRequest   = "bad_request"
	OutcomeUnauthorized = "unauthorized"
	OutcomeUnsupported  = "unsupported"
	OutcomeError        = "error"
)

// Statement line results recorded per transaction
const (
	ResultCreated   = "created"
	ResultDuplicate = "duplicate"
	ResultFailed    = "failed"
)

// WebhookMetrics counts webhook deliveries and the statement lines they
// produce. A nil *WebhookMetrics records nothing.
type WebhookMetrics struct {
	deliveries *Counter
	duration   *Histogram
	lines      *Counter
}

// NewWebhookMetrics registers the bank feed instruments on meter
func NewWebhookMetrics(meter metric.Meter) (*WebhookMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	deliveries, err := NewCounter(meter, "bankfeed.webhook.deliveries",
		"Webhook deliveries by outcome", "{delivery}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "bankfeed.webhook.duration",
		"Time spent handling a webhook delivery", "s", HTTPDurationBuckets...)
	if err != nil {
		return nil, err
	}
	lines, err := NewCounter(meter, "bankfeed.statement_lines",
		"Transactions processed by result", "{transaction}")
	if err != nil {
		return nil, err
	}

	return &WebhookMetrics{deliveries: deliveries, duration: duration, lines: lines}, nil
}

// RecordDelivery counts one delivery and its handling time
func (m *WebhookMetrics) RecordDelivery(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.deliveries.Inc(ctx, AttrOutcome.String(outcome))
	m.duration.RecordDuration(ctx, elapsed, AttrOutcome.String(outcome))
}

// LineCreated counts a newly persisted statement line
func (m *WebhookMetrics) LineCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.lines.Inc(ctx, AttrResult.String(ResultCreated))
}

// LineDuplicate counts a replayed transaction answered from the existing line
func (m *WebhookMetrics) LineDuplicate(ctx context.Context) {
	if m == nil {
		return
	}
	m.lines.Inc(ctx, AttrResult.String(ResultDuplicate))
}

// LineFailed counts a transaction that could not be recorded
func (m *WebhookMetrics) LineFailed(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.lines.Inc(ctx, AttrResult.String(ResultFailed), AttrErrorCode.String(code))
}
