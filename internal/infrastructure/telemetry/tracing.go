package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of bank feed spans
const TracerName = "github.com/erp/bankfeed"

// Span attribute keys
const (
	SpanAttrExternalID = "bankfeed.external_id"
	SpanAttrAccount    = "bankfeed.account_identifier"
	SpanAttrJournalID  = "bankfeed.journal_id"
	SpanAttrCreated    = "bankfeed.created"
	SpanAttrItems      = "bankfeed.items"
)

// StartSpan starts an internal span from the global tracer provider.
// The caller must End the span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span as failed. Nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span as successful
func SetOK(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}
