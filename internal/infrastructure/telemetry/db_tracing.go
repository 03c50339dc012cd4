package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// RegisterDBTracing installs otelgorm so that every statement gets a span.
// Query parameters are left out of spans; they carry account numbers.
// A nil tp uses the global tracer provider.
func RegisterDBTracing(db *gorm.DB, dbSystem string, tp trace.TracerProvider) error {
	opts := []otelgorm.Option{
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
		otelgorm.WithoutMetrics(),
	}
	if tp != nil {
		opts = append(opts, otelgorm.WithTracerProvider(tp))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	return db.Callback().Create().After("gorm:create").Before("otel:after_create").
		Register("bankfeed:annotate_span", annotateSpan)
}

// annotateSpan tags insert spans with the table and flags unique violations,
// which the ingest path treats as a replay
func annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if errors.Is(db.Error, gorm.ErrDuplicatedKey) {
		span.SetAttributes(attribute.Bool("db.duplicate_key", true))
	}
}
