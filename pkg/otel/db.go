package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// DBSpan starts a client span for one named catalog statement.
func DBSpan(ctx context.Context, system, queryName, statement string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "edo."+queryName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String(system),
			semconv.DBOperationKey.String(queryName),
			attribute.String("db.statement", statement),
		),
	)
}

// EndDBSpan records err (if any) and ends span.
func EndDBSpan(span trace.Span, rows int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("db.rows", rows))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
