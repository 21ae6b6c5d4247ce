package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var log = zap.NewNop()

func Init(service string) {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	log = l.With(zap.String("service", service))
}

func L() *zap.Logger {
	return log
}

// WithTrace returns the logger annotated with the trace and span IDs of the
// span carried by ctx, so log lines can be joined to traces.
func WithTrace(ctx context.Context) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

func Sync() {
	_ = log.Sync()
}
