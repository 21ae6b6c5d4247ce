package tracing

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

var tp *sdktrace.TracerProvider

func MustInit(serviceName, endpoint string) {
	if err := Init(context.Background(), serviceName, endpoint); err != nil {
		log.Fatalf("failed to init tracing for %s: %v", serviceName, err)
	}
}

func Init(ctx context.Context, serviceName, endpoint string) error {
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return err
	}

	tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return nil
}

func Shutdown() {
	if tp == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := tp.Shutdown(ctx); err != nil {
		log.Printf("failed to shutdown tracer provider: %v", err)
	}
}

// InjectToMap serializes the current trace context into a flat map so it can
// ride along inside a stream message.
func InjectToMap(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

// InjectToJSON serializes the current trace context to a JSON object string
// suitable for a stream message field.
func InjectToJSON(ctx context.Context) string {
	data, err := json.Marshal(InjectToMap(ctx))
	if err != nil {
		return ""
	}
	return string(data)
}

// ExtractFromJSON restores a trace context serialized by InjectToJSON.
// Returns ctx unchanged when the payload is absent or malformed.
func ExtractFromJSON(ctx context.Context, payload string) context.Context {
	if payload == "" {
		return ctx
	}
	carrier := propagation.MapCarrier{}
	if err := json.Unmarshal([]byte(payload), (*map[string]string)(&carrier)); err != nil {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
