package serve

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for API spans.
const tracerName = "playbooklab-sdk"

// NewTracerProvider creates a TracerProvider that exports spans through the
// given exporter. The provider uses a batching processor and tags spans
// with the service name.
//
// Callers own the provider lifecycle and should call Shutdown on it when
// the server stops.
func NewTracerProvider(serviceName string, exporter sdktrace.SpanExporter, logger *slog.Logger) *sdktrace.TracerProvider {
	if serviceName == "" {
		serviceName = "playbooklab-studio"
	}
	if logger == nil {
		logger = slog.Default()
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		res = resource.Default()
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	return sdktrace.NewTracerProvider(opts...)
}

// NewTracer returns a tracer from the provider under the SDK's
// instrumentation scope.
func NewTracer(tp *sdktrace.TracerProvider) trace.Tracer {
	return tp.Tracer(tracerName)
}
