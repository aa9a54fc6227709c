package serve

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNewTracerProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exporter := tracetest.NewInMemoryExporter()

	tp := NewTracerProvider("test-studio", exporter, logger)
	require.NotNil(t, tp)
	defer tp.Shutdown(context.Background())

	tracer := NewTracer(tp)
	require.NotNil(t, tracer)

	ctx, span := tracer.Start(context.Background(), "test-span")
	require.NotNil(t, span)

	spanCtx := trace.SpanContextFromContext(ctx)
	assert.True(t, spanCtx.IsValid())

	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "test-span", spans[0].Name)
}

func TestNewTracerProvider_Defaults(t *testing.T) {
	// Nil exporter and logger still produce a working provider.
	tp := NewTracerProvider("", nil, nil)
	require.NotNil(t, tp)
	defer tp.Shutdown(context.Background())

	_, span := NewTracer(tp).Start(context.Background(), "noop-span")
	require.NotNil(t, span)
	span.End()
}
