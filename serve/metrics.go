package serve

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the API's OpenTelemetry counters. A nil *Metrics is valid
// and records nothing, so instrumentation stays optional.
type Metrics struct {
	searches  metric.Int64Counter
	mutations metric.Int64Counter
	requests  metric.Int64Counter
}

// NewMetrics registers the API counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	searches, err := meter.Int64Counter("studio.search.queries",
		metric.WithDescription("Search queries served, by kind"))
	if err != nil {
		return nil, fmt.Errorf("failed to create search counter: %w", err)
	}

	mutations, err := meter.Int64Counter("studio.canvas.mutations",
		metric.WithDescription("Canvas edit operations, by operation"))
	if err != nil {
		return nil, fmt.Errorf("failed to create mutation counter: %w", err)
	}

	requests, err := meter.Int64Counter("studio.http.requests",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	return &Metrics{
		searches:  searches,
		mutations: mutations,
		requests:  requests,
	}, nil
}

func (m *Metrics) recordSearch(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.searches.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) recordMutation(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *Metrics) recordRequest(ctx context.Context) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1)
}
