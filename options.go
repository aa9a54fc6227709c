package sdk

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/logo"
	"github.com/playbooklab/sdk/optimize"
	"github.com/playbooklab/sdk/store"
)

// StudioOption configures a Studio.
type StudioOption func(*studioConfig)

type studioConfig struct {
	logger           *slog.Logger
	tracer           trace.Tracer
	meter            metric.Meter
	catalog          *catalog.Catalog
	optimizations    *optimize.Map
	optimizationsSet bool
	store            store.Store
	logos            logo.Resolver
	allowedOrigin    string
}

// WithLogger sets the studio's structured logger.
// Default: a JSON handler on stdout at info level.
func WithLogger(logger *slog.Logger) StudioOption {
	return func(c *studioConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for API request spans.
// Default: no tracing.
func WithTracer(tracer trace.Tracer) StudioOption {
	return func(c *studioConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter. The studio registers request,
// search, and canvas-mutation counters on it and records them from the HTTP
// API. Default: no metrics.
func WithMeter(meter metric.Meter) StudioOption {
	return func(c *studioConfig) {
		c.meter = meter
	}
}

// WithCatalog replaces the embedded tool and playbook catalog, for loading
// reference data from an external file or another source.
func WithCatalog(cat *catalog.Catalog) StudioOption {
	return func(c *studioConfig) {
		c.catalog = cat
	}
}

// WithOptimizations replaces the embedded optimization-suggestion map.
// Passing nil disables optimization suggestions entirely.
func WithOptimizations(m *optimize.Map) StudioOption {
	return func(c *studioConfig) {
		c.optimizations = m
		c.optimizationsSet = true
	}
}

// WithStore sets the session and feed persistence backend.
// Default: an in-memory store.
func WithStore(s store.Store) StudioOption {
	return func(c *studioConfig) {
		c.store = s
	}
}

// WithLogoResolver sets the tool logo resolver.
// Default: logo.URLResolver without a token (Google favicon service).
func WithLogoResolver(r logo.Resolver) StudioOption {
	return func(c *studioConfig) {
		c.logos = r
	}
}

// WithAllowedOrigin sets the CORS origin for the HTTP API.
// Default: all origins.
func WithAllowedOrigin(origin string) StudioOption {
	return func(c *studioConfig) {
		c.allowedOrigin = origin
	}
}
