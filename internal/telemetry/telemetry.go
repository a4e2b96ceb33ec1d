// Package telemetry wires OpenTelemetry metrics behind a small
// CustomMetrics interface, rebuilt from the teacher's call sites
// (internal/service/mcp/tool.go's m.metrics.RecordToolCall,
// internal/api/server.go's otelProviders.IsEnabled/otelgin.Middleware) since
// the teacher's own internal/telemetry package itself was never retrieved.
// Metrics are disabled by default; a NoopCustomMetrics keeps call sites free
// of nil checks either way.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ToolCallOutcome labels a completed upstream tool dispatch.
type ToolCallOutcome string

const (
	ToolCallOutcomeSuccess ToolCallOutcome = "success"
	ToolCallOutcomeError   ToolCallOutcome = "error"
)

// Config configures Init.
type Config struct {
	ServiceName string
	Enabled     bool
}

// Providers bundles the OpenTelemetry providers the rest of the process
// needs: a Meter to build instruments from, and IsEnabled/ServiceName so
// internal/api can gate otelgin and the /metrics endpoint without importing
// the sdk directly.
type Providers struct {
	Meter   metric.Meter
	enabled bool
	name    string

	exporter *prometheus.Exporter
	provider *sdkmetric.MeterProvider
}

// Init sets up a Prometheus-backed MeterProvider when cfg.Enabled, or a
// no-op Providers otherwise. The Prometheus exporter registers against the
// default Prometheus registry, read by internal/api's promhttp.Handler().
func Init(_ context.Context, cfg *Config) (*Providers, error) {
	if cfg == nil || !cfg.Enabled {
		return &Providers{Meter: noop.NewMeterProvider().Meter(cfg.serviceName()), name: cfg.serviceName()}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Providers{
		Meter:    provider.Meter(cfg.ServiceName),
		enabled:  true,
		name:     cfg.ServiceName,
		exporter: exporter,
		provider: provider,
	}, nil
}

func (c *Config) serviceName() string {
	if c == nil || c.ServiceName == "" {
		return "mcpmux"
	}
	return c.ServiceName
}

// IsEnabled reports whether metrics collection is active.
func (p *Providers) IsEnabled() bool {
	return p != nil && p.enabled
}

// ServiceName is the name instruments and otelgin spans are tagged with.
func (p *Providers) ServiceName() string {
	if p == nil || p.name == "" {
		return "mcpmux"
	}
	return p.name
}

// Shutdown flushes and releases the underlying MeterProvider, a no-op when
// metrics were never enabled.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// CustomMetrics is the instrumentation surface the rest of the core calls
// into, mirroring the teacher's telemetry.CustomMetrics. A no-op default
// means callers never need to check whether metrics are enabled.
type CustomMetrics interface {
	RecordToolCall(ctx context.Context, serverName, toolName string, outcome ToolCallOutcome, duration time.Duration)
}

type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns a CustomMetrics that does nothing.
func NewNoopCustomMetrics() CustomMetrics {
	return noopCustomMetrics{}
}

func (noopCustomMetrics) RecordToolCall(context.Context, string, string, ToolCallOutcome, time.Duration) {}

type otelCustomMetrics struct {
	toolCallDuration metric.Float64Histogram
	toolCallCount    metric.Int64Counter
}

// NewOtelCustomMetrics builds the real instrumented implementation, backed
// by meter.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	duration, err := meter.Float64Histogram(
		"mcpmux.tool_call.duration",
		metric.WithDescription("Duration of upstream tool calls dispatched through the proxy"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_call.duration histogram: %w", err)
	}
	count, err := meter.Int64Counter(
		"mcpmux.tool_call.count",
		metric.WithDescription("Number of upstream tool calls dispatched through the proxy"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_call.count counter: %w", err)
	}
	return &otelCustomMetrics{toolCallDuration: duration, toolCallCount: count}, nil
}

func (m *otelCustomMetrics) RecordToolCall(
	ctx context.Context, serverName, toolName string, outcome ToolCallOutcome, duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attrString("server", serverName),
		attrString("tool", toolName),
		attrString("outcome", string(outcome)),
	)
	m.toolCallDuration.Record(ctx, duration.Seconds(), attrs)
	m.toolCallCount.Add(ctx, 1, attrs)
}

func attrString(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}
