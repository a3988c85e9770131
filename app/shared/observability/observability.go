// Package observability builds the process logger, the prometheus registry
// and the tracer provider, and hands each module its own metrics and tracer.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config selects the observability backends.
type Config struct {
	ServiceName    string
	LogLevel       string
	LogFormat      string
	MetricsAddress string
	OTLPEndpoint   string
	SampleRate     float64
}

// Observability bundles what every module needs for telemetry.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	shutdown func(context.Context) error
}

// Init wires logging, metrics and tracing.
func Init(ctx context.Context, cfg Config) (*Observability, error) {
	logger := NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	shutdown, err := SetupTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	return &Observability{Logger: logger, Registry: registry, shutdown: shutdown}, nil
}

// Tracer returns a named tracer from the global provider.
func (o *Observability) Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Metrics registers and returns the operation metrics for module.
func (o *Observability) Metrics(module string) OperationMetrics {
	return NewPrometheusMetrics(o.Registry, module)
}

// MetricsHandler serves the registry in the prometheus exposition format.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{Registry: o.Registry})
}

// Shutdown flushes pending spans.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.shutdown == nil {
		return nil
	}
	return o.shutdown(ctx)
}
