package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/resume-builder/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds the custom instruments recorded by the service.
type Metrics struct {
	AIRequests      metric.Int64Counter
	AIErrors        metric.Int64Counter
	AIDuration      metric.Float64Histogram
	ResumesAnalyzed metric.Int64Counter
	RateLimitHits   metric.Int64Counter
}

// Manager owns the tracer and meter providers.
type Manager struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metrics        *Metrics
	metricsHandler http.Handler
	shutdownFuncs  []func(context.Context) error
}

// NewManager sets up tracing and metrics. When observability is disabled it returns
// a manager backed by no-op providers so callers never need nil checks.
func NewManager(ctx context.Context, cfg config.ObservabilityConfig) (*Manager, error) {
	if !cfg.Enabled {
		m := &Manager{
			tracerProvider: tracenoop.NewTracerProvider(),
			meterProvider:  metricnoop.NewMeterProvider(),
		}
		if err := m.initCustomMetrics("resume-builder"); err != nil {
			return nil, err
		}
		return m, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	m := &Manager{}
	if err := m.initTracing(ctx, cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := m.initCustomMetrics(cfg.ServiceName); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initTracing(ctx context.Context, cfg config.ObservabilityConfig, res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	}

	switch {
	case cfg.ConsoleOutput:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create console trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case cfg.OTLP.Enabled:
		exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics(cfg config.ObservabilityConfig, res *resource.Resource) error {
	options := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.Prometheus.Enabled {
		reader, handler, err := SetupPrometheusExporter(cfg.Prometheus)
		if err != nil {
			return err
		}
		options = append(options, sdkmetric.WithReader(reader))
		m.metricsHandler = handler
	} else {
		options = append(options, sdkmetric.WithReader(sdkmetric.NewManualReader()))
	}

	mp := sdkmetric.NewMeterProvider(options...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)
	return nil
}

func (m *Manager) initCustomMetrics(name string) error {
	meter := m.meterProvider.Meter(name)
	m.metrics = &Metrics{}

	var err error
	if m.metrics.AIRequests, err = meter.Int64Counter(
		"resume_builder_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	); err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.metrics.AIErrors, err = meter.Int64Counter(
		"resume_builder_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	); err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.metrics.AIDuration, err = meter.Float64Histogram(
		"resume_builder_ai_duration_seconds",
		metric.WithDescription("Time spent waiting on AI responses"),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("failed to create AI duration metric: %w", err)
	}
	if m.metrics.ResumesAnalyzed, err = meter.Int64Counter(
		"resume_builder_resumes_analyzed_total",
		metric.WithDescription("Total number of resumes analyzed"),
	); err != nil {
		return fmt.Errorf("failed to create resumes analyzed metric: %w", err)
	}
	if m.metrics.RateLimitHits, err = meter.Int64Counter(
		"resume_builder_rate_limit_hits_total",
		metric.WithDescription("Total number of rate-limited requests"),
	); err != nil {
		return fmt.Errorf("failed to create rate limit metric: %w", err)
	}
	return nil
}

// TracerProvider returns the active tracer provider.
func (m *Manager) TracerProvider() trace.TracerProvider { return m.tracerProvider }

// MeterProvider returns the active meter provider.
func (m *Manager) MeterProvider() metric.MeterProvider { return m.meterProvider }

// Tracer returns a named tracer.
func (m *Manager) Tracer(name string) trace.Tracer { return m.tracerProvider.Tracer(name) }

// MetricsHandler returns the Prometheus scrape handler, or nil when Prometheus is disabled.
func (m *Manager) MetricsHandler() http.Handler { return m.metricsHandler }

// RecordAIRequest records one model call.
func (m *Manager) RecordAIRequest(ctx context.Context, provider, model string, elapsed time.Duration, callErr error) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
	)
	m.metrics.AIRequests.Add(ctx, 1, attrs)
	m.metrics.AIDuration.Record(ctx, elapsed.Seconds(), attrs)
	if callErr != nil {
		m.metrics.AIErrors.Add(ctx, 1, attrs)
	}
}

// RecordResumeAnalyzed counts a successful analysis.
func (m *Manager) RecordResumeAnalyzed(ctx context.Context, streamed bool) {
	m.metrics.ResumesAnalyzed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("streamed", streamed)))
}

// RecordRateLimitHit counts a rejected request.
func (m *Manager) RecordRateLimitHit(ctx context.Context, endpoint string) {
	m.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// Shutdown flushes and stops all providers.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range m.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
