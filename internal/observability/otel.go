// Package observability wires OpenTelemetry traces and metrics around
// the HTTP surface and the explanation provider chain, and carries
// correlation identifiers into structured log output.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/explainx/explainx/internal/config"
	"github.com/explainx/explainx/internal/explain"
)

const instrumentationName = "explainx"

// Runtime exposes OpenTelemetry HTTP wrappers and explanation metric
// hooks.
type Runtime struct {
	enabled bool

	tracer oteltrace.Tracer

	attemptsCounter metric.Int64Counter
	failuresCounter metric.Int64Counter
	fallbackCounter metric.Int64Counter

	shutdownFns []func(context.Context) error
}

// Setup initializes OpenTelemetry providers and runtime hooks.
func Setup(ctx context.Context, cfg config.OTelConfig, serviceVersion string, logger *slog.Logger) (*Runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runtime := &Runtime{}
	if !cfg.Enabled {
		return runtime, nil
	}

	exportTimeout := time.Duration(cfg.ExportTimeoutMS) * time.Millisecond
	metricInterval := time.Duration(cfg.MetricExportIntervalMS) * time.Millisecond
	otlpEndpoint, inferredInsecure, err := normalizeOTLPEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	insecure := cfg.Insecure
	if strings.Contains(strings.TrimSpace(cfg.Endpoint), "://") {
		// Endpoint URLs carry explicit transport intent and win over the
		// insecure toggle to avoid mismatches like https endpoints + insecure=true.
		insecure = inferredInsecure
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", strings.TrimSpace(cfg.ServiceName)),
		attribute.String("service.version", strings.TrimSpace(serviceVersion)),
	)

	if cfg.TracesEnabled {
		traceExporterOptions := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(otlpEndpoint),
			otlptracehttp.WithTimeout(exportTimeout),
		}
		if insecure {
			traceExporterOptions = append(traceExporterOptions, otlptracehttp.WithInsecure())
		}
		traceExporter, err := otlptracehttp.New(ctx, traceExporterOptions...)
		if err != nil {
			return nil, fmt.Errorf("initialize otel trace exporter: %w", err)
		}

		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tracerProvider)
		runtime.shutdownFns = append(runtime.shutdownFns, tracerProvider.Shutdown)
	}

	if cfg.MetricsEnabled {
		metricExporterOptions := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(otlpEndpoint),
			otlpmetrichttp.WithTimeout(exportTimeout),
		}
		if insecure {
			metricExporterOptions = append(metricExporterOptions, otlpmetrichttp.WithInsecure())
		}
		metricExporter, err := otlpmetrichttp.New(ctx, metricExporterOptions...)
		if err != nil {
			_ = runtime.Shutdown(context.Background())
			return nil, fmt.Errorf("initialize otel metric exporter: %w", err)
		}

		reader := sdkmetric.NewPeriodicReader(
			metricExporter,
			sdkmetric.WithInterval(metricInterval),
			sdkmetric.WithTimeout(exportTimeout),
		)
		meterProvider := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		otel.SetMeterProvider(meterProvider)
		runtime.shutdownFns = append(runtime.shutdownFns, meterProvider.Shutdown)
	}

	otel.SetTextMapPropagator(propagation.TraceContext{})

	runtime.tracer = otel.Tracer(instrumentationName)

	meter := otel.Meter(instrumentationName)
	runtime.attemptsCounter = newCounter(meter, logger,
		"explainx.provider.attempts_total",
		"Count of remote explanation provider attempts.")
	runtime.failuresCounter = newCounter(meter, logger,
		"explainx.provider.failures_total",
		"Count of failed remote explanation provider attempts.")
	runtime.fallbackCounter = newCounter(meter, logger,
		"explainx.provider.fallback_total",
		"Count of explanations produced by the local fallback after the whole chain failed.")

	runtime.enabled = true
	if logger != nil {
		logger.Info(
			"opentelemetry enabled",
			"otel_endpoint", otlpEndpoint,
			"otel_traces_enabled", cfg.TracesEnabled,
			"otel_metrics_enabled", cfg.MetricsEnabled,
			"otel_sampling_ratio", cfg.SamplingRatio,
		)
	}

	return runtime, nil
}

func newCounter(meter metric.Meter, logger *slog.Logger, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil && logger != nil {
		logger.Warn("failed to create opentelemetry counter", "metric", name, "error", err)
	}
	return counter
}

// Enabled reports whether OpenTelemetry instrumentation is active.
func (r *Runtime) Enabled() bool {
	return r != nil && r.enabled
}

// WrapHTTPHandler wraps an inbound HTTP handler with OpenTelemetry spans.
func (r *Runtime) WrapHTTPHandler(next http.Handler) http.Handler {
	if next == nil {
		next = http.NotFoundHandler()
	}
	if !r.Enabled() {
		return next
	}
	return otelhttp.NewHandler(
		next,
		"explainx.request",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return normalizedMethod(req.Method) + " " + req.URL.Path
		}),
	)
}

// ExplainMetrics returns the tracing and metric callbacks for the
// explanation chain: a span around each remote provider attempt plus the
// attempt/failure/fallback counters. With instrumentation disabled the
// callbacks are nil and the explainer skips them.
func (r *Runtime) ExplainMetrics() *explain.Metrics {
	if !r.Enabled() {
		return &explain.Metrics{}
	}
	return &explain.Metrics{
		StartAttemptSpan: func(ctx context.Context, provider string) (context.Context, func(error)) {
			spanCtx, span := r.tracer.Start(ctx, "explainx.provider.attempt",
				oteltrace.WithAttributes(attribute.String("provider", provider)))
			return spanCtx, func(err error) {
				if err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				} else {
					span.SetStatus(codes.Ok, "")
				}
				span.End()
			}
		},
		OnAttempt: func(provider string) {
			if r.attemptsCounter != nil {
				r.attemptsCounter.Add(context.Background(), 1,
					metric.WithAttributes(attribute.String("provider", provider)))
			}
		},
		OnFailure: func(provider string) {
			if r.failuresCounter != nil {
				r.failuresCounter.Add(context.Background(), 1,
					metric.WithAttributes(attribute.String("provider", provider)))
			}
		},
		OnFallback: func() {
			if r.fallbackCounter != nil {
				r.fallbackCounter.Add(context.Background(), 1)
			}
		},
	}
}

// Shutdown flushes and stops OpenTelemetry providers.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil || len(r.shutdownFns) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for i := len(r.shutdownFns) - 1; i >= 0; i-- {
		if err := r.shutdownFns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func normalizeOTLPEndpoint(raw string) (string, bool, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return "", false, errors.New("observability.otel.endpoint must not be empty")
	}

	if !strings.Contains(endpoint, "://") {
		return endpoint, false, nil
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse observability.otel.endpoint: %w", err)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", false, fmt.Errorf("observability.otel.endpoint must include host (got %q)", raw)
	}

	switch strings.ToLower(strings.TrimSpace(parsed.Scheme)) {
	case "http":
		return parsed.Host, true, nil
	case "https":
		return parsed.Host, false, nil
	default:
		return "", false, fmt.Errorf("observability.otel.endpoint scheme must be http or https when provided (got %q)", parsed.Scheme)
	}
}

func normalizedMethod(method string) string {
	method = strings.TrimSpace(method)
	if method == "" {
		return "UNKNOWN"
	}
	return method
}
