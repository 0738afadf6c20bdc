package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/explainx/explainx/internal/explain"
	"github.com/explainx/explainx/internal/trace"
)

func newTestRuntime(t *testing.T) (*Runtime, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return &Runtime{enabled: true, tracer: tp.Tracer(instrumentationName)}, recorder
}

func providerAttribute(t *testing.T, span sdktrace.ReadOnlySpan) string {
	t.Helper()

	for _, attr := range span.Attributes() {
		if attr.Key == attribute.Key("provider") {
			return attr.Value.AsString()
		}
	}
	t.Fatalf("span %q has no provider attribute", span.Name())
	return ""
}

func TestExplainMetricsSpanPerAttempt(t *testing.T) {
	t.Parallel()

	runtime, recorder := newTestRuntime(t)
	metrics := runtime.ExplainMetrics()
	if metrics.StartAttemptSpan == nil {
		t.Fatal("StartAttemptSpan should be set when instrumentation is enabled")
	}

	_, finish := metrics.StartAttemptSpan(context.Background(), "deepseek")
	finish(nil)

	_, finish = metrics.StartAttemptSpan(context.Background(), "openrouter")
	finish(errors.New("connection refused"))

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans=%d, want 2", len(spans))
	}
	for _, span := range spans {
		if span.Name() != "explainx.provider.attempt" {
			t.Fatalf("span name=%q, want explainx.provider.attempt", span.Name())
		}
	}
	if got := providerAttribute(t, spans[0]); got != "deepseek" {
		t.Fatalf("spans[0] provider=%q, want deepseek", got)
	}
	if spans[0].Status().Code != codes.Ok {
		t.Fatalf("spans[0] status=%v, want Ok", spans[0].Status().Code)
	}
	if got := providerAttribute(t, spans[1]); got != "openrouter" {
		t.Fatalf("spans[1] provider=%q, want openrouter", got)
	}
	if spans[1].Status().Code != codes.Error {
		t.Fatalf("spans[1] status=%v, want Error", spans[1].Status().Code)
	}
	if len(spans[1].Events()) == 0 {
		t.Fatal("failed attempt span should record the error event")
	}
}

func TestExplainMetricsDisabledHasNilCallbacks(t *testing.T) {
	t.Parallel()

	runtime := &Runtime{}
	metrics := runtime.ExplainMetrics()
	if metrics.StartAttemptSpan != nil || metrics.OnAttempt != nil || metrics.OnFailure != nil || metrics.OnFallback != nil {
		t.Fatalf("disabled runtime should return empty callbacks, got %+v", metrics)
	}
}

type failingProvider struct {
	name string
}

func (p failingProvider) Name() string { return p.name }

func (p failingProvider) Explain(context.Context, string) (string, error) {
	return "", errors.New("unreachable")
}

func TestExplainerEmitsSpanForEachChainAttempt(t *testing.T) {
	t.Parallel()

	runtime, recorder := newTestRuntime(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	explainer := explain.New(logger, failingProvider{name: "deepseek"}, failingProvider{name: "openrouter"})
	explainer.SetMetrics(runtime.ExplainMetrics())

	records := explainer.Explain(context.Background(), []*trace.Record{{Function: "checkStock", DurationMS: 1.5}})
	if records[0].Explanation == "" {
		t.Fatal("fallback explanation should still be produced")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans=%d, want one per chain attempt", len(spans))
	}
	if got := providerAttribute(t, spans[0]); got != "deepseek" {
		t.Fatalf("spans[0] provider=%q, want deepseek", got)
	}
	if got := providerAttribute(t, spans[1]); got != "openrouter" {
		t.Fatalf("spans[1] provider=%q, want openrouter", got)
	}
	for _, span := range spans {
		if span.Status().Code != codes.Error {
			t.Fatalf("span %q status=%v, want Error for a failed attempt", span.Name(), span.Status().Code)
		}
	}
}
