package explain

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/explainx/explainx/internal/providers"
	"github.com/explainx/explainx/internal/trace"
)

// Metrics holds optional callbacks the Explainer invokes at key points of
// the provider chain.
type Metrics struct {
	// OnAttempt is called before each remote provider attempt.
	OnAttempt func(provider string)
	// OnFailure is called each time a remote provider attempt fails.
	OnFailure func(provider string)
	// OnFallback is called when every remote provider failed and the local
	// fallback produced the explanation.
	OnFallback func()
	// StartAttemptSpan, when set, opens a tracing span around one remote
	// provider attempt. The returned context is handed to the provider and
	// the finish function is called once with the attempt's error (nil on
	// success).
	StartAttemptSpan func(ctx context.Context, provider string) (context.Context, func(err error))
}

// Explainer fills trace records with explanations. Remote providers are
// tried once each in priority order; when all fail, a deterministic local
// fallback is synthesized from the record itself, so Explain never fails.
type Explainer struct {
	chain   []providers.Provider
	logger  *slog.Logger
	metrics atomic.Value // *Metrics
}

func New(logger *slog.Logger, chain ...providers.Provider) *Explainer {
	if logger == nil {
		logger = slog.Default()
	}
	explainer := &Explainer{chain: chain, logger: logger}
	explainer.metrics.Store(&Metrics{})
	return explainer
}

// SetMetrics replaces the metric callbacks used by the chain.
func (e *Explainer) SetMetrics(m *Metrics) {
	if e == nil {
		return
	}
	if m == nil {
		m = &Metrics{}
	}
	e.metrics.Store(m)
}

func (e *Explainer) loadMetrics() *Metrics {
	m, _ := e.metrics.Load().(*Metrics)
	if m == nil {
		return &Metrics{}
	}
	return m
}

// Providers returns the names of the configured remote chain in priority
// order.
func (e *Explainer) Providers() []string {
	names := make([]string, 0, len(e.chain))
	for _, provider := range e.chain {
		names = append(names, provider.Name())
	}
	return names
}

// Explain fills every record's explanation in drain order and returns the
// same slice. Re-running over already-explained records is safe: each pass
// simply overwrites with a freshly computed value.
func (e *Explainer) Explain(ctx context.Context, records []*trace.Record) []*trace.Record {
	for _, record := range records {
		e.explainOne(ctx, record)
	}
	return records
}

func (e *Explainer) explainOne(ctx context.Context, record *trace.Record) {
	if record == nil {
		return
	}
	prompt := BuildPrompt(record)
	if text, ok := e.attemptChain(ctx, prompt, record.Function); ok {
		record.Explanation = text
		return
	}
	if m := e.loadMetrics(); m.OnFallback != nil {
		m.OnFallback()
	}
	record.Explanation = FallbackExplanation(record)
}

// attemptChain walks the remote providers in priority order and returns the
// first successful text. Any failure (transport error, timeout, non-2xx,
// malformed response) means advancing to the next provider; nothing is
// retried and nothing is surfaced to the caller.
func (e *Explainer) attemptChain(ctx context.Context, prompt, function string) (string, bool) {
	for _, provider := range e.chain {
		m := e.loadMetrics()
		if m.OnAttempt != nil {
			m.OnAttempt(provider.Name())
		}
		attemptCtx := ctx
		var finish func(error)
		if m.StartAttemptSpan != nil {
			attemptCtx, finish = m.StartAttemptSpan(ctx, provider.Name())
		}
		text, err := provider.Explain(attemptCtx, prompt)
		if finish != nil {
			finish(err)
		}
		if err != nil {
			if m.OnFailure != nil {
				m.OnFailure(provider.Name())
			}
			e.logger.Warn("explanation provider failed",
				"provider", provider.Name(),
				"function", function,
				"error", err,
			)
			continue
		}
		return text, true
	}
	return "", false
}
