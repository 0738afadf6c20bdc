package providers

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("provider has no API key configured")
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// Provider turns a prompt into an explanation. Implementations are attempted
// in priority order by the explanation chain; any error counts as a failed
// attempt and the chain advances to the next provider. A provider is tried
// at most once per record.
type Provider interface {
	Name() string
	Explain(ctx context.Context, prompt string) (string, error)
}
