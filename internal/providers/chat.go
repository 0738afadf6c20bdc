package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultAttemptTimeout = 30 * time.Second

	// Sampling parameters shared by every explanation request.
	chatTemperature      = 0.3
	chatMaxTokens        = 1000
	chatTopP             = 0.9
	chatFrequencyPenalty = 0.2
	chatPresencePenalty  = 0.2
)

// ChatOptions configures a ChatProvider. BaseURL points at any service that
// speaks the OpenAI chat-completions dialect (DeepSeek and OpenRouter both
// do), so one implementation covers the whole remote chain.
type ChatOptions struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests and for wrapping
	// with instrumentation.
	HTTPClient *http.Client
}

// ChatProvider calls an OpenAI-compatible chat-completions endpoint with a
// bearer credential and extracts the first choice's message content. Every
// attempt carries its own timeout; transport errors, non-2xx statuses, and
// malformed or empty responses all surface as ordinary errors for the chain
// to treat as a failed attempt.
type ChatProvider struct {
	name       string
	model      string
	timeout    time.Duration
	configured bool
	client     *openai.Client
}

func NewChatProvider(opts ChatOptions) *ChatProvider {
	cfg := openai.DefaultConfig(opts.APIKey)
	if baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}

	return &ChatProvider{
		name:       strings.TrimSpace(opts.Name),
		model:      strings.TrimSpace(opts.Model),
		timeout:    timeout,
		configured: strings.TrimSpace(opts.APIKey) != "",
		client:     openai.NewClientWithConfig(cfg),
	}
}

func (p *ChatProvider) Name() string {
	return p.name
}

// Configured reports whether the provider holds a credential. Unconfigured
// providers fail immediately so the chain can move on without a network
// round trip.
func (p *ChatProvider) Configured() bool {
	return p != nil && p.configured
}

func (p *ChatProvider) Explain(ctx context.Context, prompt string) (string, error) {
	if !p.Configured() {
		return "", ErrNotConfigured
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:      chatTemperature,
		MaxTokens:        chatMaxTokens,
		TopP:             chatTopP,
		FrequencyPenalty: chatFrequencyPenalty,
		PresencePenalty:  chatPresencePenalty,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion against %s: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
