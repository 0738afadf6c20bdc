package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newChatTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestChatProviderExplain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
		wantErr  bool
	}{
		{
			name:     "extracts first choice content",
			status:   http.StatusOK,
			body:     `{"choices":[{"message":{"role":"assistant","content":"It adds two numbers."}}]}`,
			wantText: "It adds two numbers.",
		},
		{
			name:    "non-2xx status is a failure",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"rate limited"}}`,
			wantErr: true,
		},
		{
			name:    "malformed body is a failure",
			status:  http.StatusOK,
			body:    `{"choices":`,
			wantErr: true,
		},
		{
			name:    "empty choices is a failure",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: true,
		},
		{
			name:    "blank content is a failure",
			status:  http.StatusOK,
			body:    `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newChatTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization header = %q, want bearer credential", got)
				}
				var payload map[string]any
				if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
					t.Errorf("decode request body: %v", err)
				}
				if model, _ := payload["model"].(string); model != "test-model" {
					t.Errorf("request model = %q, want test-model", model)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			provider := NewChatProvider(ChatOptions{
				Name:    "test",
				BaseURL: server.URL,
				APIKey:  "test-key",
				Model:   "test-model",
			})

			text, err := provider.Explain(context.Background(), "explain this")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Explain() = %q, want error", text)
				}
				return
			}
			if err != nil {
				t.Fatalf("Explain() error: %v", err)
			}
			if text != tt.wantText {
				t.Fatalf("Explain() = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestChatProviderWithoutKeyFailsWithoutNetwork(t *testing.T) {
	t.Parallel()

	provider := NewChatProvider(ChatOptions{
		Name:    "unconfigured",
		BaseURL: "http://127.0.0.1:1",
		Model:   "test-model",
	})
	if provider.Configured() {
		t.Fatal("Configured() = true for provider without key")
	}
	if _, err := provider.Explain(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Explain() error = %v, want ErrNotConfigured", err)
	}
}

func TestChatProviderAttemptTimeout(t *testing.T) {
	t.Parallel()

	server := newChatTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	provider := NewChatProvider(ChatOptions{
		Name:    "slow",
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 50 * time.Millisecond,
	})

	start := time.Now()
	if _, err := provider.Explain(context.Background(), "x"); err == nil {
		t.Fatal("Explain() succeeded against a hung provider")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Explain() took %v, timeout did not bound the attempt", elapsed)
	}
}
