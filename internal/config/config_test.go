package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("server.host=%q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8000 {
		t.Fatalf("server.port=%d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.Address() != "0.0.0.0:8000" {
		t.Fatalf("server address=%q, want 0.0.0.0:8000", cfg.Server.Address())
	}

	if len(cfg.Providers) != 2 {
		t.Fatalf("providers=%d, want 2", len(cfg.Providers))
	}
	if cfg.Providers[0].Name != "deepseek" || cfg.Providers[1].Name != "openrouter" {
		t.Fatalf("provider order = %q, %q", cfg.Providers[0].Name, cfg.Providers[1].Name)
	}
	if cfg.Providers[0].APIKeyEnv != "DEEPSEEK_API_KEY" {
		t.Fatalf("providers[0].api_key_env=%q", cfg.Providers[0].APIKeyEnv)
	}
	if cfg.Providers[0].TimeoutMS != 30000 {
		t.Fatalf("providers[0].timeout_ms=%d, want 30000", cfg.Providers[0].TimeoutMS)
	}

	if cfg.Observability.OTel.Enabled {
		t.Fatalf("observability.otel.enabled=%v, want false", cfg.Observability.OTel.Enabled)
	}
	if cfg.Observability.OTel.Endpoint != "localhost:4318" {
		t.Fatalf("observability.otel.endpoint=%q", cfg.Observability.OTel.Endpoint)
	}
	if cfg.Observability.OTel.ServiceName != "explainx" {
		t.Fatalf("observability.otel.service_name=%q, want explainx", cfg.Observability.OTel.ServiceName)
	}
}

func TestLoadAppliesYAMLAndEnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "explainx.yaml")
	configYAML := `server:
  host: 127.0.0.1
  port: 9090
providers:
  - name: deepseek
    base_url: https://example-deepseek.local
    model: deepseek-chat
    api_key_env: DEEPSEEK_API_KEY
    timeout_ms: 15000
observability:
  otel:
    enabled: false
    endpoint: localhost:4318
    insecure: true
    service_name: yaml-explainx
    traces_enabled: true
    metrics_enabled: true
    sampling_ratio: 0.5
    export_timeout_ms: 2000
    metric_export_interval_ms: 5000
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("EXPLAINX_HOST", "0.0.0.0")
	t.Setenv("EXPLAINX_PORT", "9999")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Env wins over the file.
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9999 {
		t.Fatalf("server=%s, want env override 0.0.0.0:9999", cfg.Server.Address())
	}
	// The file replaces the default provider chain entirely.
	if len(cfg.Providers) != 1 {
		t.Fatalf("providers=%d, want 1 from file", len(cfg.Providers))
	}
	if cfg.Providers[0].BaseURL != "https://example-deepseek.local" {
		t.Fatalf("providers[0].base_url=%q", cfg.Providers[0].BaseURL)
	}
	if cfg.Providers[0].TimeoutMS != 15000 {
		t.Fatalf("providers[0].timeout_ms=%d, want 15000", cfg.Providers[0].TimeoutMS)
	}
	if cfg.Observability.OTel.ServiceName != "yaml-explainx" {
		t.Fatalf("observability.otel.service_name=%q", cfg.Observability.OTel.ServiceName)
	}
	if cfg.Observability.OTel.SamplingRatio != 0.5 {
		t.Fatalf("observability.otel.sampling_ratio=%v", cfg.Observability.OTel.SamplingRatio)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "explainx.yaml")
	configYAML := `server:
  host: 127.0.0.1
  bogus_field: true
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() accepted unknown fields")
	}
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "explainx.yaml")
	configYAML := `server:
  port: 9090
---
server:
  port: 9091
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "multiple yaml documents") {
		t.Fatalf("Load() error = %v, want multi-document rejection", err)
	}
}

func TestApplyEnvConfiguresOTel(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SERVICE_NAME", "explainx-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Observability.OTel.Enabled {
		t.Fatal("otel endpoint in env should enable otel")
	}
	if cfg.Observability.OTel.Endpoint != "collector:4318" {
		t.Fatalf("observability.otel.endpoint=%q", cfg.Observability.OTel.Endpoint)
	}
	if cfg.Observability.OTel.ServiceName != "explainx-test" {
		t.Fatalf("observability.otel.service_name=%q", cfg.Observability.OTel.ServiceName)
	}
}

func TestApplyEnvRespectsSDKDisabled(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SDK_DISABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Observability.OTel.Enabled {
		t.Fatal("OTEL_SDK_DISABLED=true should keep otel disabled")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Default()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "missing provider name",
			mutate:  func(cfg *Config) { cfg.Providers[0].Name = "" },
			wantErr: "providers[0].name",
		},
		{
			name:    "missing model",
			mutate:  func(cfg *Config) { cfg.Providers[1].Model = " " },
			wantErr: "providers[1].model",
		},
		{
			name:    "missing api key env",
			mutate:  func(cfg *Config) { cfg.Providers[0].APIKeyEnv = "" },
			wantErr: "providers[0].api_key_env",
		},
		{
			name:    "base url without scheme",
			mutate:  func(cfg *Config) { cfg.Providers[0].BaseURL = "api.deepseek.com" },
			wantErr: "providers[0].base_url",
		},
		{
			name:    "negative timeout",
			mutate:  func(cfg *Config) { cfg.Providers[0].TimeoutMS = -1 },
			wantErr: "providers[0].timeout_ms",
		},
		{
			name:    "duplicate provider name",
			mutate:  func(cfg *Config) { cfg.Providers[1].Name = "DeepSeek" },
			wantErr: "duplicated",
		},
		{
			name: "otel enabled without endpoint",
			mutate: func(cfg *Config) {
				cfg.Observability.OTel.Enabled = true
				cfg.Observability.OTel.Endpoint = ""
			},
			wantErr: "observability.otel.endpoint",
		},
		{
			name: "otel sampling ratio out of range",
			mutate: func(cfg *Config) {
				cfg.Observability.OTel.Enabled = true
				cfg.Observability.OTel.SamplingRatio = 1.5
			},
			wantErr: "sampling_ratio",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			cfg.Providers = append([]ProviderConfig(nil), valid.Providers...)
			tt.mutate(&cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}
