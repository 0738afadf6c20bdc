package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Providers     []ProviderConfig    `yaml:"providers"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ProviderConfig describes one explanation provider in chain order. The
// API key is never placed in the file itself; APIKeyEnv names the
// environment variable holding it.
type ProviderConfig struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type ObservabilityConfig struct {
	OTel OTelConfig `yaml:"otel"`
}

type OTelConfig struct {
	Enabled                bool    `yaml:"enabled"`
	Endpoint               string  `yaml:"endpoint"`
	Insecure               bool    `yaml:"insecure"`
	ServiceName            string  `yaml:"service_name"`
	TracesEnabled          bool    `yaml:"traces_enabled"`
	MetricsEnabled         bool    `yaml:"metrics_enabled"`
	SamplingRatio          float64 `yaml:"sampling_ratio"`
	ExportTimeoutMS        int     `yaml:"export_timeout_ms"`
	MetricExportIntervalMS int     `yaml:"metric_export_interval_ms"`
}

const (
	defaultProviderTimeoutMS = 30000

	defaultOTELEndpoint               = "localhost:4318"
	defaultOTELServiceName            = "explainx"
	defaultOTELSamplingRatio          = 1.0
	defaultOTELExportTimeoutMS        = 3000
	defaultOTELMetricExportIntervalMS = 10000
)

func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Providers: []ProviderConfig{
			{
				Name:      "deepseek",
				BaseURL:   "https://api.deepseek.com",
				Model:     "deepseek-chat",
				APIKeyEnv: "DEEPSEEK_API_KEY",
				TimeoutMS: defaultProviderTimeoutMS,
			},
			{
				Name:      "openrouter",
				BaseURL:   "https://openrouter.ai/api/v1",
				Model:     "mistralai/mistral-7b-instruct:free",
				APIKeyEnv: "OPENROUTER_API_KEY",
				TimeoutMS: defaultProviderTimeoutMS,
			},
		},
		Observability: ObservabilityConfig{
			OTel: OTelConfig{
				Enabled:                false,
				Endpoint:               defaultOTELEndpoint,
				Insecure:               true,
				ServiceName:            defaultOTELServiceName,
				TracesEnabled:          true,
				MetricsEnabled:         true,
				SamplingRatio:          defaultOTELSamplingRatio,
				ExportTimeoutMS:        defaultOTELExportTimeoutMS,
				MetricExportIntervalMS: defaultOTELMetricExportIntervalMS,
			},
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			decoder := yaml.NewDecoder(bytes.NewReader(data))
			decoder.KnownFields(true)
			decodeErr := decoder.Decode(&cfg)
			if errors.Is(decodeErr, io.EOF) {
				decodeErr = nil
			}
			if decodeErr != nil {
				return Config{}, fmt.Errorf("parse yaml %q: %w", path, decodeErr)
			}
			// Reject multi-document configs to keep runtime configuration
			// unambiguous and avoid hidden trailing documents.
			var trailing any
			trailingErr := decoder.Decode(&trailing)
			if trailingErr != nil && !errors.Is(trailingErr, io.EOF) {
				return Config{}, fmt.Errorf("parse yaml %q: %w", path, trailingErr)
			}
			if trailing != nil {
				return Config{}, fmt.Errorf("parse yaml %q: multiple yaml documents are not supported", path)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks configuration invariants required at runtime.
func Validate(cfg Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", cfg.Server.Port)
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for idx, provider := range cfg.Providers {
		name := fmt.Sprintf("providers[%d]", idx)
		if err := validateProvider(name, provider); err != nil {
			return err
		}
		normalized := strings.ToLower(strings.TrimSpace(provider.Name))
		if seen[normalized] {
			return fmt.Errorf("%s.name %q is duplicated", name, provider.Name)
		}
		seen[normalized] = true
	}

	if err := validateOTelConfig(cfg.Observability.OTel); err != nil {
		return err
	}

	return nil
}

func validateProvider(name string, provider ProviderConfig) error {
	if strings.TrimSpace(provider.Name) == "" {
		return fmt.Errorf("%s.name is required", name)
	}
	if strings.TrimSpace(provider.Model) == "" {
		return fmt.Errorf("%s.model is required", name)
	}
	if strings.TrimSpace(provider.APIKeyEnv) == "" {
		return fmt.Errorf("%s.api_key_env is required", name)
	}
	if provider.TimeoutMS < 0 {
		return fmt.Errorf("%s.timeout_ms must not be negative (got %d)", name, provider.TimeoutMS)
	}

	baseURL := strings.TrimSpace(provider.BaseURL)
	if baseURL == "" {
		return fmt.Errorf("%s.base_url is required", name)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse %s.base_url: %w", name, err)
	}
	if strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("%s.base_url must include scheme and host (got %q)", name, provider.BaseURL)
	}

	return nil
}

func validateOTelConfig(cfg OTelConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return errors.New("observability.otel.endpoint is required when observability.otel.enabled=true")
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		return errors.New("observability.otel.service_name is required when observability.otel.enabled=true")
	}
	if !cfg.TracesEnabled && !cfg.MetricsEnabled {
		return errors.New("observability.otel requires traces_enabled and/or metrics_enabled when enabled")
	}
	if cfg.SamplingRatio < 0 || cfg.SamplingRatio > 1 {
		return fmt.Errorf("observability.otel.sampling_ratio must be between 0 and 1 (got %f)", cfg.SamplingRatio)
	}
	if cfg.ExportTimeoutMS <= 0 {
		return fmt.Errorf("observability.otel.export_timeout_ms must be > 0 (got %d)", cfg.ExportTimeoutMS)
	}
	if cfg.MetricExportIntervalMS <= 0 {
		return fmt.Errorf("observability.otel.metric_export_interval_ms must be > 0 (got %d)", cfg.MetricExportIntervalMS)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("EXPLAINX_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if port := os.Getenv("EXPLAINX_PORT"); port != "" {
		v, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid EXPLAINX_PORT: %w", err)
		}
		cfg.Server.Port = v
	}

	otelConfigured := false
	otelSDKDisabledSet := false
	if sdkDisabled := strings.TrimSpace(os.Getenv("OTEL_SDK_DISABLED")); sdkDisabled != "" {
		v, err := strconv.ParseBool(sdkDisabled)
		if err != nil {
			return fmt.Errorf("invalid OTEL_SDK_DISABLED: %w", err)
		}
		cfg.Observability.OTel.Enabled = !v
		otelSDKDisabledSet = true
		otelConfigured = true
	}
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); endpoint != "" {
		cfg.Observability.OTel.Endpoint = endpoint
		otelConfigured = true
	}
	if insecure := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); insecure != "" {
		v, err := strconv.ParseBool(insecure)
		if err != nil {
			return fmt.Errorf("invalid OTEL_EXPORTER_OTLP_INSECURE: %w", err)
		}
		cfg.Observability.OTel.Insecure = v
		otelConfigured = true
	}
	if serviceName := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")); serviceName != "" {
		cfg.Observability.OTel.ServiceName = serviceName
		otelConfigured = true
	}
	if tracesExporter := strings.TrimSpace(os.Getenv("OTEL_TRACES_EXPORTER")); tracesExporter != "" {
		enabled, err := otelExporterEnabled(tracesExporter)
		if err != nil {
			return fmt.Errorf("invalid OTEL_TRACES_EXPORTER: %w", err)
		}
		cfg.Observability.OTel.TracesEnabled = enabled
		otelConfigured = true
	}
	if metricsExporter := strings.TrimSpace(os.Getenv("OTEL_METRICS_EXPORTER")); metricsExporter != "" {
		enabled, err := otelExporterEnabled(metricsExporter)
		if err != nil {
			return fmt.Errorf("invalid OTEL_METRICS_EXPORTER: %w", err)
		}
		cfg.Observability.OTel.MetricsEnabled = enabled
		otelConfigured = true
	}
	if samplingRatio := strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER_ARG")); samplingRatio != "" {
		v, err := strconv.ParseFloat(samplingRatio, 64)
		if err != nil {
			return fmt.Errorf("invalid OTEL_TRACES_SAMPLER_ARG: %w", err)
		}
		cfg.Observability.OTel.SamplingRatio = v
		otelConfigured = true
	}
	if exportTimeout := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TIMEOUT")); exportTimeout != "" {
		v, err := strconv.Atoi(exportTimeout)
		if err != nil {
			return fmt.Errorf("invalid OTEL_EXPORTER_OTLP_TIMEOUT: %w", err)
		}
		cfg.Observability.OTel.ExportTimeoutMS = v
		otelConfigured = true
	}
	if metricExportInterval := strings.TrimSpace(os.Getenv("OTEL_METRIC_EXPORT_INTERVAL")); metricExportInterval != "" {
		v, err := strconv.Atoi(metricExportInterval)
		if err != nil {
			return fmt.Errorf("invalid OTEL_METRIC_EXPORT_INTERVAL: %w", err)
		}
		cfg.Observability.OTel.MetricExportIntervalMS = v
		otelConfigured = true
	}
	if otelConfigured && !otelSDKDisabledSet {
		cfg.Observability.OTel.Enabled = true
	}

	return nil
}

func otelExporterEnabled(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "otlp":
		return true, nil
	case "none":
		return false, nil
	default:
		return false, fmt.Errorf("must be one of otlp, none (got %q)", value)
	}
}
