package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/explainx/explainx/internal/api"
	"github.com/explainx/explainx/internal/checkout"
	"github.com/explainx/explainx/internal/config"
	"github.com/explainx/explainx/internal/explain"
	"github.com/explainx/explainx/internal/observability"
	"github.com/explainx/explainx/internal/providers"
	"github.com/explainx/explainx/internal/resume"
	"github.com/explainx/explainx/internal/version"
)

const defaultConfigPath = "explainx.yaml"

const otelShutdownTimeout = 5 * time.Second
const serverShutdownTimeout = 5 * time.Second
const serverReadHeaderTimeout = 10 * time.Second
const serverReadTimeout = 30 * time.Second
const serverIdleTimeout = 2 * time.Minute

var signalNotifyContext = signal.NotifyContext

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// API keys are commonly kept in a local .env during development; a
	// missing file is not an error.
	_ = godotenv.Load()

	if len(args) == 0 {
		return runServe(nil)
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return 0
	case "serve":
		return runServe(args[1:])
	case "config":
		return runConfig(args[1:], os.Stdout, os.Stderr)
	case "report":
		return runReport(args[1:], os.Stdout, os.Stderr)
	default:
		printUsage(os.Stderr)
		return 2
	}
}

func runConfig(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printConfigUsage(errOut)
		return 2
	}
	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], out, errOut)
	default:
		printConfigUsage(errOut)
		return 2
	}
}

func runConfigValidate(args []string, out io.Writer, errOut io.Writer) int {
	flagSet := flag.NewFlagSet("config validate", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	configPath := flagSet.String("config", defaultConfigPath, "Path to config file")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(errOut, "failed to load config: %v\n", err)
		return 1
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(errOut, "config is invalid: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "config is valid")
	return 0
}

func runServe(args []string) int {
	flagSet := flag.NewFlagSet("serve", flag.ContinueOnError)
	flagSet.SetOutput(os.Stderr)
	configPath := flagSet.String("config", defaultConfigPath, "Path to config file")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config is invalid: %v\n", err)
		return 1
	}

	logger := slog.New(observability.NewTraceLogHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	otelRuntime, otelErr := observability.Setup(context.Background(), cfg.Observability.OTel, version.String(), logger)
	if otelErr != nil {
		logger.Error("failed to initialize opentelemetry; continuing with instrumentation disabled", "error", otelErr)
	}
	if otelRuntime != nil {
		defer shutdownOpenTelemetry(logger, otelRuntime, otelShutdownTimeout)
	}

	chain := buildProviderChain(cfg, logger)
	explainer := explain.New(logger, chain...)
	if otelRuntime != nil {
		explainer.SetMetrics(otelRuntime.ExplainMetrics())
	}

	handler := api.NewRouter(api.RouterOptions{
		AppVersion: version.String(),
		Checkout:   checkout.NewService(),
		Resume:     resume.NewService(),
		Explainer:  explainer,
		Logger:     logger,
	})
	if otelRuntime != nil {
		handler = otelRuntime.WrapHTTPHandler(handler)
	}

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handler,
		ReadHeaderTimeout: serverReadHeaderTimeout,
		ReadTimeout:       serverReadTimeout,
		IdleTimeout:       serverIdleTimeout,
	}

	logger.Info(
		"startup banner",
		"version", version.String(),
		"addr", server.Addr,
		"providers", explainer.Providers(),
		"config_path", *configPath,
	)

	ctx, stop := signalNotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown", "error", err)
			return 1
		}
		logger.Info("server stopped")
		return 0
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			return 1
		}
		return 0
	}
}

// buildProviderChain turns the configured provider list into clients.
// Providers whose key environment variable is unset stay in the chain;
// they short-circuit with a not-configured error at explain time, and
// the local fallback covers a fully unconfigured chain.
func buildProviderChain(cfg config.Config, logger *slog.Logger) []providers.Provider {
	chain := make([]providers.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		apiKey := strings.TrimSpace(os.Getenv(pc.APIKeyEnv))
		if apiKey == "" {
			logger.Warn("provider has no API key; it will be skipped at explain time",
				"provider", pc.Name, "api_key_env", pc.APIKeyEnv)
		}
		chain = append(chain, providers.NewChatProvider(providers.ChatOptions{
			Name:    pc.Name,
			BaseURL: pc.BaseURL,
			APIKey:  apiKey,
			Model:   pc.Model,
			Timeout: time.Duration(pc.TimeoutMS) * time.Millisecond,
		}))
	}
	return chain
}

func shutdownOpenTelemetry(logger *slog.Logger, runtime *observability.Runtime, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := runtime.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down opentelemetry", "error", err)
	}
}

func printUsage(out *os.File) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  explainx serve [--config path/to/explainx.yaml]")
	fmt.Fprintln(out, "  explainx version")
	fmt.Fprintln(out, "  explainx config validate [--config path/to/explainx.yaml]")
	fmt.Fprintln(out, "  explainx report [--config path/to/explainx.yaml] [--out PATH] [--product ID] [--quantity N] [--user TYPE] [--state CODE] [--promo CODE] [--express]")
}

func printConfigUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  explainx config validate [--config path/to/explainx.yaml]")
}
