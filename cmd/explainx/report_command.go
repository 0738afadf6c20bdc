package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/explainx/explainx/internal/checkout"
	"github.com/explainx/explainx/internal/config"
	"github.com/explainx/explainx/internal/explain"
	"github.com/explainx/explainx/internal/trace"
)

// runReport executes one checkout end to end, explains the captured
// trace, and renders the execution report to stdout or a file.
func runReport(args []string, out io.Writer, errOut io.Writer) int {
	flagSet := flag.NewFlagSet("report", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	configPath := flagSet.String("config", defaultConfigPath, "Path to config file")
	outPath := flagSet.String("out", "", "Write the report to this file instead of stdout (e.g. explainX.txt)")
	productID := flagSet.String("product", "LAPTOP-001", "Product ID to purchase")
	quantity := flagSet.Int("quantity", 1, "Quantity to purchase")
	userType := flagSet.String("user", "standard", "User type (premium, standard, guest)")
	state := flagSet.String("state", "CA", "Two letter state code for sales tax")
	promoCode := flagSet.String("promo", "", "Optional promo code")
	express := flagSet.Bool("express", false, "Use express shipping")
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

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelWarn}))
	explainer := explain.New(logger, buildProviderChain(cfg, logger)...)

	store := trace.NewStore()
	ctx := trace.WithStore(context.Background(), store)

	service := checkout.NewService()
	result, err := service.ProcessCheckout(ctx, checkout.CheckoutRequest{
		ProductID:       *productID,
		Quantity:        *quantity,
		UserType:        *userType,
		State:           *state,
		PromoCode:       *promoCode,
		ExpressShipping: *express,
	})
	if err != nil {
		fmt.Fprintf(errOut, "checkout failed: %v\n", err)
		return 1
	}
	if !result.Success {
		fmt.Fprintf(errOut, "checkout rejected at %s: %s\n", result.Step, result.Error)
	}

	records := explainer.Explain(ctx, store.Drain())
	report := explain.Render(records)

	if *outPath == "" {
		fmt.Fprint(out, report)
		return 0
	}
	if err := os.WriteFile(*outPath, []byte(report), 0o644); err != nil {
		fmt.Fprintf(errOut, "failed to write report: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "report written to %s\n", *outPath)
	return 0
}
