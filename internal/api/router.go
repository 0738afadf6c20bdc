// Package api exposes the HTTP surface: the instrumented checkout and
// resume pipelines, the report chat endpoint, the catalog listings, and
// the operational endpoints.
package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/explainx/explainx/internal/checkout"
	"github.com/explainx/explainx/internal/correlation"
	"github.com/explainx/explainx/internal/explain"
	"github.com/explainx/explainx/internal/resume"
	"github.com/explainx/explainx/internal/trace"
)

type RouterOptions struct {
	AppVersion string
	Checkout   *checkout.Service
	Resume     *resume.Service
	Explainer  *explain.Explainer
	Logger     *slog.Logger
}

func NewRouter(options RouterOptions) http.Handler {
	startedAt := time.Now().UTC()
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.Handle("/checkout/simple", withRequestStore(SimpleCheckoutHandler(options.Checkout, options.Explainer, logger)))
	mux.Handle("/checkout/full", withRequestStore(FullCheckoutHandler(options.Checkout, options.Explainer, logger)))
	mux.Handle("/resume/select", withRequestStore(ResumeSelectHandler(options.Resume, options.Explainer, logger)))
	mux.Handle("/chat", ChatHandler(options.Explainer))
	mux.Handle("/products", ProductsHandler())
	mux.Handle("/promo-codes", PromoCodesHandler())
	mux.Handle("/user-types", UserTypesHandler())
	mux.Handle("/states", StatesHandler())
	mux.Handle("/api/health", HealthHandler(HealthOptions{
		Version:   options.AppVersion,
		StartedAt: startedAt,
		Explainer: options.Explainer,
	}))
	mux.Handle("/api/traces", TracesHandler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"name":    "explainx",
			"version": options.AppVersion,
			"status":  "ok",
		})
	})

	return withCORS(withCorrelation(mux))
}

// withRequestStore gives each request its own trace store so concurrent
// pipelines never see each other's records.
func withRequestStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := trace.WithStore(r.Context(), trace.NewStore())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, id := correlation.EnsureRequest(r)
		w.Header().Set(correlation.HeaderName, id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("{\"error\":\"internal server error\"}\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method+", OPTIONS")
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func withCORS(next http.Handler) http.Handler {
	allowedHeaders := strings.Join([]string{
		"Content-Type", "Authorization", correlation.HeaderName,
	}, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
