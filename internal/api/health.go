package api

import (
	"net/http"
	"time"

	"github.com/explainx/explainx/internal/explain"
	"github.com/explainx/explainx/internal/trace"
)

type HealthOptions struct {
	Version   string
	StartedAt time.Time
	Explainer *explain.Explainer
}

type healthResponse struct {
	Status    string   `json:"status"`
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	UptimeSec int64    `json:"uptime_sec"`
	Providers []string `json:"providers"`
}

func HealthHandler(options HealthOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}

		var providers []string
		if options.Explainer != nil {
			providers = options.Explainer.Providers()
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "healthy",
			Service:   "explainx-api",
			Version:   options.Version,
			UptimeSec: int64(time.Since(options.StartedAt).Seconds()),
			Providers: providers,
		})
	})
}

// tracesScope names the store the endpoint reflects.
const tracesScope = "process-default"

type tracesResponse struct {
	Scope string          `json:"scope"`
	Items []*trace.Record `json:"items"`
	Count int             `json:"count"`
}

// TracesHandler exposes a non-destructive view of the process-wide
// default store, which collects records from calls made outside any
// request scope. Request-scoped stores are drained by their own
// handlers and never show up here, so over HTTP this view is normally
// empty.
func TracesHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}

		items := trace.Default().Peek()
		writeJSON(w, http.StatusOK, tracesResponse{
			Scope: tracesScope,
			Items: items,
			Count: len(items),
		})
	})
}
