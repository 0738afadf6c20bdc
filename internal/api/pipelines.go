package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/explainx/explainx/internal/checkout"
	"github.com/explainx/explainx/internal/explain"
	"github.com/explainx/explainx/internal/resume"
	"github.com/explainx/explainx/internal/trace"
)

const maxBodyBytes = 1 << 20

// pipelineResponse is the envelope every pipeline endpoint returns: the
// business result, the explained trace records, and the rendered report.
type pipelineResponse struct {
	Result      any             `json:"result"`
	Traces      []*trace.Record `json:"traces"`
	ExplainText string          `json:"explain_text"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// explainTraces drains the request store, explains every record, and
// renders the report text.
func explainTraces(r *http.Request, explainer *explain.Explainer) ([]*trace.Record, string) {
	store, ok := trace.StoreFrom(r.Context())
	if !ok {
		store = trace.Default()
	}
	records := store.Drain()
	records = explainer.Explain(r.Context(), records)
	return records, explain.Render(records)
}

type simpleCheckoutRequest struct {
	Price    float64 `json:"price"`
	UserType string  `json:"user_type"`
}

func SimpleCheckoutHandler(service *checkout.Service, explainer *explain.Explainer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		var payload simpleCheckoutRequest
		if !decodeBody(w, r, &payload) {
			return
		}
		if payload.Price < 0 {
			writeError(w, http.StatusBadRequest, "price must not be negative")
			return
		}
		if payload.UserType == "" {
			writeError(w, http.StatusBadRequest, "user_type is required")
			return
		}

		result, err := service.SimpleCheckout(r.Context(), payload.Price, payload.UserType)
		if err != nil {
			logger.Error("simple checkout failed", "error", err)
			writeError(w, http.StatusInternalServerError, "checkout failed")
			return
		}

		records, text := explainTraces(r, explainer)
		writeJSON(w, http.StatusOK, pipelineResponse{
			Result:      result,
			Traces:      records,
			ExplainText: text,
		})
	})
}

func FullCheckoutHandler(service *checkout.Service, explainer *explain.Explainer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		var payload checkout.CheckoutRequest
		if !decodeBody(w, r, &payload) {
			return
		}
		if payload.ProductID == "" {
			writeError(w, http.StatusBadRequest, "product_id is required")
			return
		}
		if payload.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}

		result, err := service.ProcessCheckout(r.Context(), payload)
		if err != nil {
			logger.Error("full checkout failed", "error", err)
			writeError(w, http.StatusInternalServerError, "checkout failed")
			return
		}

		records, text := explainTraces(r, explainer)
		writeJSON(w, http.StatusOK, pipelineResponse{
			Result:      result,
			Traces:      records,
			ExplainText: text,
		})
	})
}

type resumeSelectRequest struct {
	Domain        string  `json:"domain"`
	MinExperience float64 `json:"min_experience"`
	SalaryBudget  float64 `json:"salary_budget"`
	// Candidates carries the uploaded candidate payload as text (JSON,
	// wrapped JSON, or JSON-lines). When empty, mock applications are
	// generated instead.
	Candidates string `json:"candidates,omitempty"`
}

type resumeSelectResult struct {
	TopCandidates  []resume.Application `json:"top_candidates"`
	TotalProcessed int                  `json:"total_processed"`
	Source         string               `json:"source"`
}

const mockApplicationCount = 100

func ResumeSelectHandler(service *resume.Service, explainer *explain.Explainer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		var payload resumeSelectRequest
		if !decodeBody(w, r, &payload) {
			return
		}
		if payload.Domain == "" {
			writeError(w, http.StatusBadRequest, "domain is required")
			return
		}
		if payload.SalaryBudget <= 0 {
			writeError(w, http.StatusBadRequest, "salary_budget must be positive")
			return
		}

		var applications []resume.Application
		var source, sourceMsg string
		if payload.Candidates != "" {
			applications = resume.ParseCandidates(payload.Candidates)
			source = "upload"
			sourceMsg = fmt.Sprintf("Processed %d candidates from uploaded data", len(applications))
		} else {
			applications = resume.GenerateApplications(mockApplicationCount)
			source = "simulation"
			sourceMsg = fmt.Sprintf("Generated %d mock applications", mockApplicationCount)
		}

		jd := resume.JobDescription{
			Domain:        payload.Domain,
			MinExperience: payload.MinExperience,
			SalaryBudget:  payload.SalaryBudget,
		}

		top, err := service.ProcessApplications(r.Context(), applications, jd)
		if err != nil {
			logger.Error("resume selection failed", "error", err)
			writeError(w, http.StatusInternalServerError, "resume selection failed")
			return
		}

		records, text := explainTraces(r, explainer)
		writeJSON(w, http.StatusOK, pipelineResponse{
			Result: resumeSelectResult{
				TopCandidates:  top,
				TotalProcessed: len(applications),
				Source:         source,
			},
			Traces:      records,
			ExplainText: fmt.Sprintf("SOURCE: %s\n\n%s", sourceMsg, text),
		})
	})
}

type chatRequest struct {
	ReportText string `json:"report_text"`
	Query      string `json:"query"`
}

// ChatHandler answers free-form questions about a rendered report.
func ChatHandler(explainer *explain.Explainer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		var payload chatRequest
		if !decodeBody(w, r, &payload) {
			return
		}
		if payload.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}

		response := explainer.Chat(r.Context(), payload.ReportText, payload.Query)
		writeJSON(w, http.StatusOK, map[string]string{"response": response})
	})
}
