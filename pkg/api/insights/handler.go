// Package insights exposes the analysis pipeline over HTTP. Expected
// analysis failures ship as HTTP 200 with a status:"error" envelope; only
// transport problems and panics produce non-200 responses.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"financial_insights/pkg/core/assemble"
	"financial_insights/pkg/core/pipeline"
)

// Runner is the pipeline entry point the handler depends on.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (map[string]interface{}, error)
}

// Handler holds dependencies for the insights endpoints.
type Handler struct {
	Runner Runner
	Log    *zap.Logger
}

func NewHandler(runner Runner, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Runner: runner, Log: log}
}

// Routes mounts the service endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleGreeting)
	r.Get("/health", h.HandleHealth)
	r.Post("/api/insights", h.HandleInsights)
	return r
}

type insightsRequest struct {
	PDFURL      string   `json:"pdfUrl"`
	CompanyName string   `json:"companyName"`
	AnnualRent  flexRent `json:"annualRent"`
}

// flexRent accepts both numeric and quoted rent values.
type flexRent float64

func (f *flexRent) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, " ", ""), 64)
	if err != nil {
		return fmt.Errorf("annualRent must be numeric")
	}
	*f = flexRent(v)
	return nil
}

func (h *Handler) HandleGreeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Financial insights API. POST /api/insights to analyze a document.",
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// HandleInsights runs the full analysis for one accounts PDF.
func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			h.Log.Error("panic in insights handler", zap.Any("panic", rec))
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"detail": "Internal server error",
			})
		}
	}()

	var req insightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, start, assemble.Error("Invalid request body", err.Error()))
		return
	}
	if req.PDFURL == "" {
		writeEnvelope(w, start, assemble.Error("Missing required field: pdfUrl", nil))
		return
	}
	if req.CompanyName == "" {
		writeEnvelope(w, start, assemble.Error("Missing required field: companyName", nil))
		return
	}

	envelope, err := h.Runner.Run(r.Context(), pipeline.Request{
		PDFURL:      req.PDFURL,
		CompanyName: req.CompanyName,
		AnnualRent:  float64(req.AnnualRent),
	})
	if err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) {
			env := assemble.Error(se.Message, map[string]interface{}{
				"stage": se.Stage,
				"kind":  se.Kind,
				"info":  se.Details,
			})
			// Document identity is known, so provenance ships even on failure.
			env["sources"] = assemble.CanonicalSources(req.PDFURL, nil)
			writeEnvelope(w, start, env)
			return
		}
		h.Log.Error("pipeline internal failure", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"detail": err.Error(),
		})
		return
	}

	writeEnvelope(w, start, envelope)
}

func writeEnvelope(w http.ResponseWriter, start time.Time, envelope map[string]interface{}) {
	envelope["processing_time"] = time.Since(start).Seconds()
	writeJSON(w, http.StatusOK, envelope)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
