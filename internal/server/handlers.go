// Package server exposes the pipeline over HTTP: a status root, the run
// trigger, the external cron acknowledgement, health, metrics, and run
// history.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/agent"
	derrors "git.home.luguber.info/inful/blogsmith/internal/errors"
	"git.home.luguber.info/inful/blogsmith/internal/logfields"
	"git.home.luguber.info/inful/blogsmith/internal/runlog"
	"git.home.luguber.info/inful/blogsmith/internal/version"
)

// AgentRunner triggers one pipeline run.
type AgentRunner interface {
	Run(ctx context.Context) (*agent.RunResult, error)
}

// RunHistory reads recent run records. Optional.
type RunHistory interface {
	Recent(ctx context.Context, limit int) ([]runlog.Record, error)
}

// Handlers holds the HTTP handlers for the trigger endpoints.
type Handlers struct {
	runner       AgentRunner
	runs         RunHistory
	startTime    time.Time
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewHandlers creates the handler set. runs may be nil when no run history
// store is configured.
func NewHandlers(runner AgentRunner, runs RunHistory) *Handlers {
	return &Handlers{
		runner:       runner,
		runs:         runs,
		startTime:    time.Now(),
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleRoot answers the root status check.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	// The mux routes every unknown path here.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !h.requireGet(w, r) {
		return
	}
	h.writeOK(w, StatusResponse{Message: "Blog Agent API is running"})
}

// HandleRunAgent runs the pipeline synchronously and reports the result. Any
// pipeline failure surfaces as a 500 with the failure message as detail.
func (h *Handlers) HandleRunAgent(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}

	result, err := h.runner.Run(r.Context())
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, derrors.Wrap(err, derrors.CategoryRuntime, "agent run failed"))
		return
	}
	h.writeOK(w, result)
}

// HandleCron acknowledges the external scheduler's ping. The ping itself does
// not trigger a run.
func (h *Handlers) HandleCron(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}
	h.writeOK(w, CronResponse{Message: "Cron job executed successfully"})
}

// HandleHealth reports process health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}
	h.writeOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
	})
}

// HandleRuns lists recent pipeline runs, newest first.
func (h *Handlers) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}
	if h.runs == nil {
		h.writeOK(w, RunsResponse{Runs: []runlog.Record{}})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.errorAdapter.WriteErrorResponse(w, derrors.ValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, derrors.Wrap(err, derrors.CategoryInternal, "read run history"))
		return
	}
	if records == nil {
		records = []runlog.Record{}
	}
	h.writeOK(w, RunsResponse{Runs: records})
}

func (h *Handlers) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		err := derrors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET")
		h.errorAdapter.WriteErrorResponse(w, err)
		return false
	}
	return true
}

func (h *Handlers) writeOK(w http.ResponseWriter, v any) {
	if err := writeJSON(w, http.StatusOK, v); err != nil {
		h.errorAdapter.WriteErrorResponse(w, derrors.Wrap(err, derrors.CategoryInternal, "failed to write response"))
	}
}

// writeJSON serializes v into an intermediate buffer before writing so a
// failed encode never sends a partial response.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}
