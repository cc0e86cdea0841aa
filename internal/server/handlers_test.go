package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/agent"
	"git.home.luguber.info/inful/blogsmith/internal/runlog"
)

type fakeRunner struct {
	result *agent.RunResult
	err    error
	calls  int
}

func (f *fakeRunner) Run(context.Context) (*agent.RunResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeHistory struct {
	records  []runlog.Record
	err      error
	gotLimit int
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]runlog.Record, error) {
	f.gotLimit = limit
	return f.records, f.err
}

func doRequest(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandleRoot_Status(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, nil)

	rec := doRequest(h.HandleRoot, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Blog Agent API is running", resp.Message)
}

func TestHandleRoot_UnknownPathIs404(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, nil)
	rec := doRequest(h.HandleRoot, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRunAgent_Success(t *testing.T) {
	runner := &fakeRunner{result: &agent.RunResult{Message: "Successfully pushed blog post", ExecutionTime: 12.34}}
	h := NewHandlers(runner, nil)

	rec := doRequest(h.HandleRunAgent, http.MethodGet, "/run-agent")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, runner.calls)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Successfully pushed blog post", payload["result"])
	require.InDelta(t, 12.34, payload["execution_time"], 0.0001)
}

func TestHandleRunAgent_PipelineFailureIs500WithDetail(t *testing.T) {
	runner := &fakeRunner{err: errors.New("push failed: 409 Conflict")}
	h := NewHandlers(runner, nil)

	rec := doRequest(h.HandleRunAgent, http.MethodGet, "/run-agent")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Contains(t, payload["detail"], "push failed: 409 Conflict")
}

func TestHandleRunAgent_MethodNotAllowed(t *testing.T) {
	runner := &fakeRunner{}
	h := NewHandlers(runner, nil)

	rec := doRequest(h.HandleRunAgent, http.MethodPost, "/run-agent")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, runner.calls)
}

func TestHandleCron_Acknowledges(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, nil)

	rec := doRequest(h.HandleCron, http.MethodGet, "/api/cron")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CronResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Cron job executed successfully", resp.Message)
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, nil)

	rec := doRequest(h.HandleHealth, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
}

func TestHandleRuns_ReturnsRecords(t *testing.T) {
	history := &fakeHistory{records: []runlog.Record{{ID: "run-1", Slug: "go-rising", Status: "success"}}}
	h := NewHandlers(&fakeRunner{}, history)

	rec := doRequest(h.HandleRuns, http.MethodGet, "/api/runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, history.gotLimit)

	var resp RunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 1)
	require.Equal(t, "go-rising", resp.Runs[0].Slug)
}

func TestHandleRuns_InvalidLimit(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, &fakeHistory{})
	rec := doRequest(h.HandleRuns, http.MethodGet, "/api/runs?limit=zero")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRuns_NoStoreConfigured(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, nil)

	rec := doRequest(h.HandleRuns, http.MethodGet, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}
