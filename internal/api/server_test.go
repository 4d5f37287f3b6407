package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimagen/agentarchitecture/internal/analyzer"
	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/logging"
	"github.com/reimagen/agentarchitecture/internal/testutil"
)

func newTestServer(t *testing.T, store core.WorkflowStore) *Server {
	t.Helper()

	mock := testutil.NewMockLLM().
		WithResponseFor(testutil.MarkerParser, testutil.ParserResponseTwoSteps).
		WithResponseFor(testutil.MarkerRisk, testutil.RiskResponseTwoSteps).
		WithResponseFor(testutil.MarkerAutomation, testutil.AutomationResponseTwoSteps)

	opts := []analyzer.Option{}
	if store != nil {
		opts = append(opts, analyzer.WithStore(store))
	}
	orchestrator := analyzer.New(mock, logging.NewNop(), opts...)

	return New(DefaultConfig(), orchestrator, store, logging.NewNop())
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(t, nil), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleAnalyze(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/workflows",
		`{"workflow_text":"Receive order, then review and approve it"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis core.WorkflowAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Len(t, analysis.Steps, 2)
	assert.NotEmpty(t, analysis.WorkflowID)
}

func TestHandleAnalyze_EmptyText(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/workflows", `{"workflow_text":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, core.CodeEmptyWorkflow, body.Code)
}

func TestHandleAnalyze_MalformedBody(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/workflows", `not json`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BAD_REQUEST", body.Code)
}

func TestHandleGet(t *testing.T) {
	t.Parallel()

	store := testutil.NewMockStore()
	s := newTestServer(t, store)

	analysis := testutil.NewTestAnalysis()
	require.NoError(t, store.Save(context.Background(), analysis.WorkflowID, "text", analysis))

	rec := doRequest(t, s, http.MethodGet, "/api/workflows/"+analysis.WorkflowID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var record core.WorkflowRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, analysis.WorkflowID, record.WorkflowID)
	assert.Equal(t, core.ApprovalPending, record.ApprovalStatus)
}

func TestHandleGet_Missing(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(t, testutil.NewMockStore()), http.MethodGet, "/api/workflows/wf_missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGet_NoStore(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestServer(t, nil), http.MethodGet, "/api/workflows/wf_x", "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleList(t *testing.T) {
	t.Parallel()

	store := testutil.NewMockStore()
	s := newTestServer(t, store)

	rec := doRequest(t, s, http.MethodGet, "/api/workflows", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Workflows []core.WorkflowRecord `json:"workflows"`
		Count     int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Workflows)

	analysis := testutil.NewTestAnalysis()
	require.NoError(t, store.Save(context.Background(), analysis.WorkflowID, "text", analysis))

	rec = doRequest(t, s, http.MethodGet, "/api/workflows", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestHandleApprove(t *testing.T) {
	t.Parallel()

	store := testutil.NewMockStore()
	s := newTestServer(t, store)

	analysis := testutil.NewTestAnalysis()
	require.NoError(t, store.Save(context.Background(), analysis.WorkflowID, "text", analysis))

	rec := doRequest(t, s, http.MethodPost, "/api/workflows/"+analysis.WorkflowID+"/approve",
		`{"approved_by":"reviewer@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.ApprovalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.ApprovalApproved, result.Status)
	assert.Equal(t, "reviewer@example.com", result.ApprovedBy)

	// Second approval conflicts.
	rec = doRequest(t, s, http.MethodPost, "/api/workflows/"+analysis.WorkflowID+"/approve", "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleApprove_DefaultsApprover(t *testing.T) {
	t.Parallel()

	store := testutil.NewMockStore()
	s := newTestServer(t, store)

	analysis := testutil.NewTestAnalysis()
	require.NoError(t, store.Save(context.Background(), analysis.WorkflowID, "text", analysis))

	rec := doRequest(t, s, http.MethodPost, "/api/workflows/"+analysis.WorkflowID+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.ApprovalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "unknown", result.ApprovedBy)
}

func TestHandleMetrics(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	doRequest(t, s, http.MethodPost, "/api/workflows", `{"workflow_text":"Receive order"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap analyzer.MetricsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.AnalysesTotal)
}

func TestHTTPStatusForDomainError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", core.ErrValidation("C", "m"), http.StatusUnprocessableEntity},
		{"not found", core.ErrNotFound("C", "m"), http.StatusNotFound},
		{"state", core.ErrState("C", "m"), http.StatusConflict},
		{"execution", core.ErrExecution("C", "m"), http.StatusBadGateway},
		{"serialization", core.ErrSerialization("m"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := httpStatusForDomainError(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.want, status)
		})
	}

	if _, ok := httpStatusForDomainError(assert.AnError); ok {
		t.Error("plain errors must not map to a domain status")
	}
}
