package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reimagen/agentarchitecture/internal/core"
)

const maxWorkflowBytes = 1 << 20 // 1 MiB of workflow text is plenty

// analyzeRequest is the body of POST /api/workflows.
type analyzeRequest struct {
	WorkflowText string `json:"workflow_text"`
}

// approveRequest is the body of POST /api/workflows/{id}/approve.
type approveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

// handleAnalyze runs the full pipeline synchronously and returns the merged
// report.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxWorkflowBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, core.ErrValidation("BAD_REQUEST", "request body must be JSON with a workflow_text field").WithCause(err))
		return
	}

	analysis, err := s.orchestrator.AnalyzeWorkflow(r.Context(), req.WorkflowText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// handleGet returns a stored workflow record.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, core.ErrState(core.CodeInvalidState, "persistence is not configured"))
		return
	}

	workflowID := chi.URLParam(r, "workflowID")
	record, err := s.store.Get(r.Context(), workflowID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleList returns all stored workflow records.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, core.ErrState(core.CodeInvalidState, "persistence is not configured"))
		return
	}

	records, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []core.WorkflowRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"workflows": records,
		"count":     len(records),
	})
}

// handleApprove transitions a workflow to APPROVED and returns the approval
// together with the synthesized org chart.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, core.ErrState(core.CodeInvalidState, "persistence is not configured"))
		return
	}

	workflowID := chi.URLParam(r, "workflowID")

	var req approveRequest
	if r.Body != nil {
		// Body is optional; an empty approved_by is recorded as "unknown".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.ApprovedBy == "" {
		req.ApprovedBy = "unknown"
	}

	result, err := s.store.Approve(r.Context(), workflowID, req.ApprovedBy)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleMetrics returns aggregate pipeline metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Metrics())
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
