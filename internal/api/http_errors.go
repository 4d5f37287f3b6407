package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// errorResponse is the JSON error envelope returned by all handlers.
type errorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func httpStatusForDomainError(err error) (int, bool) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return 0, false
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, true
	case core.ErrCatNotFound:
		return http.StatusNotFound, true
	case core.ErrCatState:
		return http.StatusConflict, true
	case core.ErrCatExecution:
		return http.StatusBadGateway, true
	default:
		return http.StatusInternalServerError, true
	}
}

// writeError maps an error to an HTTP status and writes the JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if s, ok := httpStatusForDomainError(err); ok {
		status = s
	}

	resp := errorResponse{Error: err.Error()}
	var domErr *core.DomainError
	if errors.As(err, &domErr) && domErr != nil {
		resp.Error = domErr.Message
		resp.Code = domErr.Code
		resp.Details = domErr.Details
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
