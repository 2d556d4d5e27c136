package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-wevolor/internal/flow"
)

// startFlowRequest is the body of POST /flows.
type startFlowRequest struct {
	Domain string `json:"domain"`
}

// handleStartFlow begins a setup flow and returns its first step.
func (s *Server) handleStartFlow(w http.ResponseWriter, r *http.Request) {
	var req startFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	req.Domain = strings.TrimSpace(req.Domain)
	if req.Domain == "" {
		writeBadRequest(w, "domain is required")
		return
	}

	result, err := s.flows.Start(r.Context(), req.Domain)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSubmitFlow advances a flow with the user's input for its current step.
// An empty body submits an empty input so that form defaults apply.
func (s *Server) handleSubmitFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	input := flow.Input{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.flows.Submit(r.Context(), id, input)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAbortFlow discards an in-progress flow.
func (s *Server) handleAbortFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.flows.Abort(chi.URLParam(r, "id")); err != nil {
		s.writeFlowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeFlowError maps flow manager errors to responses.
func (s *Server) writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flow.ErrUnknownDomain):
		writeNotFound(w, "no integration for domain")
	case errors.Is(err, flow.ErrFlowNotFound):
		writeNotFound(w, "flow not found")
	case errors.Is(err, flow.ErrInvalidInput):
		writeValidationError(w, err.Error())
	default:
		s.logger.Error("flow step failed", "error", err)
		writeInternalError(w, "flow step failed")
	}
}
