package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
)

// commandTimeout bounds a single device command issued over HTTP.
const commandTimeout = 10 * time.Second

// commandRequest is the body of POST /entities/{unique_id}/commands.
type commandRequest struct {
	Command string `json:"command"`
}

// handleEntityCommand runs a command on an exported entity.
//
// Device failures are reported as 502 with the device error message.
func (s *Server) handleEntityCommand(w http.ResponseWriter, r *http.Request) {
	if s.commands == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "entity commands unavailable")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	cmd, err := entity.ParseCommand(req.Command)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	uniqueID := chi.URLParam(r, "unique_id")
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	err = s.commands.Execute(ctx, uniqueID, cmd)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"unique_id": uniqueID,
			"command":   cmd,
			"status":    "ok",
		})
	case errors.Is(err, entity.ErrEntityNotFound):
		writeNotFound(w, "entity not found")
	case errors.Is(err, entity.ErrNotSupported):
		writeBadRequest(w, err.Error())
	default:
		writeError(w, http.StatusBadGateway, ErrCodeDevice, err.Error())
	}
}
