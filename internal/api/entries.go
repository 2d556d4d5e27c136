package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-wevolor/internal/configentry"
)

// entryResponse is an entry with the unique ids of its exported entities.
type entryResponse struct {
	configentry.Entry
	Entities []string `json:"entities"`
}

func (s *Server) entryResponse(e configentry.Entry) entryResponse {
	resp := entryResponse{Entry: e, Entities: []string{}}
	if s.commands != nil {
		if ids := s.commands.Entities(e.ID); ids != nil {
			resp.Entities = ids
		}
	}
	return resp
}

// handleListEntries returns all config entries.
//
// Query parameters:
//   - domain: only entries of this integration
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.List(r.Context())
	if err != nil {
		s.logger.Error("listing config entries", "error", err)
		writeInternalError(w, "failed to list entries")
		return
	}

	domain := r.URL.Query().Get("domain")
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		if domain != "" && e.Domain != domain {
			continue
		}
		out = append(out, s.entryResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out, "count": len(out)})
}

// handleGetEntry returns a single entry by ID.
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.entries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeEntryError(w, err, "failed to get entry")
		return
	}
	writeJSON(w, http.StatusOK, s.entryResponse(*entry))
}

// handleDeleteEntry unloads an entry, withdraws its entities from the hub
// and deletes it. If the withdrawal fails the entry is kept.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeEntryError(w, err, "failed to delete entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReloadEntry unloads an entry and sets it up again.
//
// A failed setup is not an HTTP error: the entry is returned with its
// error state and reason so the caller can show why.
func (s *Server) handleReloadEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.entries.Reload(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if entry == nil || errors.Is(err, configentry.ErrEntryNotFound) {
			s.writeEntryError(w, err, "failed to reload entry")
			return
		}
		s.logger.Warn("config entry reload failed", "entry_id", entry.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, s.entryResponse(*entry))
}

func (s *Server) writeEntryError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, configentry.ErrEntryNotFound) {
		writeNotFound(w, "entry not found")
		return
	}
	s.logger.Error(message, "error", err)
	writeInternalError(w, message)
}
