package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/source"
)

// DefaultSearchLimit applies when a search request does not name a limit.
const DefaultSearchLimit = 10

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type searchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

func (s *Server) searchBody(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, newAPIError(CodeInvalidRequest, err.Error(), http.StatusBadRequest))
		return
	}
	limit := DefaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	s.search(w, r, req.Query, limit)
}

func (s *Server) searchQuery(w http.ResponseWriter, r *http.Request) {
	limit := DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(r.Context(), w, newAPIError(CodeInvalidRequest, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest))
			return
		}
		limit = parsed
	}
	s.search(w, r, r.URL.Query().Get("q"), limit)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query string, limit int) {
	if limit < 0 {
		writeError(r.Context(), w, newAPIError(CodeInvalidRequest, "limit must not be negative", http.StatusBadRequest))
		return
	}
	results := s.engine.Search(query, limit)
	s.metrics.searchResults.Observe(float64(len(results)))
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	result, found := s.engine.Translate(code)
	if !found {
		writeError(r.Context(), w, newAPIError(CodeNotFound, fmt.Sprintf("code %s not found", code), http.StatusNotFound))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	err := s.engine.Reload(r.Context())
	s.metrics.observeReload(err)
	if err != nil {
		var loadErr *source.DataLoadError
		if errors.As(err, &loadErr) {
			writeError(r.Context(), w, newAPIError(CodeDataLoadFailed, err.Error(), http.StatusInternalServerError))
			return
		}
		s.logger.Error("reload failed", "err", err)
		writeError(r.Context(), w, newAPIError(CodeInternal, "reload failed", http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		s.logger.Error("reading settings failed", "err", err)
		writeError(r.Context(), w, newAPIError(CodeInternal, "reading settings failed", http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := decodeJSON(w, r, &settings); err != nil {
		writeError(r.Context(), w, newAPIError(CodeInvalidRequest, err.Error(), http.StatusBadRequest))
		return
	}
	updated, err := s.settings.Update(r.Context(), &settings)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSettings) {
			writeError(r.Context(), w, newAPIError(CodeInvalidSettings, err.Error(), http.StatusBadRequest))
			return
		}
		s.logger.Error("updating settings failed", "err", err)
		writeError(r.Context(), w, newAPIError(CodeInternal, "updating settings failed", http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.cfg.Version,
		"uptime":  s.now().Sub(s.started).String(),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
