package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/maply-labs/risk-engine/internal/model"
)

type healthResponse struct {
	Status        string `json:"status"`
	RegionsLoaded int    `json:"regions_loaded"`
}

type listResponse struct {
	Status string   `json:"status"`
	Total  int      `json:"total"`
	Values []string `json:"values"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		RegionsLoaded: s.catalog.Len(),
	})
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	env := s.catalog.All()
	status := http.StatusOK
	if env.Status == model.StatusError {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, env)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	district := r.URL.Query().Get("district")
	if state == "" || district == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorEnvelope("state and district query parameters are required"))
		return
	}

	result, ok := s.catalog.Lookup(state, district)
	if !ok {
		writeJSON(w, http.StatusNotFound, model.ErrorEnvelope("region not found"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states := s.catalog.States()
	writeJSON(w, http.StatusOK, listResponse{Status: model.StatusSuccess, Total: len(states), Values: states})
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorEnvelope("state query parameter is required"))
		return
	}
	districts := s.catalog.Districts(state)
	writeJSON(w, http.StatusOK, listResponse{Status: model.StatusSuccess, Total: len(districts), Values: districts})
}

// handleRefresh re-runs the pipeline and swaps the catalog on success.
// The catalog keeps its previous contents when the run fails.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorEnvelope("pipeline not configured"))
		return
	}

	env := s.engine.Run(r.Context(), s.sources)
	if env.Status == model.StatusError {
		writeJSON(w, http.StatusInternalServerError, env)
		return
	}

	s.catalog.Replace(env.Data)
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorEnvelope("run history not configured"))
		return
	}

	runs, err := s.store.ListRuns(r.Context(), 20)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorEnvelope("failed to list runs"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": model.StatusSuccess, "runs": runs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}
