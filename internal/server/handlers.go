package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleDashboard returns the complete view model.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash := s.provider.Dashboard()
	if dash == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard not yet available")
		return
	}
	writeJSON(w, dash)
}

// handleEvents returns the raw event window behind the current snapshot.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	dash := s.provider.Dashboard()
	if dash == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard not yet available")
		return
	}
	writeJSON(w, map[string]interface{}{
		"events": dash.Events,
		"count":  len(dash.Events),
	})
}

// handleInsights returns the current insight list.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	dash := s.provider.Dashboard()
	if dash == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard not yet available")
		return
	}
	writeJSON(w, map[string]interface{}{
		"insights": dash.Insights,
	})
}

// handleFailures returns the merged recent failure list.
func (s *Server) handleFailures(w http.ResponseWriter, r *http.Request) {
	dash := s.provider.Dashboard()
	if dash == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard not yet available")
		return
	}
	writeJSON(w, map[string]interface{}{
		"failures": dash.RecentFailures,
	})
}

// handleHealth reports service liveness and basic figures.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	}
	if dash := s.provider.Dashboard(); dash != nil {
		resp["generated_at"] = dash.GeneratedAt
		resp["scheduler_running"] = dash.Status.Running
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
