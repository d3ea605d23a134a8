package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/mazesim/internal/core/observability/log"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.sim.Snapshot()); err != nil {
		s.logger.Warn("Snapshot response failed", log.Error(err))
	}
}
