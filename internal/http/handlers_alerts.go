package http

import (
	"net/http"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/alerts"
)

const alertsCacheKey = "current"

// handleListAlerts evaluates budget and bill alerts on demand.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.alertsCache.Get(alertsCacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	found, err := s.notifier.Evaluate(r.Context(), time.Now().UTC())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if found == nil {
		found = []alerts.Alert{}
	}
	s.alertsCache.Set(alertsCacheKey, found)
	respondJSON(w, http.StatusOK, found)
}
