package http

import (
	"net/http"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/core"
	"github.com/mwsasi/personal-account-tracker/internal/ledger"
)

// entryPayload is the request body for creating or updating an entry. Dates
// travel as yyyy-mm-dd strings; amounts coerce leniently so a malformed
// number counts as zero instead of failing the request.
type entryPayload struct {
	Date           string                `json:"date"`
	Timestamp      *time.Time            `json:"timestamp,omitempty"`
	Inflow         core.Money            `json:"inflow"`
	Categories     map[string]core.Money `json:"categories"`
	BroughtForward core.Money            `json:"broughtForward"`
}

// entryResponse is the wire form of a ledger entry.
type entryResponse struct {
	ID             string                `json:"id"`
	Date           string                `json:"date"`
	Timestamp      time.Time             `json:"timestamp"`
	Month          string                `json:"month"`
	Inflow         core.Money            `json:"inflow"`
	Categories     map[string]core.Money `json:"categories"`
	BroughtForward core.Money            `json:"broughtForward"`
	TotalExpenses  core.Money            `json:"totalExpenses"`
	TotalBalance   core.Money            `json:"totalBalance"`
}

func toEntryResponse(e core.LedgerEntry) entryResponse {
	return entryResponse{
		ID:             e.ID,
		Date:           e.Date.ISO(),
		Timestamp:      e.Timestamp,
		Month:          e.Month,
		Inflow:         e.Inflow,
		Categories:     e.Categories,
		BroughtForward: e.BroughtForward,
		TotalExpenses:  e.TotalExpenses,
		TotalBalance:   e.TotalBalance,
	}
}

func (p entryPayload) toInput() (ledger.EntryInput, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return ledger.EntryInput{}, err
	}
	in := ledger.EntryInput{
		Date:           date,
		Inflow:         p.Inflow,
		Categories:     p.Categories,
		BroughtForward: p.BroughtForward,
	}
	if p.Timestamp != nil {
		in.Timestamp = *p.Timestamp
	}
	return in, nil
}

const entriesCacheKey = "all"

// invalidateLedgerViews drops cached reads after any mutation. Alerts depend
// on entries, budgets and bills alike, so every mutation clears both caches.
func (s *Server) invalidateLedgerViews() {
	s.entriesCache.Delete(entriesCacheKey)
	s.alertsCache.Delete(alertsCacheKey)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.entriesCache.Get(entriesCacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	entries, err := s.ledger.Entries(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	s.entriesCache.Set(entriesCacheKey, out)
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	in, err := payload.toInput()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	entry, err := s.ledger.Create(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateLedgerViews()
	respondJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	in, err := payload.toInput()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	entry, err := s.ledger.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateLedgerViews()
	respondJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateLedgerViews()
	w.WriteHeader(http.StatusNoContent)
}

// handleOpeningBalance resolves the brought-forward default for a prospective
// entry date, defaulting to today when no date is given.
func (s *Server) handleOpeningBalance(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	var date core.Date
	if raw == "" {
		now := time.Now().UTC()
		date = core.NewDate(now.Year(), int(now.Month()), now.Day())
	} else {
		var err error
		if date, err = core.ParseDate(raw); err != nil {
			respondDomainError(w, r, err)
			return
		}
	}

	balance, err := s.ledger.OpeningBalance(r.Context(), date)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":           date.ISO(),
		"openingBalance": balance,
	})
}
