package http

import (
	"net/http"

	"github.com/mwsasi/personal-account-tracker/internal/core"
)

type budgetPayload struct {
	Category string     `json:"category"`
	Limit    core.Money `json:"limit"`
}

type budgetResponse struct {
	ID       string     `json:"id"`
	Category string     `json:"category"`
	Limit    core.Money `json:"limit"`
}

type billPayload struct {
	Name    string     `json:"name"`
	Amount  core.Money `json:"amount"`
	DueDate string     `json:"dueDate"`
}

type billResponse struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Amount  core.Money `json:"amount"`
	DueDate string     `json:"dueDate"`
	Paid    bool       `json:"paid"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{ID: b.ID, Category: b.Category, Limit: b.Limit}
}

func toBillResponse(b core.Bill) billResponse {
	return billResponse{ID: b.ID, Name: b.Name, Amount: b.Amount, DueDate: b.DueDate.ISO(), Paid: b.Paid}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.planning.Budgets(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	budget, err := s.planning.SetBudget(r.Context(), payload.Category, payload.Limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.alertsCache.Delete(alertsCacheKey)
	respondJSON(w, http.StatusCreated, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.planning.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.alertsCache.Delete(alertsCacheKey)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.planning.Bills(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillResponse(b))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddBill(w http.ResponseWriter, r *http.Request) {
	var payload billPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	due, err := core.ParseDate(payload.DueDate)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	bill, err := s.planning.AddBill(r.Context(), payload.Name, payload.Amount, due)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.alertsCache.Delete(alertsCacheKey)
	respondJSON(w, http.StatusCreated, toBillResponse(bill))
}

func (s *Server) handleMarkBillPaid(w http.ResponseWriter, r *http.Request) {
	bill, err := s.planning.MarkBillPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.alertsCache.Delete(alertsCacheKey)
	respondJSON(w, http.StatusOK, toBillResponse(bill))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.planning.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.alertsCache.Delete(alertsCacheKey)
	w.WriteHeader(http.StatusNoContent)
}
