package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mwsasi/personal-account-tracker/internal/alerts"
	"github.com/mwsasi/personal-account-tracker/internal/core"
	"github.com/mwsasi/personal-account-tracker/internal/ledger"
	"github.com/mwsasi/personal-account-tracker/internal/services"
	"github.com/mwsasi/personal-account-tracker/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	categories := core.DefaultCategories()
	ls := ledger.NewService(st, categories, nil)
	ps := services.NewPlanningService(st, st, categories)
	an := alerts.NewNotifier(st, categories, alerts.DefaultConfig())
	s := NewServer(":0", ls, ps, an)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := doJSON(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status %d", rec.Code)
	}
}

func TestCreateAndListEntries(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/entries",
		`{"date":"2024-03-01","inflow":"1000.00","broughtForward":"250.00","categories":{"groceries":"120.50"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}

	var created entryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.Date != "2024-03-01" || created.Month != "March 2024" {
		t.Errorf("unexpected created entry: %+v", created)
	}
	if created.TotalExpenses.Cents != 12050 {
		t.Errorf("expected expenses 120.50, got %v", created.TotalExpenses)
	}
	if created.TotalBalance.Cents != 25000+100000-12050 {
		t.Errorf("expected balance 1129.50, got %v", created.TotalBalance)
	}

	rec = doJSON(t, s, http.MethodGet, "/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d", rec.Code)
	}
	var listed []entryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", listed)
	}
}

func TestCreateEntryLenientAmounts(t *testing.T) {
	s := newTestServer(t)

	// Malformed amounts coerce to zero rather than failing the request.
	rec := doJSON(t, s, http.MethodPost, "/entries",
		`{"date":"2024-03-01","inflow":"garbage","categories":{"groceries":"abc"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var created entryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Inflow.Cents != 0 || created.TotalExpenses.Cents != 0 {
		t.Errorf("expected coerced zeros, got %+v", created)
	}
}

func TestCreateEntryInvalidDate(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/entries", `{"date":"not-a-date"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/entries", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/entries", `{"date":"2024-03-01","inflow":"500.00"}`)
	var created entryResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(t, s, http.MethodPut, "/entries/"+created.ID,
		`{"date":"2024-03-02","inflow":"600.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", rec.Code, rec.Body.String())
	}
	var updated entryResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Date != "2024-03-02" || updated.Inflow.Cents != 60000 {
		t.Errorf("unexpected updated entry: %+v", updated)
	}

	if rec := doJSON(t, s, http.MethodPut, "/entries/missing", `{"date":"2024-03-02"}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown update, got %d", rec.Code)
	}

	if rec := doJSON(t, s, http.MethodDelete, "/entries/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodDelete, "/entries/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for repeated delete, got %d", rec.Code)
	}
}

func TestOpeningBalanceEndpoint(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/entries", `{"date":"2024-03-01","inflow":"1000.00"}`)

	rec := doJSON(t, s, http.MethodGet, "/entries/opening-balance?date=2024-03-05", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Date           string     `json:"date"`
		OpeningBalance core.Money `json:"openingBalance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Date != "2024-03-05" || body.OpeningBalance.Cents != 100000 {
		t.Errorf("unexpected opening balance: %+v", body)
	}

	if rec := doJSON(t, s, http.MethodGet, "/entries/opening-balance?date=garbage", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for bad date, got %d", rec.Code)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/budgets", `{"category":"groceries","limit":"400.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("set budget status %d: %s", rec.Code, rec.Body.String())
	}
	var budget budgetResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &budget)
	if budget.Category != "groceries" || budget.Limit.Cents != 40000 {
		t.Errorf("unexpected budget: %+v", budget)
	}

	rec = doJSON(t, s, http.MethodGet, "/budgets", "")
	var budgets []budgetResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &budgets)
	if len(budgets) != 1 {
		t.Fatalf("expected one budget, got %+v", budgets)
	}

	if rec := doJSON(t, s, http.MethodDelete, "/budgets/"+budget.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete budget status %d", rec.Code)
	}
}

func TestBillEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/bills", `{"name":"Electricity","amount":"78.90","dueDate":"2024-04-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add bill status %d: %s", rec.Code, rec.Body.String())
	}
	var bill billResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &bill)
	if bill.Name != "Electricity" || bill.Paid {
		t.Errorf("unexpected bill: %+v", bill)
	}

	rec = doJSON(t, s, http.MethodPost, "/bills/"+bill.ID+"/paid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid status %d", rec.Code)
	}
	var paid billResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &paid)
	if !paid.Paid {
		t.Errorf("expected paid bill, got %+v", paid)
	}

	if rec := doJSON(t, s, http.MethodPost, "/bills/missing/paid", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	s := newTestServer(t)

	// No data: empty array, not null.
	rec := doJSON(t, s, http.MethodGet, "/alerts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("alerts status %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}
