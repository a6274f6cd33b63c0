package google

import (
	"testing"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/core"
)

func TestEntryRowRoundTrip(t *testing.T) {
	date, _ := core.ParseDate("2024-03-15")
	e := core.LedgerEntry{
		ID:        "abc123",
		Date:      date,
		Timestamp: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Month:     "March 2024",
		Inflow:    core.Money{Cents: 100000},
		Categories: map[string]core.Money{
			"groceries": {Cents: 12050},
			"rent":      {Cents: 80000},
		},
		BroughtForward: core.Money{Cents: -2500},
		TotalExpenses:  core.Money{Cents: 92050},
		TotalBalance:   core.Money{Cents: 5450},
	}

	got, ok := entryFromRow(toStrings(entryToRow(e)))
	if !ok {
		t.Fatalf("expected row to parse")
	}
	if got.ID != e.ID || !got.Date.Equal(e.Date.Time) || !got.Timestamp.Equal(e.Timestamp) {
		t.Fatalf("identity fields mismatch: %+v", got)
	}
	if got.Inflow != e.Inflow || got.BroughtForward != e.BroughtForward ||
		got.TotalExpenses != e.TotalExpenses || got.TotalBalance != e.TotalBalance {
		t.Errorf("amount mismatch: %+v", got)
	}
	if len(got.Categories) != 2 || got.Categories["groceries"].Cents != 12050 || got.Categories["rent"].Cents != 80000 {
		t.Errorf("categories mismatch: %+v", got.Categories)
	}
}

func TestEntryFromRowSkipsHeaderAndBlank(t *testing.T) {
	if _, ok := entryFromRow(toStrings(ledgerHeader())); ok {
		t.Errorf("header row should not parse")
	}
	if _, ok := entryFromRow([]string{}); ok {
		t.Errorf("empty row should not parse")
	}
	if _, ok := entryFromRow([]string{"", "2024-01-01"}); ok {
		t.Errorf("row without ID should not parse")
	}
	if _, ok := entryFromRow([]string{"abc", "not-a-date"}); ok {
		t.Errorf("row with bad date should not parse")
	}
}

func TestEntryFromRowLenientAmounts(t *testing.T) {
	got, ok := entryFromRow([]string{"abc", "2024-01-05", "", "", "1234,56", `{"groceries":"12,50"}`, "junk", "", "100"})
	if !ok {
		t.Fatalf("expected row to parse")
	}
	if got.Inflow.Cents != 123456 {
		t.Errorf("expected comma decimal inflow handled, got %d", got.Inflow.Cents)
	}
	if got.Categories["groceries"].Cents != 1250 {
		t.Errorf("expected comma decimal handled, got %d", got.Categories["groceries"].Cents)
	}
	if got.BroughtForward.Cents != 0 {
		t.Errorf("malformed amount should coerce to zero, got %d", got.BroughtForward.Cents)
	}
	if got.TotalBalance.Cents != 10000 {
		t.Errorf("expected 100 to read as 100.00, got %d", got.TotalBalance.Cents)
	}
	if got.Month != "January 2024" {
		t.Errorf("expected derived month label, got %q", got.Month)
	}
}

func TestBudgetRowRoundTrip(t *testing.T) {
	b := core.Budget{ID: "b1", Category: "groceries", Limit: core.Money{Cents: 40000}}
	got, ok := budgetFromRow(toStrings(budgetToRow(b)))
	if !ok || got != b {
		t.Fatalf("round trip mismatch: %+v ok=%v", got, ok)
	}
	if _, ok := budgetFromRow(toStrings(budgetsHeader())); ok {
		t.Errorf("header row should not parse")
	}
}

func TestBillRowRoundTrip(t *testing.T) {
	due, _ := core.ParseDate("2024-04-01")
	b := core.Bill{ID: "x1", Name: "Electricity", Amount: core.Money{Cents: 7890}, DueDate: due, Paid: true}
	got, ok := billFromRow(toStrings(billToRow(b)))
	if !ok {
		t.Fatalf("expected row to parse")
	}
	if got.ID != b.ID || got.Name != b.Name || got.Amount != b.Amount || !got.DueDate.Equal(due.Time) || !got.Paid {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if _, ok := billFromRow(toStrings(billsHeader())); ok {
		t.Errorf("header row should not parse")
	}
}
