package memory

import (
	"context"
	"testing"

	"github.com/mwsasi/personal-account-tracker/internal/core"
)

func TestSaveAllReplacesAndCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := []core.LedgerEntry{{
		ID:         "a",
		Date:       core.NewDate(2024, 1, 1),
		Categories: map[string]core.Money{"groceries": {Cents: 100}},
	}}
	if err := s.SaveAll(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's slice after save must not leak into the store.
	first[0].Categories["groceries"] = core.Money{Cents: 999}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Categories["groceries"].Cents != 100 {
		t.Fatalf("store shares state with caller: %+v", got)
	}

	// Full replace: saving a new set drops the old one.
	if err := s.SaveAll(ctx, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	got, _ = s.LoadAll(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %d entries", len(got))
	}
}

func TestBudgetsAndBills(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.SaveBudgets(ctx, []core.Budget{{ID: "b1", Category: "rent", Limit: core.Money{Cents: 90000}}}); err != nil {
		t.Fatalf("save budgets: %v", err)
	}
	budgets, err := s.LoadBudgets(ctx)
	if err != nil || len(budgets) != 1 || budgets[0].Category != "rent" {
		t.Fatalf("load budgets: %v %+v", err, budgets)
	}

	if err := s.SaveBills(ctx, []core.Bill{{ID: "x", Name: "power", DueDate: core.NewDate(2024, 9, 1)}}); err != nil {
		t.Fatalf("save bills: %v", err)
	}
	bills, err := s.LoadBills(ctx)
	if err != nil || len(bills) != 1 || bills[0].Name != "power" {
		t.Fatalf("load bills: %v %+v", err, bills)
	}
}
