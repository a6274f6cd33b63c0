package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mwsasi/personal-account-tracker/internal/core"
	"github.com/mwsasi/personal-account-tracker/internal/store/memory"
)

func newTestService() (*PlanningService, *memory.Store) {
	st := memory.New()
	svc := NewPlanningService(st, st, core.DefaultCategories())
	n := 0
	svc.newID = func() string {
		n++
		return string(rune('a' + n - 1))
	}
	return svc, st
}

func TestSetBudgetCreatesThenOverwrites(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.SetBudget(ctx, "groceries", core.Money{Cents: 40000})
	if err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if first.Category != "groceries" || first.Limit.Cents != 40000 {
		t.Fatalf("unexpected budget: %+v", first)
	}

	second, err := svc.SetBudget(ctx, "groceries", core.Money{Cents: 50000})
	if err != nil {
		t.Fatalf("set budget again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected overwrite to keep ID %s, got %s", first.ID, second.ID)
	}

	budgets, err := svc.Budgets(ctx)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].Limit.Cents != 50000 {
		t.Fatalf("expected one budget with new limit, got %+v", budgets)
	}
}

func TestSetBudgetRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.SetBudget(context.Background(), "yachts", core.Money{Cents: 100}); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := svc.SetBudget(context.Background(), "", core.Money{Cents: 100}); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestDeleteBudget(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, _ := svc.SetBudget(ctx, "rent", core.Money{Cents: 90000})
	if err := svc.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	if err := svc.DeleteBudget(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBillLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	due := core.NewDate(2024, 4, 1)

	bill, err := svc.AddBill(ctx, "Electricity", core.Money{Cents: 7890}, due)
	if err != nil {
		t.Fatalf("add bill: %v", err)
	}
	if bill.Paid {
		t.Fatalf("new bill should be unpaid")
	}

	paid, err := svc.MarkBillPaid(ctx, bill.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !paid.Paid {
		t.Fatalf("expected bill marked paid")
	}

	bills, err := svc.Bills(ctx)
	if err != nil {
		t.Fatalf("list bills: %v", err)
	}
	if len(bills) != 1 || !bills[0].Paid {
		t.Fatalf("paid flag not persisted: %+v", bills)
	}

	if err := svc.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("delete bill: %v", err)
	}
	if _, err := svc.MarkBillPaid(ctx, bill.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAddBillValidation(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.AddBill(context.Background(), "", core.Money{Cents: 100}, core.NewDate(2024, 4, 1)); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.AddBill(context.Background(), "Water", core.Money{Cents: 100}, core.Date{}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
