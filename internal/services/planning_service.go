// Package services holds the planning side of the tracker: budgets per
// category and upcoming bills. Unlike the ledger these collections have no
// chain to rebuild, so operations are plain load-modify-save.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/core"
	"github.com/mwsasi/personal-account-tracker/internal/store"
)

// PlanningService manages budgets and bills
type PlanningService struct {
	budgets    store.BudgetStore
	bills      store.BillStore
	categories core.CategorySet

	newID func() string
}

func NewPlanningService(budgets store.BudgetStore, bills store.BillStore, categories core.CategorySet) *PlanningService {
	return &PlanningService{
		budgets:    budgets,
		bills:      bills,
		categories: categories,
		newID:      newPlanningID,
	}
}

// Budgets returns all configured budgets
func (s *PlanningService) Budgets(ctx context.Context) ([]core.Budget, error) {
	budgets, err := s.budgets.LoadBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	return budgets, nil
}

// SetBudget creates or replaces the budget for a category. One budget per
// category: a second call for the same category overwrites the limit.
func (s *PlanningService) SetBudget(ctx context.Context, category string, limit core.Money) (core.Budget, error) {
	if category == "" {
		return core.Budget{}, core.ErrEmptyCategory
	}
	if !s.categories.Contains(category) {
		return core.Budget{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
	}

	budgets, err := s.budgets.LoadBudgets(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("load budgets: %w", err)
	}

	for i, b := range budgets {
		if b.Category == category {
			budgets[i].Limit = limit
			if err := s.budgets.SaveBudgets(ctx, budgets); err != nil {
				return core.Budget{}, fmt.Errorf("save budgets: %w", err)
			}
			return budgets[i], nil
		}
	}

	budget := core.Budget{ID: s.newID(), Category: category, Limit: limit}
	budgets = append(budgets, budget)
	if err := s.budgets.SaveBudgets(ctx, budgets); err != nil {
		return core.Budget{}, fmt.Errorf("save budgets: %w", err)
	}
	return budget, nil
}

// DeleteBudget removes the budget with the given ID
func (s *PlanningService) DeleteBudget(ctx context.Context, id string) error {
	budgets, err := s.budgets.LoadBudgets(ctx)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}

	for i, b := range budgets {
		if b.ID == id {
			budgets = append(budgets[:i], budgets[i+1:]...)
			if err := s.budgets.SaveBudgets(ctx, budgets); err != nil {
				return fmt.Errorf("save budgets: %w", err)
			}
			return nil
		}
	}
	return core.ErrNotFound
}

// Bills returns all bills
func (s *PlanningService) Bills(ctx context.Context) ([]core.Bill, error) {
	bills, err := s.bills.LoadBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	return bills, nil
}

// AddBill records a new bill to track
func (s *PlanningService) AddBill(ctx context.Context, name string, amount core.Money, dueDate core.Date) (core.Bill, error) {
	if name == "" {
		return core.Bill{}, core.ErrEmptyName
	}
	if err := dueDate.Validate(); err != nil {
		return core.Bill{}, err
	}

	bills, err := s.bills.LoadBills(ctx)
	if err != nil {
		return core.Bill{}, fmt.Errorf("load bills: %w", err)
	}

	bill := core.Bill{ID: s.newID(), Name: name, Amount: amount, DueDate: dueDate}
	bills = append(bills, bill)
	if err := s.bills.SaveBills(ctx, bills); err != nil {
		return core.Bill{}, fmt.Errorf("save bills: %w", err)
	}
	return bill, nil
}

// MarkBillPaid flags the bill with the given ID as paid
func (s *PlanningService) MarkBillPaid(ctx context.Context, id string) (core.Bill, error) {
	bills, err := s.bills.LoadBills(ctx)
	if err != nil {
		return core.Bill{}, fmt.Errorf("load bills: %w", err)
	}

	for i, b := range bills {
		if b.ID == id {
			bills[i].Paid = true
			if err := s.bills.SaveBills(ctx, bills); err != nil {
				return core.Bill{}, fmt.Errorf("save bills: %w", err)
			}
			return bills[i], nil
		}
	}
	return core.Bill{}, core.ErrNotFound
}

// DeleteBill removes the bill with the given ID
func (s *PlanningService) DeleteBill(ctx context.Context, id string) error {
	bills, err := s.bills.LoadBills(ctx)
	if err != nil {
		return fmt.Errorf("load bills: %w", err)
	}

	for i, b := range bills {
		if b.ID == id {
			bills = append(bills[:i], bills[i+1:]...)
			if err := s.bills.SaveBills(ctx, bills); err != nil {
				return fmt.Errorf("save bills: %w", err)
			}
			return nil
		}
	}
	return core.ErrNotFound
}

func newPlanningID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("p%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
