// Package alerts derives user notifications from the recalculated ledger,
// the budget limits and the bill list. It is a read-only downstream consumer
// of the chain: nothing here ever feeds back into recalculation.
package alerts

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mwsasi/personal-account-tracker/internal/core"
	"github.com/mwsasi/personal-account-tracker/internal/store"
)

const (
	KindBudget = "budget_threshold"
	KindBill   = "bill_due"
)

// Alert is one user-facing notification trigger.
type Alert struct {
	Kind     string     `json:"kind"`
	Message  string     `json:"message"`
	Category string     `json:"category,omitempty"`
	Spent    core.Money `json:"spent,omitempty"`
	Limit    core.Money `json:"limit,omitempty"`
	BillID   string     `json:"bill_id,omitempty"`
	BillName string     `json:"bill_name,omitempty"`
	DueDate  string     `json:"due_date,omitempty"`
	DaysLeft int        `json:"days_left,omitempty"`
}

// Config tunes the trigger conditions.
type Config struct {
	// BudgetThreshold is the spend/limit ratio that fires a budget alert.
	BudgetThreshold float64

	// BillDueWindow is how far ahead unpaid bills trigger a due alert.
	BillDueWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		BudgetThreshold: 0.85,
		BillDueWindow:   7 * 24 * time.Hour,
	}
}

// Notifier evaluates the alert conditions against current data.
type Notifier struct {
	store      store.Store
	categories core.CategorySet
	config     Config
}

func NewNotifier(st store.Store, categories core.CategorySet, config Config) *Notifier {
	return &Notifier{store: st, categories: categories, config: config}
}

// Evaluate loads entries, budgets and bills concurrently, recalculates the
// chain and returns every alert that currently applies. Budget alerts cover
// the month containing now; bill alerts cover unpaid bills due inside the
// configured window (bills already overdue are included).
func (n *Notifier) Evaluate(ctx context.Context, now time.Time) ([]Alert, error) {
	var (
		entries []core.LedgerEntry
		budgets []core.Budget
		bills   []core.Bill
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = n.store.LoadAll(gctx)
		if err != nil {
			return fmt.Errorf("load entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = n.store.LoadBudgets(gctx)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bills, err = n.store.LoadBills(gctx)
		if err != nil {
			return fmt.Errorf("load bills: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recalced := core.Recalculate(entries, n.categories)
	out := n.budgetAlerts(recalced, budgets, now)
	out = append(out, n.billAlerts(bills, now)...)
	return out, nil
}

func (n *Notifier) budgetAlerts(entries []core.LedgerEntry, budgets []core.Budget, now time.Time) []Alert {
	spend := core.MonthSpend(entries, n.categories, now.Year(), int(now.Month()))

	var out []Alert
	for _, b := range budgets {
		if b.Limit.Cents <= 0 {
			continue
		}
		spent := spend[b.Category]
		ratio := float64(spent.Cents) / float64(b.Limit.Cents)
		if ratio < n.config.BudgetThreshold {
			continue
		}
		out = append(out, Alert{
			Kind:     KindBudget,
			Category: b.Category,
			Spent:    spent,
			Limit:    b.Limit,
			Message: fmt.Sprintf("%s spend %s is %.0f%% of the %s monthly limit",
				b.Category, spent, ratio*100, b.Limit),
		})
	}
	return out
}

func (n *Notifier) billAlerts(bills []core.Bill, now time.Time) []Alert {
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	horizon := today.Add(n.config.BillDueWindow)

	var out []Alert
	for _, b := range bills {
		if b.Paid || b.DueDate.IsZero() {
			continue
		}
		if b.DueDate.After(horizon) {
			continue
		}
		days := int(b.DueDate.Sub(today.Time).Hours() / 24)
		msg := fmt.Sprintf("%s (%s) is due in %d days", b.Name, b.Amount, days)
		if days < 0 {
			msg = fmt.Sprintf("%s (%s) is overdue by %d days", b.Name, b.Amount, -days)
		} else if days == 0 {
			msg = fmt.Sprintf("%s (%s) is due today", b.Name, b.Amount)
		}
		out = append(out, Alert{
			Kind:     KindBill,
			BillID:   b.ID,
			BillName: b.Name,
			DueDate:  b.DueDate.ISO(),
			DaysLeft: days,
			Message:  msg,
		})
	}
	return out
}
