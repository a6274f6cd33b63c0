// Package store defines the ports every storage backend implements.
//
// All collections use load-everything / save-everything semantics: the
// orchestrator always rewrites the full ledger so the balance chain is never
// persisted half-updated. Backends may return entries in any order; callers
// re-sort.
package store

import (
	"context"

	"github.com/mwsasi/personal-account-tracker/internal/core"
)

type (
	EntryStore interface {
		LoadAll(ctx context.Context) ([]core.LedgerEntry, error)
		SaveAll(ctx context.Context, entries []core.LedgerEntry) error
	}

	BudgetStore interface {
		LoadBudgets(ctx context.Context) ([]core.Budget, error)
		SaveBudgets(ctx context.Context, budgets []core.Budget) error
	}

	BillStore interface {
		LoadBills(ctx context.Context) ([]core.Bill, error)
		SaveBills(ctx context.Context, bills []core.Bill) error
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		EntryStore
		BudgetStore
		BillStore
	}
)
