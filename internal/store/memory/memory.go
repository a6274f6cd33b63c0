// Package memory is the in-process storage backend: the default for local
// runs and the test double for everything above the store ports.
package memory

import (
	"context"
	"sync"

	"github.com/mwsasi/personal-account-tracker/internal/core"
)

type Store struct {
	mu      sync.Mutex
	entries []core.LedgerEntry
	budgets []core.Budget
	bills   []core.Bill
}

func New() *Store {
	return &Store{}
}

// LoadAll returns a deep copy; callers own the result.
func (s *Store) LoadAll(_ context.Context) ([]core.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.entries), nil
}

// SaveAll replaces the full ledger.
func (s *Store) SaveAll(_ context.Context, entries []core.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = cloneEntries(entries)
	return nil
}

func (s *Store) LoadBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

func (s *Store) SaveBudgets(_ context.Context, budgets []core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append([]core.Budget(nil), budgets...)
	return nil
}

func (s *Store) LoadBills(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Bill(nil), s.bills...), nil
}

func (s *Store) SaveBills(_ context.Context, bills []core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append([]core.Bill(nil), bills...)
	return nil
}

func cloneEntries(in []core.LedgerEntry) []core.LedgerEntry {
	out := make([]core.LedgerEntry, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
