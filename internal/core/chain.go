package core

import "sort"

// SortChronological orders entries by calendar date, breaking same-day ties
// by timestamp and finally by ID so the order is deterministic even for
// duplicated timestamps. This ordering is the sole source of chronological
// truth for the balance chain.
func SortChronological(entries []LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
}

// Recalculate rebuilds the balance chain over the whole ledger. The input may
// arrive in any order; the result is chronological, and for every entry after
// the first the brought-forward balance equals the previous entry's closing
// balance regardless of what the input carried. The first entry's
// brought-forward is preserved verbatim as the ledger's seed value.
//
// The function is pure: inputs are never mutated, and an empty ledger yields
// an empty ledger. Because brought-forward depends on position, any mutation
// that can change ordering invalidates the rest of the chain, so the whole
// ledger is always rescanned rather than patched incrementally. At ledger
// sizes of a few thousand rows the O(n) pass is cheap.
func Recalculate(entries []LedgerEntry, categories CategorySet) []LedgerEntry {
	if len(entries) == 0 {
		return []LedgerEntry{}
	}

	out := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	SortChronological(out)

	var running Money
	for i := range out {
		opening := out[i].BroughtForward
		if i > 0 {
			opening = running
		}
		expenses := categories.ExpenseTotal(out[i].Categories)
		closing := opening.Add(out[i].Inflow).Sub(expenses)

		out[i].BroughtForward = opening
		out[i].TotalExpenses = expenses
		out[i].TotalBalance = closing
		running = closing
	}
	return out
}

// ResolveOpeningBalance determines the brought-forward balance a new entry
// for target should default to. A same-day entry keeps its current
// brought-forward (the entry-form and merge cases); otherwise the closing
// balance of the latest entry strictly before target carries over; an empty
// ledger, or a target earlier than all history, starts from zero.
func ResolveOpeningBalance(entries []LedgerEntry, target Date) Money {
	if len(entries) == 0 {
		return Money{}
	}

	sorted := make([]LedgerEntry, len(entries))
	copy(sorted, entries)
	SortChronological(sorted)

	for _, e := range sorted {
		if e.Date.Equal(target.Time) {
			return e.BroughtForward
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Date.Before(target.Time) {
			return sorted[i].TotalBalance
		}
	}
	return Money{}
}

// MonthSpend aggregates the non-parallel spend per category for one calendar
// month. The alerts layer compares these sums against budget limits.
func MonthSpend(entries []LedgerEntry, categories CategorySet, year int, month int) map[string]Money {
	spend := make(map[string]Money)
	for _, e := range entries {
		if e.Date.Year() != year || int(e.Date.Month()) != month {
			continue
		}
		for _, name := range categories.Names() {
			if categories.IsParallel(name) {
				continue
			}
			if amt := e.Category(name); !amt.IsZero() {
				spend[name] = spend[name].Add(amt)
			}
		}
	}
	return spend
}
