package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrEntryNotFound = errors.New("ledger entry not found")
	ErrNotFound      = errors.New("not found")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyCategory = errors.New("empty category")

	// ErrUnknownCategory rejects references to categories outside the
	// configured set.
	ErrUnknownCategory = errors.New("unknown category")
)

// Date is a calendar day. The time-of-day portion is always midnight UTC so
// that two Dates compare equal exactly when they name the same day.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO yyyy-mm-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the yyyy-mm-dd form used on every wire and storage format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// MonthLabel returns the display label for the entry's month, e.g. "March 2024".
func (d Date) MonthLabel() string {
	return d.Format("January 2006")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// LedgerEntry is one calendar day's financial activity. BroughtForward,
// TotalExpenses and TotalBalance are derived by Recalculate; whatever a caller
// supplies for them is overwritten on the next chain pass, except the
// chronologically first entry's BroughtForward, which is the ledger's seed.
type LedgerEntry struct {
	ID             string
	Date           Date
	Timestamp      time.Time
	Month          string
	Inflow         Money
	Categories     map[string]Money
	BroughtForward Money
	TotalExpenses  Money
	TotalBalance   Money
}

// Clone returns a deep copy; the Categories map is never shared.
func (e LedgerEntry) Clone() LedgerEntry {
	out := e
	out.Categories = make(map[string]Money, len(e.Categories))
	for k, v := range e.Categories {
		out.Categories[k] = v
	}
	return out
}

// Category returns the amount recorded for the named category, zero if unset.
func (e LedgerEntry) Category(name string) Money {
	return e.Categories[name]
}

// CategorySet is the configured set of expense categories. Parallel categories
// are tracked per entry but excluded from the balance-affecting expense total.
type CategorySet struct {
	names    []string
	parallel map[string]struct{}
}

// NewCategorySet builds a category set from ordered names plus the subset that
// is informational-only.
func NewCategorySet(names []string, parallel ...string) CategorySet {
	cs := CategorySet{
		names:    append([]string(nil), names...),
		parallel: make(map[string]struct{}, len(parallel)),
	}
	for _, p := range parallel {
		cs.parallel[p] = struct{}{}
	}
	return cs
}

// DefaultCategories is the stock configuration: five spending categories plus
// an investments contribution tracked outside the cash balance.
func DefaultCategories() CategorySet {
	return NewCategorySet(
		[]string{"groceries", "rent", "utilities", "travel", "investments", "others"},
		"investments",
	)
}

// Names returns the configured category names in display order.
func (c CategorySet) Names() []string {
	return append([]string(nil), c.names...)
}

// Contains reports whether name is a configured category.
func (c CategorySet) Contains(name string) bool {
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}

// IsParallel reports whether name is excluded from the expense total.
func (c CategorySet) IsParallel(name string) bool {
	_, ok := c.parallel[name]
	return ok
}

// ExpenseTotal sums the non-parallel category amounts.
func (c CategorySet) ExpenseTotal(amounts map[string]Money) Money {
	var total Money
	for _, n := range c.names {
		if c.IsParallel(n) {
			continue
		}
		total = total.Add(amounts[n])
	}
	return total
}

// Budget is a monthly spending limit for one category.
type Budget struct {
	ID       string
	Category string
	Limit    Money
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Bill is a payable with a due date. Paid bills never trigger alerts.
type Bill struct {
	ID      string
	Name    string
	Amount  Money
	DueDate Date
	Paid    bool
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return b.DueDate.Validate()
}
