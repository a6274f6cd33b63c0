package google

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/core"
)

// Worksheet layouts. Header rows are written on save and skipped on load
// because their date columns do not parse.

func ledgerHeader() []any {
	return []any{"ID", "Date", "Timestamp", "Month", "Inflow", "Categories", "BroughtForward", "TotalExpenses", "TotalBalance"}
}

func budgetsHeader() []any {
	return []any{"ID", "Category", "Limit"}
}

func billsHeader() []any {
	return []any{"ID", "Name", "Amount", "DueDate", "Paid"}
}

// entryFromRow parses one ledger row. Rows without an ID or a parseable date
// are rejected; malformed amounts coerce to zero like everywhere else.
func entryFromRow(cols []string) (core.LedgerEntry, bool) {
	if len(cols) < 2 {
		return core.LedgerEntry{}, false
	}
	id := strings.TrimSpace(safeGet(cols, 0))
	if id == "" {
		return core.LedgerEntry{}, false
	}
	date, err := core.ParseDate(safeGet(cols, 1))
	if err != nil {
		return core.LedgerEntry{}, false
	}

	e := core.LedgerEntry{
		ID:             id,
		Date:           date,
		Month:          strings.TrimSpace(safeGet(cols, 3)),
		Inflow:         core.CoerceMoney(safeGet(cols, 4)),
		Categories:     parseCategories(safeGet(cols, 5)),
		BroughtForward: core.CoerceMoney(safeGet(cols, 6)),
		TotalExpenses:  core.CoerceMoney(safeGet(cols, 7)),
		TotalBalance:   core.CoerceMoney(safeGet(cols, 8)),
	}
	if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(safeGet(cols, 2))); err == nil {
		e.Timestamp = ts
	}
	if e.Month == "" {
		e.Month = e.Date.MonthLabel()
	}
	return e, true
}

func entryToRow(e core.LedgerEntry) []any {
	return []any{
		e.ID,
		e.Date.ISO(),
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Month,
		e.Inflow.String(),
		encodeCategories(e.Categories),
		e.BroughtForward.String(),
		e.TotalExpenses.String(),
		e.TotalBalance.String(),
	}
}

func budgetFromRow(cols []string) (core.Budget, bool) {
	id := strings.TrimSpace(safeGet(cols, 0))
	category := strings.TrimSpace(safeGet(cols, 1))
	if id == "" || category == "" || strings.EqualFold(id, "ID") {
		return core.Budget{}, false
	}
	return core.Budget{
		ID:       id,
		Category: category,
		Limit:    core.CoerceMoney(safeGet(cols, 2)),
	}, true
}

func budgetToRow(b core.Budget) []any {
	return []any{b.ID, b.Category, b.Limit.String()}
}

func billFromRow(cols []string) (core.Bill, bool) {
	id := strings.TrimSpace(safeGet(cols, 0))
	if id == "" || strings.EqualFold(id, "ID") {
		return core.Bill{}, false
	}
	due, err := core.ParseDate(safeGet(cols, 3))
	if err != nil {
		return core.Bill{}, false
	}
	return core.Bill{
		ID:      id,
		Name:    strings.TrimSpace(safeGet(cols, 1)),
		Amount:  core.CoerceMoney(safeGet(cols, 2)),
		DueDate: due,
		Paid:    parseBool(safeGet(cols, 4)),
	}, true
}

func billToRow(b core.Bill) []any {
	paid := "FALSE"
	if b.Paid {
		paid = "TRUE"
	}
	return []any{b.ID, b.Name, b.Amount.String(), b.DueDate.ISO(), paid}
}

// encodeCategories serializes category amounts as a JSON object of decimal
// strings, one cell per row.
func encodeCategories(categories map[string]core.Money) string {
	if len(categories) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(categories)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func parseCategories(cell string) map[string]core.Money {
	out := map[string]core.Money{}
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return out
	}
	// Money's lenient unmarshal handles both quoted decimals and raw numbers.
	if err := json.Unmarshal([]byte(cell), &out); err != nil {
		return map[string]core.Money{}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
