// Package storage is the SQLite backend. Every collection is saved with full
// replace semantics inside one transaction: either the whole recalculated set
// lands or the previous state stays intact.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadAll implements store.EntryStore.
func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_date, ts, month_label, inflow_cents, categories,
		       brought_forward_cents, total_expenses_cents, total_balance_cents
		FROM entries
		ORDER BY entry_date, ts, id`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []core.LedgerEntry
	for rows.Next() {
		var row entryRow
		if err := rows.Scan(&row.ID, &row.Date, &row.Timestamp, &row.Month, &row.InflowCents,
			&row.Categories, &row.BroughtForwardCents, &row.TotalExpensesCents, &row.TotalBalanceCents); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, row.toEntry())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// SaveAll implements store.EntryStore with delete-and-insert in one transaction.
func (r *SQLiteRepository) SaveAll(ctx context.Context, entries []core.LedgerEntry) error {
	return r.replaceAll(ctx, "entries", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO entries (id, entry_date, ts, month_label, inflow_cents, categories,
			                     brought_forward_cents, total_expenses_cents, total_balance_cents)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			row := newEntryRow(e)
			if _, err := stmt.ExecContext(ctx, row.ID, row.Date, row.Timestamp, row.Month,
				row.InflowCents, row.Categories, row.BroughtForwardCents,
				row.TotalExpensesCents, row.TotalBalanceCents); err != nil {
				return fmt.Errorf("insert entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// LoadBudgets implements store.BudgetStore.
func (r *SQLiteRepository) LoadBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, category, limit_cents FROM budgets ORDER BY category, id`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var limit int64
		if err := rows.Scan(&b.ID, &b.Category, &limit); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Limit = core.Money{Cents: limit}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

// SaveBudgets implements store.BudgetStore.
func (r *SQLiteRepository) SaveBudgets(ctx context.Context, budgets []core.Budget) error {
	return r.replaceAll(ctx, "budgets", func(tx *sql.Tx) error {
		for _, b := range budgets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO budgets (id, category, limit_cents) VALUES (?, ?, ?)`,
				b.ID, b.Category, b.Limit.Cents); err != nil {
				return fmt.Errorf("insert budget %s: %w", b.ID, err)
			}
		}
		return nil
	})
}

// LoadBills implements store.BillStore.
func (r *SQLiteRepository) LoadBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, amount_cents, due_date, paid FROM bills ORDER BY due_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		var b core.Bill
		var amount int64
		var due string
		var paid int64
		if err := rows.Scan(&b.ID, &b.Name, &amount, &due, &paid); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.Amount = core.Money{Cents: amount}
		b.Paid = paid != 0
		if d, err := core.ParseDate(due); err == nil {
			b.DueDate = d
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return out, nil
}

// SaveBills implements store.BillStore.
func (r *SQLiteRepository) SaveBills(ctx context.Context, bills []core.Bill) error {
	return r.replaceAll(ctx, "bills", func(tx *sql.Tx) error {
		for _, b := range bills {
			paid := 0
			if b.Paid {
				paid = 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bills (id, name, amount_cents, due_date, paid) VALUES (?, ?, ?, ?, ?)`,
				b.ID, b.Name, b.Amount.Cents, b.DueDate.ISO(), paid); err != nil {
				return fmt.Errorf("insert bill %s: %w", b.ID, err)
			}
		}
		return nil
	})
}

// replaceAll wipes one table and reinserts inside a single transaction.
func (r *SQLiteRepository) replaceAll(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

// entryRow is the flat SQLite shape of a ledger entry. Category amounts are a
// JSON object column because the category set is configuration, not schema.
type entryRow struct {
	ID                  string
	Date                string
	Timestamp           string
	Month               string
	InflowCents         int64
	Categories          string
	BroughtForwardCents int64
	TotalExpensesCents  int64
	TotalBalanceCents   int64
}

func newEntryRow(e core.LedgerEntry) entryRow {
	cats := make(map[string]int64, len(e.Categories))
	for name, amt := range e.Categories {
		cats[name] = amt.Cents
	}
	encoded, err := json.Marshal(cats)
	if err != nil {
		encoded = []byte("{}")
	}
	return entryRow{
		ID:                  e.ID,
		Date:                e.Date.ISO(),
		Timestamp:           e.Timestamp.UTC().Format(time.RFC3339Nano),
		Month:               e.Month,
		InflowCents:         e.Inflow.Cents,
		Categories:          string(encoded),
		BroughtForwardCents: e.BroughtForward.Cents,
		TotalExpensesCents:  e.TotalExpenses.Cents,
		TotalBalanceCents:   e.TotalBalance.Cents,
	}
}

func (row entryRow) toEntry() core.LedgerEntry {
	e := core.LedgerEntry{
		ID:             row.ID,
		Month:          row.Month,
		Inflow:         core.Money{Cents: row.InflowCents},
		Categories:     map[string]core.Money{},
		BroughtForward: core.Money{Cents: row.BroughtForwardCents},
		TotalExpenses:  core.Money{Cents: row.TotalExpensesCents},
		TotalBalance:   core.Money{Cents: row.TotalBalanceCents},
	}
	if d, err := core.ParseDate(row.Date); err == nil {
		e.Date = d
	}
	if ts, err := time.Parse(time.RFC3339Nano, row.Timestamp); err == nil {
		e.Timestamp = ts
	}
	if e.Month == "" && !e.Date.IsZero() {
		e.Month = e.Date.MonthLabel()
	}

	var cats map[string]int64
	if err := json.Unmarshal([]byte(row.Categories), &cats); err == nil {
		for name, cents := range cats {
			e.Categories[name] = core.Money{Cents: cents}
		}
	}
	return e
}
