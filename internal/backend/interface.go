// Package backend selects and constructs the persistence layer from
// configuration: in-memory, SQLite, or a Google Spreadsheet.
package backend

import (
	"context"

	"github.com/mwsasi/personal-account-tracker/internal/store"
)

// BackendType identifies a persistence backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (t BackendType) String() string { return string(t) }

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	}
	return false
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the constructed store and optional cleanup function
type BackendResult struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Factory constructs backends from configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config carries everything a backend constructor may need
type Config struct {
	Type BackendType

	// SQLite configuration
	SQLiteDBPath string

	// Google Sheets configuration
	GoogleSpreadsheetID string
	LedgerSheetName     string
	BudgetsSheetName    string
	BillsSheetName      string
}
