// Package google stores the ledger in a Google Spreadsheet with one worksheet
// per collection. Saves rewrite the whole worksheet, mirroring the full-replace
// semantics of the other backends.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mwsasi/personal-account-tracker/internal/core"
	"github.com/mwsasi/personal-account-tracker/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	budgetsSheet  string
	billsSheet    string
}

// Ensure interface conformance
var _ store.Store = (*Client)(nil)

// New creates a Sheets-backed store. Credentials come from the environment:
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, ledgerSheet, budgetsSheet, billsSheet string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if ledgerSheet == "" {
		ledgerSheet = "Ledger"
	}
	if budgetsSheet == "" {
		budgetsSheet = "Budgets"
	}
	if billsSheet == "" {
		billsSheet = "Bills"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerSheet:   ledgerSheet,
		budgetsSheet:  budgetsSheet,
		billsSheet:    billsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// LoadAll implements store.EntryStore.
func (c *Client) LoadAll(ctx context.Context) ([]core.LedgerEntry, error) {
	values, err := c.readSheet(ctx, c.ledgerSheet, "A:I")
	if err != nil {
		return nil, err
	}

	var out []core.LedgerEntry
	for i, row := range values {
		entry, ok := entryFromRow(toStrings(row))
		if !ok {
			if i > 0 {
				slog.WarnContext(ctx, "Skipping unparseable ledger row", "sheet", c.ledgerSheet, "row", i+1)
			}
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// SaveAll implements store.EntryStore by rewriting the ledger worksheet.
func (c *Client) SaveAll(ctx context.Context, entries []core.LedgerEntry) error {
	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, ledgerHeader())
	for _, e := range entries {
		rows = append(rows, entryToRow(e))
	}
	return c.replaceSheet(ctx, c.ledgerSheet, "A:I", rows)
}

// LoadBudgets implements store.BudgetStore.
func (c *Client) LoadBudgets(ctx context.Context) ([]core.Budget, error) {
	values, err := c.readSheet(ctx, c.budgetsSheet, "A:C")
	if err != nil {
		return nil, err
	}

	var out []core.Budget
	for _, row := range values {
		if b, ok := budgetFromRow(toStrings(row)); ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// SaveBudgets implements store.BudgetStore.
func (c *Client) SaveBudgets(ctx context.Context, budgets []core.Budget) error {
	rows := make([][]any, 0, len(budgets)+1)
	rows = append(rows, budgetsHeader())
	for _, b := range budgets {
		rows = append(rows, budgetToRow(b))
	}
	return c.replaceSheet(ctx, c.budgetsSheet, "A:C", rows)
}

// LoadBills implements store.BillStore.
func (c *Client) LoadBills(ctx context.Context) ([]core.Bill, error) {
	values, err := c.readSheet(ctx, c.billsSheet, "A:E")
	if err != nil {
		return nil, err
	}

	var out []core.Bill
	for _, row := range values {
		if b, ok := billFromRow(toStrings(row)); ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// SaveBills implements store.BillStore.
func (c *Client) SaveBills(ctx context.Context, bills []core.Bill) error {
	rows := make([][]any, 0, len(bills)+1)
	rows = append(rows, billsHeader())
	for _, b := range bills {
		rows = append(rows, billToRow(b))
	}
	return c.replaceSheet(ctx, c.billsSheet, "A:E", rows)
}

func (c *Client) readSheet(ctx context.Context, sheetName, cols string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheetName, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// replaceSheet clears the worksheet range and writes the given rows from A1.
// RAW input keeps amount strings from being reinterpreted by the spreadsheet.
func (c *Client) replaceSheet(ctx context.Context, sheetName, cols string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRng := fmt.Sprintf("%s!%s", sheetName, cols)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}

	writeRng := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", writeRng, err)
	}

	slog.DebugContext(ctx, "Rewrote worksheet", "sheet", sheetName, "rows", len(rows)-1)
	return nil
}
