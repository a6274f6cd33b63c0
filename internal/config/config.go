package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID string
	LedgerSheetName     string
	BudgetsSheetName    string
	BillsSheetName      string

	// Alerts
	AlertInterval        time.Duration
	BudgetAlertThreshold float64
	BillDueWindow        time.Duration

	// Categories: comma-separated names; empty means the stock set
	CategoryNames      string
	ParallelCategories string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tracker.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		LedgerSheetName:     getEnv("GOOGLE_LEDGER_SHEET_NAME", "Ledger"),
		BudgetsSheetName:    getEnv("GOOGLE_BUDGETS_SHEET_NAME", "Budgets"),
		BillsSheetName:      getEnv("GOOGLE_BILLS_SHEET_NAME", "Bills"),

		AlertInterval:        getEnvDuration("ALERT_INTERVAL", 15*time.Minute),
		BudgetAlertThreshold: getEnvFloat("BUDGET_ALERT_THRESHOLD", 0.85),
		BillDueWindow:        getEnvDuration("BILL_DUE_WINDOW", 7*24*time.Hour),

		CategoryNames:      getEnv("CATEGORIES", ""),
		ParallelCategories: getEnv("PARALLEL_CATEGORIES", ""),
	}
}

// Categories builds the configured category set, falling back to the stock
// set when CATEGORIES is unset.
func (c *Config) Categories() core.CategorySet {
	names := splitList(c.CategoryNames)
	if len(names) == 0 {
		return core.DefaultCategories()
	}
	return core.NewCategorySet(names, splitList(c.ParallelCategories)...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.LedgerSheetName == "" {
			errs = append(errs, "ledger sheet name cannot be empty when using sheets backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.BudgetAlertThreshold <= 0 || c.BudgetAlertThreshold > 1 {
		errs = append(errs, fmt.Sprintf("invalid budget alert threshold %v: must be in (0, 1]", c.BudgetAlertThreshold))
	}
	if c.BillDueWindow < 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid bill due window %v: must be at least 24 hours", c.BillDueWindow))
	}
	if c.AlertInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid alert interval %v: must be at least 1 second", c.AlertInterval))
	}

	if names := splitList(c.CategoryNames); len(names) > 0 {
		set := c.Categories()
		for _, p := range splitList(c.ParallelCategories) {
			if !set.Contains(p) {
				errs = append(errs, fmt.Sprintf("parallel category '%s' is not one of the configured categories", p))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
