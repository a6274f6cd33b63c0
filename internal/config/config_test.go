package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("expected default port 8081, got %s", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("expected default backend memory, got %s", cfg.DataBackend)
	}
	if cfg.AMQPExchange != "tracker" || cfg.AMQPQueue != "ledger_changes" {
		t.Errorf("unexpected AMQP defaults: %s / %s", cfg.AMQPExchange, cfg.AMQPQueue)
	}
	if cfg.BudgetAlertThreshold != 0.85 {
		t.Errorf("expected threshold 0.85, got %v", cfg.BudgetAlertThreshold)
	}
	if cfg.BillDueWindow != 7*24*time.Hour {
		t.Errorf("expected 7 day due window, got %v", cfg.BillDueWindow)
	}
	if cfg.AlertInterval != 15*time.Minute {
		t.Errorf("expected 15m alert interval, got %v", cfg.AlertInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("BUDGET_ALERT_THRESHOLD", "0.5")
	t.Setenv("ALERT_INTERVAL", "30s")

	cfg := Load()
	if cfg.Port != "9999" || cfg.DataBackend != "sqlite" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.BudgetAlertThreshold != 0.5 {
		t.Errorf("threshold override not applied: %v", cfg.BudgetAlertThreshold)
	}
	if cfg.AlertInterval != 30*time.Second {
		t.Errorf("interval override not applied: %v", cfg.AlertInterval)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("BUDGET_ALERT_THRESHOLD", "not-a-number")
	t.Setenv("ALERT_INTERVAL", "soon")

	cfg := Load()
	if cfg.BudgetAlertThreshold != 0.85 {
		t.Errorf("expected default threshold on malformed env, got %v", cfg.BudgetAlertThreshold)
	}
	if cfg.AlertInterval != 15*time.Minute {
		t.Errorf("expected default interval on malformed env, got %v", cfg.AlertInterval)
	}
}

func validConfig() *Config {
	return &Config{
		Port:                 "8081",
		DataBackend:          "memory",
		SQLiteDBPath:         "./data/tracker.db",
		AMQPExchange:         "tracker",
		AMQPQueue:            "ledger_changes",
		LedgerSheetName:      "Ledger",
		BudgetsSheetName:     "Budgets",
		BillsSheetName:       "Bills",
		AlertInterval:        time.Minute,
		BudgetAlertThreshold: 0.85,
		BillDueWindow:        7 * 24 * time.Hour,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "csv" }, "invalid data backend"},
		{"sqlite without path", func(c *Config) { c.DataBackend = "sqlite"; c.SQLiteDBPath = "" }, "SQLite database path"},
		{"sheets without spreadsheet", func(c *Config) { c.DataBackend = "sheets" }, "Spreadsheet ID"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "AMQP URL scheme"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "queue name"},
		{"zero threshold", func(c *Config) { c.BudgetAlertThreshold = 0 }, "budget alert threshold"},
		{"threshold above one", func(c *Config) { c.BudgetAlertThreshold = 1.5 }, "budget alert threshold"},
		{"tiny due window", func(c *Config) { c.BillDueWindow = time.Hour }, "bill due window"},
		{"tiny interval", func(c *Config) { c.AlertInterval = time.Millisecond }, "alert interval"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCategoriesDefaultAndCustom(t *testing.T) {
	cfg := validConfig()
	cats := cfg.Categories()
	if !cats.Contains("groceries") || !cats.IsParallel("investments") {
		t.Errorf("expected stock category set, got %v", cats.Names())
	}

	cfg.CategoryNames = "food, housing ,savings"
	cfg.ParallelCategories = "savings"
	cats = cfg.Categories()
	if len(cats.Names()) != 3 || !cats.Contains("housing") {
		t.Errorf("custom names not parsed: %v", cats.Names())
	}
	if !cats.IsParallel("savings") || cats.IsParallel("food") {
		t.Errorf("parallel flag wrong: %v", cats.Names())
	}
}

func TestValidateRejectsUnknownParallelCategory(t *testing.T) {
	cfg := validConfig()
	cfg.CategoryNames = "food,housing"
	cfg.ParallelCategories = "savings"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "parallel category") {
		t.Fatalf("expected parallel category error, got %v", err)
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.DataBackend = "csv"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "invalid data backend") {
		t.Fatalf("expected both errors reported, got %v", err)
	}
}
