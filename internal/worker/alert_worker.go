// Package worker runs the background alert evaluation loop: periodic re-checks
// plus immediate re-evaluation whenever a ledger-changed message arrives.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/alerts"
	"github.com/mwsasi/personal-account-tracker/internal/amqp"
)

// Evaluator produces the current set of alerts.
type Evaluator interface {
	Evaluate(ctx context.Context, now time.Time) ([]alerts.Alert, error)
}

// ChangeConsumer delivers ledger-changed messages until the context ends.
type ChangeConsumer interface {
	ConsumeLedgerChanged(ctx context.Context, handler func(*amqp.LedgerChangedMessage) error) error
}

// Config holds worker configuration
type Config struct {
	// Interval is how often to re-evaluate alerts regardless of ledger
	// activity (default: 15m)
	Interval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{Interval: 15 * time.Minute}
}

// AlertWorker evaluates alerts on a schedule and on ledger changes
type AlertWorker struct {
	evaluator Evaluator
	consumer  ChangeConsumer
	config    Config

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	kickCh  chan struct{}
}

// NewAlertWorker creates a worker. The consumer may be nil, in which case only
// the periodic ticker drives evaluation.
func NewAlertWorker(evaluator Evaluator, consumer ChangeConsumer, config Config) *AlertWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &AlertWorker{
		evaluator: evaluator,
		consumer:  consumer,
		config:    config,
	}
}

// Start begins the evaluation loop. Returns an error if already running.
func (w *AlertWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("alert worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.kickCh = make(chan struct{}, 1)
	w.mu.Unlock()

	go w.runLoop(ctx)

	if w.consumer != nil {
		go w.consumeChanges(ctx)
	}

	slog.InfoContext(ctx, "Alert worker started",
		"interval", w.config.Interval,
		"amqp_enabled", w.consumer != nil)

	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *AlertWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Alert worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Alert worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker is currently running
func (w *AlertWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// runLoop is the main evaluation loop
func (w *AlertWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Evaluate immediately on startup
	w.evaluate(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.evaluate(ctx)
		case <-w.kickCh:
			w.evaluate(ctx)
		}
	}
}

// consumeChanges turns ledger-changed messages into evaluation kicks. The
// handler acks every message; evaluation failures surface in the loop's own
// logging, not as redeliveries.
func (w *AlertWorker) consumeChanges(ctx context.Context) {
	err := w.consumer.ConsumeLedgerChanged(ctx, func(msg *amqp.LedgerChangedMessage) error {
		slog.DebugContext(ctx, "Ledger change received",
			"operation", msg.Operation,
			"entry_id", msg.EntryID)
		w.kick()
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Ledger change consumption ended", "error", err)
	}
}

// kick requests one evaluation without blocking; coalesces bursts.
func (w *AlertWorker) kick() {
	select {
	case w.kickCh <- struct{}{}:
	default:
	}
}

func (w *AlertWorker) evaluate(ctx context.Context) {
	found, err := w.evaluator.Evaluate(ctx, time.Now().UTC())
	if err != nil {
		slog.ErrorContext(ctx, "Alert evaluation failed", "error", err)
		return
	}

	if len(found) == 0 {
		slog.DebugContext(ctx, "No alerts active")
		return
	}

	for _, a := range found {
		slog.WarnContext(ctx, "Alert active",
			"kind", a.Kind,
			"message", a.Message,
			"category", a.Category,
			"bill_id", a.BillID)
	}
}
