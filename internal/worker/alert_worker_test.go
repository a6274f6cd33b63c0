package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/alerts"
	"github.com/mwsasi/personal-account-tracker/internal/amqp"
)

type countingEvaluator struct {
	calls atomic.Int64
}

func (e *countingEvaluator) Evaluate(context.Context, time.Time) ([]alerts.Alert, error) {
	e.calls.Add(1)
	return nil, nil
}

type stubConsumer struct {
	handler atomic.Value // func(*amqp.LedgerChangedMessage) error
}

func (c *stubConsumer) ConsumeLedgerChanged(ctx context.Context, handler func(*amqp.LedgerChangedMessage) error) error {
	c.handler.Store(handler)
	<-ctx.Done()
	return ctx.Err()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestWorkerEvaluatesOnStart(t *testing.T) {
	eval := &countingEvaluator{}
	w := NewAlertWorker(eval, nil, Config{Interval: time.Hour})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop(context.Background())

	waitFor(t, func() bool { return eval.calls.Load() >= 1 })
}

func TestWorkerRejectsDoubleStart(t *testing.T) {
	eval := &countingEvaluator{}
	w := NewAlertWorker(eval, nil, Config{Interval: time.Hour})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop(context.Background())

	if err := w.Start(context.Background()); err == nil {
		t.Fatalf("expected error on second start")
	}
	if !w.IsRunning() {
		t.Fatalf("worker should be running")
	}
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	eval := &countingEvaluator{}
	w := NewAlertWorker(eval, nil, Config{Interval: time.Hour})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if w.IsRunning() {
		t.Fatalf("worker should be stopped")
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestWorkerReEvaluatesOnLedgerChange(t *testing.T) {
	eval := &countingEvaluator{}
	consumer := &stubConsumer{}
	w := NewAlertWorker(eval, consumer, Config{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop(context.Background())

	waitFor(t, func() bool { return consumer.handler.Load() != nil })
	initial := eval.calls.Load()

	handler := consumer.handler.Load().(func(*amqp.LedgerChangedMessage) error)
	if err := handler(amqp.NewLedgerChangedMessage("create", "abc")); err != nil {
		t.Fatalf("handler: %v", err)
	}

	waitFor(t, func() bool { return eval.calls.Load() > initial })
}
