// Package ledger orchestrates mutations of the entry chain: every create,
// update and delete loads the full ledger, applies the change, re-runs the
// chain recalculation and persists the whole result.
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mwsasi/personal-account-tracker/internal/core"
	"github.com/mwsasi/personal-account-tracker/internal/store"
)

// ChangePublisher is notified after a mutation has been persisted. Publishing
// is best-effort: a failure is logged, never returned to the caller.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, operation string, entryID string) error
}

// EntryInput carries the caller-supplied fields of an entry. BroughtForward
// only matters when the entry ends up chronologically first; everywhere else
// the recalculation pass overwrites it.
type EntryInput struct {
	Date           core.Date
	Timestamp      time.Time
	Inflow         core.Money
	Categories     map[string]core.Money
	BroughtForward core.Money
}

// Service is the mutation orchestrator. All mutating operations are
// serialized through one in-process lock so two rapid mutations cannot
// interleave their load/save windows; multi-process writers remain an
// operational assumption.
type Service struct {
	mu         sync.Mutex
	entries    store.EntryStore
	categories core.CategorySet
	publisher  ChangePublisher

	now   func() time.Time
	newID func() string
}

func NewService(entries store.EntryStore, categories core.CategorySet, publisher ChangePublisher) *Service {
	return &Service{
		entries:    entries,
		categories: categories,
		publisher:  publisher,
		now:        time.Now,
		newID:      newEntryID,
	}
}

// Categories returns the configured category set.
func (s *Service) Categories() core.CategorySet {
	return s.categories
}

// Entries returns the recalculated ledger in chronological order.
func (s *Service) Entries(ctx context.Context) ([]core.LedgerEntry, error) {
	all, err := s.entries.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return core.Recalculate(all, s.categories), nil
}

// OpeningBalance resolves the brought-forward default for a new entry on the
// given date, reflecting the true chain state rather than any cached total.
func (s *Service) OpeningBalance(ctx context.Context, date core.Date) (core.Money, error) {
	all, err := s.entries.LoadAll(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("load ledger: %w", err)
	}
	return core.ResolveOpeningBalance(core.Recalculate(all, s.categories), date), nil
}

// Create records a day's activity. If an entry for the same date already
// exists the two are merged: inflow and every category amount are summed and
// the merged entry's timestamp moves to now so it sorts last among same-day
// ties. Either way the whole chain is recalculated and persisted before the
// canonical entry for that date is returned.
func (s *Service) Create(ctx context.Context, in EntryInput) (core.LedgerEntry, error) {
	if err := in.Date.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.entries.LoadAll(ctx)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("load ledger: %w", err)
	}

	now := s.now()
	var id string
	if i := indexByDate(all, in.Date); i >= 0 {
		merged := all[i].Clone()
		merged.Inflow = merged.Inflow.Add(in.Inflow)
		for _, name := range s.categories.Names() {
			sum := merged.Category(name).Add(in.Categories[name])
			if !sum.IsZero() {
				merged.Categories[name] = sum
			}
		}
		merged.Timestamp = now
		merged.Month = merged.Date.MonthLabel()
		all[i] = merged
		id = merged.ID
	} else {
		id = s.newID()
		all = append(all, core.LedgerEntry{
			ID:             id,
			Date:           in.Date,
			Timestamp:      now,
			Month:          in.Date.MonthLabel(),
			Inflow:         in.Inflow,
			Categories:     s.normalizeCategories(in.Categories),
			BroughtForward: in.BroughtForward,
		})
	}

	entry, err := s.persist(ctx, all, id)
	if err != nil {
		return core.LedgerEntry{}, err
	}
	s.notify(ctx, "create", id)
	return entry, nil
}

// Update replaces the mutable fields of the entry with the given ID. Changing
// the date re-sorts the entry into its new chronological position before the
// chain is rebuilt.
func (s *Service) Update(ctx context.Context, id string, in EntryInput) (core.LedgerEntry, error) {
	if err := in.Date.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.entries.LoadAll(ctx)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("load ledger: %w", err)
	}

	i := indexByID(all, id)
	if i < 0 {
		return core.LedgerEntry{}, core.ErrEntryNotFound
	}

	updated := all[i].Clone()
	updated.Date = in.Date
	updated.Month = in.Date.MonthLabel()
	updated.Inflow = in.Inflow
	updated.Categories = s.normalizeCategories(in.Categories)
	updated.BroughtForward = in.BroughtForward
	if !in.Timestamp.IsZero() {
		updated.Timestamp = in.Timestamp
	}
	all[i] = updated

	entry, err := s.persist(ctx, all, id)
	if err != nil {
		return core.LedgerEntry{}, err
	}
	s.notify(ctx, "update", id)
	return entry, nil
}

// Delete removes the entry and reflows the chain from its date forward.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.entries.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	i := indexByID(all, id)
	if i < 0 {
		return core.ErrEntryNotFound
	}
	all = append(all[:i], all[i+1:]...)

	recalced := core.Recalculate(all, s.categories)
	if err := s.entries.SaveAll(ctx, recalced); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.notify(ctx, "delete", id)
	return nil
}

// persist recalculates and saves the full set, returning the canonical form
// of the entry with the given ID.
func (s *Service) persist(ctx context.Context, all []core.LedgerEntry, id string) (core.LedgerEntry, error) {
	recalced := core.Recalculate(all, s.categories)
	if err := s.entries.SaveAll(ctx, recalced); err != nil {
		return core.LedgerEntry{}, fmt.Errorf("save ledger: %w", err)
	}
	if i := indexByID(recalced, id); i >= 0 {
		return recalced[i], nil
	}
	return core.LedgerEntry{}, core.ErrEntryNotFound
}

func (s *Service) notify(ctx context.Context, operation, entryID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, operation, entryID); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger change",
			"operation", operation, "entry_id", entryID, "error", err)
	}
}

// normalizeCategories keeps only configured category names, dropping zero
// amounts so stored entries stay compact.
func (s *Service) normalizeCategories(in map[string]core.Money) map[string]core.Money {
	out := make(map[string]core.Money, len(in))
	for _, name := range s.categories.Names() {
		if amt, ok := in[name]; ok && !amt.IsZero() {
			out[name] = amt
		}
	}
	return out
}

func indexByDate(entries []core.LedgerEntry, date core.Date) int {
	for i, e := range entries {
		if e.Date.Equal(date.Time) {
			return i
		}
	}
	return -1
}

func indexByID(entries []core.LedgerEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func newEntryID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("e%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
