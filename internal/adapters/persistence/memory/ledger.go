package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/adapters/persistence/repositories"
)

// Ledger is an in-memory append-only Ledger implementation
type Ledger struct {
	mu      sync.RWMutex
	nextID  uint
	entries []*models.LedgerEntry
}

// NewLedger creates an empty in-memory ledger
func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

var _ repositories.Ledger = (*Ledger)(nil)

func cloneEntry(e *models.LedgerEntry) *models.LedgerEntry {
	clone := *e
	if e.DueDate != nil {
		due := *e.DueDate
		clone.DueDate = &due
	}
	return &clone
}

// Append appends one entry to the ledger
func (l *Ledger) Append(_ context.Context, entry *models.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ID = l.nextID
	l.nextID++
	entry.CreatedAt = time.Now()
	l.entries = append(l.entries, cloneEntry(entry))
	return nil
}

// query returns matching entries ordered by action time desc, then id desc
func (l *Ledger) query(match func(*models.LedgerEntry) bool) []*models.LedgerEntry {
	var out []*models.LedgerEntry
	for _, e := range l.entries {
		if match(e) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ActionTime.Equal(out[j].ActionTime) {
			return out[i].ActionTime.After(out[j].ActionTime)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// QueryByCopy lists all entries for a copy, most recent first
func (l *Ledger) QueryByCopy(_ context.Context, copyID uint) ([]*models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(func(e *models.LedgerEntry) bool { return e.CopyID == copyID }), nil
}

// QueryByBorrower lists all entries for a borrower, most recent first
func (l *Ledger) QueryByBorrower(_ context.Context, borrowerID uint) ([]*models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(func(e *models.LedgerEntry) bool { return e.BorrowerID == borrowerID }), nil
}

// QueryByDateRange lists all entries whose action time falls in [from, to]
func (l *Ledger) QueryByDateRange(_ context.Context, from, to time.Time) ([]*models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(func(e *models.LedgerEntry) bool { return inRange(e.ActionTime, from, to) }), nil
}

// QueryByCopyAndDateRange lists a copy's entries within [from, to]
func (l *Ledger) QueryByCopyAndDateRange(_ context.Context, copyID uint, from, to time.Time) ([]*models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(func(e *models.LedgerEntry) bool {
		return e.CopyID == copyID && inRange(e.ActionTime, from, to)
	}), nil
}

// QueryByBorrowerAndDateRange lists a borrower's entries within [from, to]
func (l *Ledger) QueryByBorrowerAndDateRange(_ context.Context, borrowerID uint, from, to time.Time) ([]*models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(func(e *models.LedgerEntry) bool {
		return e.BorrowerID == borrowerID && inRange(e.ActionTime, from, to)
	}), nil
}

// All lists the entire ledger, most recent first
func (l *Ledger) All(_ context.Context) ([]*models.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(func(*models.LedgerEntry) bool { return true }), nil
}

// Len reports the number of entries in the ledger
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
