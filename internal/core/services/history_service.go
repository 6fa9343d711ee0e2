package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/adapters/persistence/repositories"
	"libtrack/internal/core/domain"
)

// HistoryService derives loan state from the ledger. It is strictly read-only:
// every answer is a pure function of the ledger's current contents, safe to
// run concurrently with borrows and returns.
type HistoryService struct {
	ledger repositories.Ledger
}

// NewHistoryService creates a new history service
func NewHistoryService(ledger repositories.Ledger) *HistoryService {
	return &HistoryService{ledger: ledger}
}

// CopyPopularity counts how often a copy was borrowed
type CopyPopularity struct {
	CopyID      uint  `json:"copy_id"`
	BorrowCount int64 `json:"borrow_count"`
}

// BorrowerActivity counts how often a borrower borrowed
type BorrowerActivity struct {
	BorrowerID  uint  `json:"borrower_id"`
	BorrowCount int64 `json:"borrow_count"`
}

// BorrowerStats summarizes a borrower's lending record
type BorrowerStats struct {
	BorrowerID      uint  `json:"borrower_id"`
	TotalBorrowings int64 `json:"total_borrowings"`
	CurrentLoans    int   `json:"current_loans"`
	HasOverdue      bool  `json:"has_overdue"`
}

// currentFrom picks the current BORROWED entries out of an entry list that is
// already ordered most recent first. The first entry seen per copy is that
// copy's latest action, so it alone decides whether the copy is out.
func currentFrom(entries []*models.LedgerEntry) []*models.LedgerEntry {
	var current []*models.LedgerEntry
	seen := make(map[uint]bool)
	for _, e := range entries {
		if seen[e.CopyID] {
			continue
		}
		seen[e.CopyID] = true
		if e.Action == models.ActionBorrowed {
			current = append(current, e)
		}
	}
	return current
}

// CurrentLoans lists the BORROWED entries of a borrower that have no later
// RETURNED entry for the same copy. Only the most recent borrow/return cycle
// per copy matters.
func (s *HistoryService) CurrentLoans(ctx context.Context, borrowerID uint) ([]*models.LedgerEntry, error) {
	entries, err := s.ledger.QueryByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return currentFrom(entries), nil
}

// OverdueLoans lists a borrower's current loans whose due date has passed
func (s *HistoryService) OverdueLoans(ctx context.Context, borrowerID uint) ([]*models.LedgerEntry, error) {
	current, err := s.CurrentLoans(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return overdueFrom(current, time.Now()), nil
}

// AllOverdue lists every overdue loan across all borrowers
func (s *HistoryService) AllOverdue(ctx context.Context) ([]*models.LedgerEntry, error) {
	entries, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	return overdueFrom(currentFrom(entries), time.Now()), nil
}

func overdueFrom(current []*models.LedgerEntry, now time.Time) []*models.LedgerEntry {
	var overdue []*models.LedgerEntry
	for _, e := range current {
		if isOverdueAt(e, now) {
			overdue = append(overdue, e)
		}
	}
	return overdue
}

func isOverdueAt(entry *models.LedgerEntry, now time.Time) bool {
	return entry.Action == models.ActionBorrowed &&
		entry.DueDate != nil &&
		now.After(*entry.DueDate)
}

// IsOverdue reports whether a BORROWED entry's due date has passed
func (s *HistoryService) IsOverdue(entry *models.LedgerEntry) bool {
	return isOverdueAt(entry, time.Now())
}

// DaysUntilDue returns the signed whole-day count from now to the entry's due
// date, negative once overdue. RETURNED entries and entries without a due date
// report zero.
func (s *HistoryService) DaysUntilDue(entry *models.LedgerEntry) int {
	if entry.Action != models.ActionBorrowed || entry.DueDate == nil {
		return 0
	}
	return int(time.Until(*entry.DueDate).Hours() / 24)
}

// EntryResponse projects an entry with its overdue status computed against now
func (s *HistoryService) EntryResponse(entry *models.LedgerEntry) *models.LedgerEntryResponse {
	return entry.ToResponse(s.IsOverdue(entry), s.DaysUntilDue(entry))
}

// HistoryForCopy lists a copy's ledger entries, most recent first. A non-nil
// from/to pair restricts the result to that action-time window.
func (s *HistoryService) HistoryForCopy(ctx context.Context, copyID uint, from, to *time.Time) ([]*models.LedgerEntry, error) {
	if from != nil && to != nil {
		if to.Before(*from) {
			return nil, fmt.Errorf("%w: date range end before start", domain.ErrInvalidArgument)
		}
		return s.ledger.QueryByCopyAndDateRange(ctx, copyID, *from, *to)
	}
	return s.ledger.QueryByCopy(ctx, copyID)
}

// HistoryForBorrower lists a borrower's ledger entries, most recent first
func (s *HistoryService) HistoryForBorrower(ctx context.Context, borrowerID uint, from, to *time.Time) ([]*models.LedgerEntry, error) {
	if from != nil && to != nil {
		if to.Before(*from) {
			return nil, fmt.Errorf("%w: date range end before start", domain.ErrInvalidArgument)
		}
		return s.ledger.QueryByBorrowerAndDateRange(ctx, borrowerID, *from, *to)
	}
	return s.ledger.QueryByBorrower(ctx, borrowerID)
}

// HistoryInRange lists every ledger entry within the window, most recent first
func (s *HistoryService) HistoryInRange(ctx context.Context, from, to time.Time) ([]*models.LedgerEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range end before start", domain.ErrInvalidArgument)
	}
	return s.ledger.QueryByDateRange(ctx, from, to)
}

// MostRecentEntryForCopy returns a copy's latest ledger entry, or ErrNotFound
// when the copy has never circulated.
func (s *HistoryService) MostRecentEntryForCopy(ctx context.Context, copyID uint) (*models.LedgerEntry, error) {
	entries, err := s.ledger.QueryByCopy(ctx, copyID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrNotFound
	}
	return entries[0], nil
}

// MostPopularCopies ranks copies by how often they were borrowed, count
// descending, lowest copy id first on ties, truncated to limit.
func (s *HistoryService) MostPopularCopies(ctx context.Context, limit int) ([]CopyPopularity, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	entries, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64)
	for _, e := range entries {
		if e.Action == models.ActionBorrowed {
			counts[e.CopyID]++
		}
	}

	ranking := make([]CopyPopularity, 0, len(counts))
	for copyID, count := range counts {
		ranking = append(ranking, CopyPopularity{CopyID: copyID, BorrowCount: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].BorrowCount != ranking[j].BorrowCount {
			return ranking[i].BorrowCount > ranking[j].BorrowCount
		}
		return ranking[i].CopyID < ranking[j].CopyID
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// MostActiveBorrowers ranks borrowers by how often they borrowed, count
// descending, lowest borrower id first on ties, truncated to limit.
func (s *HistoryService) MostActiveBorrowers(ctx context.Context, limit int) ([]BorrowerActivity, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	entries, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64)
	for _, e := range entries {
		if e.Action == models.ActionBorrowed {
			counts[e.BorrowerID]++
		}
	}

	ranking := make([]BorrowerActivity, 0, len(counts))
	for borrowerID, count := range counts {
		ranking = append(ranking, BorrowerActivity{BorrowerID: borrowerID, BorrowCount: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].BorrowCount != ranking[j].BorrowCount {
			return ranking[i].BorrowCount > ranking[j].BorrowCount
		}
		return ranking[i].BorrowerID < ranking[j].BorrowerID
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// TotalBorrowingsForCopy counts how often a copy was ever borrowed
func (s *HistoryService) TotalBorrowingsForCopy(ctx context.Context, copyID uint) (int64, error) {
	entries, err := s.ledger.QueryByCopy(ctx, copyID)
	if err != nil {
		return 0, err
	}
	return countBorrowed(entries), nil
}

// TotalBorrowingsForBorrower counts how often a borrower ever borrowed
func (s *HistoryService) TotalBorrowingsForBorrower(ctx context.Context, borrowerID uint) (int64, error) {
	entries, err := s.ledger.QueryByBorrower(ctx, borrowerID)
	if err != nil {
		return 0, err
	}
	return countBorrowed(entries), nil
}

func countBorrowed(entries []*models.LedgerEntry) int64 {
	var n int64
	for _, e := range entries {
		if e.Action == models.ActionBorrowed {
			n++
		}
	}
	return n
}

// BorrowerStatistics summarizes a borrower's record in one pass over their
// ledger entries.
func (s *HistoryService) BorrowerStatistics(ctx context.Context, borrowerID uint) (*BorrowerStats, error) {
	entries, err := s.ledger.QueryByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	current := currentFrom(entries)
	now := time.Now()
	hasOverdue := false
	for _, e := range current {
		if isOverdueAt(e, now) {
			hasOverdue = true
			break
		}
	}

	return &BorrowerStats{
		BorrowerID:      borrowerID,
		TotalBorrowings: countBorrowed(entries),
		CurrentLoans:    len(current),
		HasOverdue:      hasOverdue,
	}, nil
}
