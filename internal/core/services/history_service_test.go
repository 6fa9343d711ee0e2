package services

import (
	"context"
	"testing"
	"time"

	"libtrack/internal/adapters/persistence/memory"
	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendEntry(t *testing.T, ledger *memory.Ledger, copyID, borrowerID uint, action string, at time.Time, due *time.Time) {
	t.Helper()
	require.NoError(t, ledger.Append(context.Background(), &models.LedgerEntry{
		CopyID:     copyID,
		BorrowerID: borrowerID,
		Action:     action,
		ActionTime: at,
		DueDate:    due,
	}))
}

func duePtr(at time.Time) *time.Time {
	due := at.Add(14 * 24 * time.Hour)
	return &due
}

func TestCurrentLoansMultipleCycles(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Copy 1: borrowed, returned, borrowed again - still out
	appendEntry(t, ledger, 1, 7, models.ActionBorrowed, base, duePtr(base))
	appendEntry(t, ledger, 1, 7, models.ActionReturned, base.Add(24*time.Hour), nil)
	appendEntry(t, ledger, 1, 7, models.ActionBorrowed, base.Add(48*time.Hour), duePtr(base.Add(48*time.Hour)))

	// Copy 2: borrowed and returned - back on the shelf
	appendEntry(t, ledger, 2, 7, models.ActionBorrowed, base, duePtr(base))
	appendEntry(t, ledger, 2, 7, models.ActionReturned, base.Add(24*time.Hour), nil)

	current, err := svc.CurrentLoans(ctx, 7)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, uint(1), current[0].CopyID)
	assert.Equal(t, base.Add(48*time.Hour), current[0].ActionTime)
}

func TestCurrentLoansEmptyBorrower(t *testing.T) {
	svc := NewHistoryService(memory.NewLedger())
	current, err := svc.CurrentLoans(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestOverdueDetection(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	// Borrowed three weeks ago, due one week ago
	borrowedAt := time.Now().Add(-21 * 24 * time.Hour)
	appendEntry(t, ledger, 1, 7, models.ActionBorrowed, borrowedAt, duePtr(borrowedAt))

	// Borrowed yesterday, due in thirteen days
	freshAt := time.Now().Add(-24 * time.Hour)
	appendEntry(t, ledger, 2, 7, models.ActionBorrowed, freshAt, duePtr(freshAt))

	overdue, err := svc.OverdueLoans(ctx, 7)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, uint(1), overdue[0].CopyID)

	all, err := svc.AllOverdue(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Returning the copy removes it from current and overdue immediately
	appendEntry(t, ledger, 1, 7, models.ActionReturned, time.Now(), nil)

	overdue, err = svc.OverdueLoans(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	current, err := svc.CurrentLoans(ctx, 7)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, uint(2), current[0].CopyID)
}

func TestIsOverdueAndDaysUntilDue(t *testing.T) {
	svc := NewHistoryService(memory.NewLedger())

	pastDue := time.Now().Add(-3 * 24 * time.Hour)
	overdueEntry := &models.LedgerEntry{Action: models.ActionBorrowed, DueDate: &pastDue}
	assert.True(t, svc.IsOverdue(overdueEntry))
	assert.Less(t, svc.DaysUntilDue(overdueEntry), 0)

	futureDue := time.Now().Add(10*24*time.Hour + time.Hour)
	freshEntry := &models.LedgerEntry{Action: models.ActionBorrowed, DueDate: &futureDue}
	assert.False(t, svc.IsOverdue(freshEntry))
	assert.Equal(t, 10, svc.DaysUntilDue(freshEntry))

	returnedEntry := &models.LedgerEntry{Action: models.ActionReturned, DueDate: &pastDue}
	assert.False(t, svc.IsOverdue(returnedEntry))
	assert.Equal(t, 0, svc.DaysUntilDue(returnedEntry))

	noDue := &models.LedgerEntry{Action: models.ActionBorrowed}
	assert.False(t, svc.IsOverdue(noDue))
	assert.Equal(t, 0, svc.DaysUntilDue(noDue))
}

func TestMostPopularCopies(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Copy 1 borrowed three times (returns must not count), copy 2 once
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i*48) * time.Hour)
		appendEntry(t, ledger, 1, uint(i+1), models.ActionBorrowed, at, duePtr(at))
		appendEntry(t, ledger, 1, uint(i+1), models.ActionReturned, at.Add(24*time.Hour), nil)
	}
	appendEntry(t, ledger, 2, 4, models.ActionBorrowed, base, duePtr(base))

	ranking, err := svc.MostPopularCopies(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, CopyPopularity{CopyID: 1, BorrowCount: 3}, ranking[0])
	assert.Equal(t, CopyPopularity{CopyID: 2, BorrowCount: 1}, ranking[1])

	// Truncation
	ranking, err = svc.MostPopularCopies(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, uint(1), ranking[0].CopyID)
}

func TestRankingTieBreakAndLimitValidation(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	appendEntry(t, ledger, 9, 2, models.ActionBorrowed, base, duePtr(base))
	appendEntry(t, ledger, 3, 5, models.ActionBorrowed, base, duePtr(base))

	// Equal counts rank by lowest key first
	ranking, err := svc.MostPopularCopies(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, uint(3), ranking[0].CopyID)
	assert.Equal(t, uint(9), ranking[1].CopyID)

	activity, err := svc.MostActiveBorrowers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	assert.Equal(t, uint(2), activity[0].BorrowerID)
	assert.Equal(t, uint(5), activity[1].BorrowerID)

	_, err = svc.MostPopularCopies(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.MostActiveBorrowers(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTotalBorrowings(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	appendEntry(t, ledger, 1, 7, models.ActionBorrowed, base, duePtr(base))
	appendEntry(t, ledger, 1, 7, models.ActionReturned, base.Add(time.Hour), nil)
	appendEntry(t, ledger, 1, 8, models.ActionBorrowed, base.Add(2*time.Hour), duePtr(base))
	appendEntry(t, ledger, 2, 7, models.ActionBorrowed, base, duePtr(base))

	byCopy, err := svc.TotalBorrowingsForCopy(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byCopy)

	byBorrower, err := svc.TotalBorrowingsForBorrower(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byBorrower)
}

func TestHistoryOrderingAndDateRange(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
	}
	appendEntry(t, ledger, 1, 7, models.ActionBorrowed, day(1), duePtr(day(1)))
	appendEntry(t, ledger, 1, 7, models.ActionReturned, day(3), nil)
	appendEntry(t, ledger, 1, 8, models.ActionBorrowed, day(5), duePtr(day(5)))

	history, err := svc.HistoryForCopy(ctx, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, day(5), history[0].ActionTime)
	assert.Equal(t, day(1), history[2].ActionTime)

	from, to := day(2), day(4)
	windowed, err := svc.HistoryForCopy(ctx, 1, &from, &to)
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, models.ActionReturned, windowed[0].Action)

	_, err = svc.HistoryForCopy(ctx, 1, &to, &from)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	borrowerHistory, err := svc.HistoryForBorrower(ctx, 7, nil, nil)
	require.NoError(t, err)
	assert.Len(t, borrowerHistory, 2)

	inRange, err := svc.HistoryInRange(ctx, day(1), day(5))
	require.NoError(t, err)
	assert.Len(t, inRange, 3)
}

func TestMostRecentEntryForCopy(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	_, err := svc.MostRecentEntryForCopy(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	appendEntry(t, ledger, 1, 7, models.ActionBorrowed, base, duePtr(base))
	appendEntry(t, ledger, 1, 7, models.ActionReturned, base.Add(time.Hour), nil)

	latest, err := svc.MostRecentEntryForCopy(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ActionReturned, latest.Action)
}

func TestBorrowerStatistics(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	svc := NewHistoryService(ledger)

	// One finished cycle plus one overdue loan
	past := time.Now().Add(-30 * 24 * time.Hour)
	appendEntry(t, ledger, 1, 7, models.ActionBorrowed, past, duePtr(past))
	appendEntry(t, ledger, 1, 7, models.ActionReturned, past.Add(24*time.Hour), nil)

	borrowedAt := time.Now().Add(-21 * 24 * time.Hour)
	appendEntry(t, ledger, 2, 7, models.ActionBorrowed, borrowedAt, duePtr(borrowedAt))

	stats, err := svc.BorrowerStatistics(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), stats.BorrowerID)
	assert.Equal(t, int64(2), stats.TotalBorrowings)
	assert.Equal(t, 1, stats.CurrentLoans)
	assert.True(t, stats.HasOverdue)
}

// State machine and query engine agree: after a borrow the reconstruction
// shows the loan, after a return it does not.
func TestStateAndLedgerAgreement(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	history := NewHistoryService(f.ledger)
	copy := f.addCopy(t)
	john := f.addBorrower(t, "John Doe", "john@x.com")

	borrowed, err := f.lending.BorrowCopy(ctx, copy.ID, john.ID)
	require.NoError(t, err)
	require.NotNil(t, borrowed.BorrowerID)

	current, err := history.CurrentLoans(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, copy.ID, current[0].CopyID)

	returned, err := f.lending.Return(ctx, copy.ID)
	require.NoError(t, err)
	assert.Nil(t, returned.BorrowerID)

	current, err = history.CurrentLoans(ctx, john.ID)
	require.NoError(t, err)
	assert.Empty(t, current)
}
