package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"libtrack/internal/adapters/persistence/memory"
	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lendingFixture struct {
	lending   *LendingService
	catalog   *CatalogService
	borrowers *BorrowerService
	ledger    *memory.Ledger
	copies    *memory.CatalogStore
}

func newLendingFixture() *lendingFixture {
	copies := memory.NewCatalogStore()
	borrowers := memory.NewBorrowerStore()
	ledger := memory.NewLedger()
	return &lendingFixture{
		lending:   NewLendingService(copies, borrowers, ledger, DefaultLoanPeriodDays),
		catalog:   NewCatalogService(copies),
		borrowers: NewBorrowerService(borrowers, copies),
		ledger:    ledger,
		copies:    copies,
	}
}

func (f *lendingFixture) addCopy(t *testing.T) *models.Copy {
	t.Helper()
	copy, err := f.catalog.AddCopy(context.Background(), "9780131103627", "Effective Java", "Joshua Bloch")
	require.NoError(t, err)
	return copy
}

func (f *lendingFixture) addBorrower(t *testing.T, name, email string) *models.Borrower {
	t.Helper()
	borrower, err := f.borrowers.Register(context.Background(), name, email)
	require.NoError(t, err)
	return borrower
}

func TestBorrowCopy(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	copy := f.addCopy(t)
	john := f.addBorrower(t, "John Doe", "john@x.com")

	before := time.Now()
	borrowed, err := f.lending.BorrowCopy(ctx, copy.ID, john.ID)
	require.NoError(t, err)

	assert.False(t, borrowed.IsAvailable())
	require.NotNil(t, borrowed.BorrowerID)
	assert.Equal(t, john.ID, *borrowed.BorrowerID)

	// One BORROWED entry with a due date two weeks out
	entries, err := f.ledger.QueryByCopy(ctx, copy.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionBorrowed, entries[0].Action)
	require.NotNil(t, entries[0].DueDate)
	expectedDue := before.Add(14 * 24 * time.Hour)
	assert.WithinDuration(t, expectedDue, *entries[0].DueDate, time.Minute)
}

func TestBorrowCopyAlreadyOnLoan(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	copy := f.addCopy(t)
	john := f.addBorrower(t, "John Doe", "john@x.com")
	jane := f.addBorrower(t, "Jane Doe", "jane@x.com")

	_, err := f.lending.BorrowCopy(ctx, copy.ID, john.ID)
	require.NoError(t, err)

	// Any borrower, including the holder, is refused
	_, err = f.lending.BorrowCopy(ctx, copy.ID, jane.ID)
	assert.ErrorIs(t, err, domain.ErrNotAvailable)
	_, err = f.lending.BorrowCopy(ctx, copy.ID, john.ID)
	assert.ErrorIs(t, err, domain.ErrNotAvailable)

	// The failed attempts left no ledger trace
	entries, err := f.ledger.QueryByCopy(ctx, copy.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBorrowCopyNotFoundChecks(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	copy := f.addCopy(t)
	john := f.addBorrower(t, "John Doe", "john@x.com")

	_, err := f.lending.BorrowCopy(ctx, copy.ID, 99)
	assert.ErrorIs(t, err, domain.ErrBorrowerNotFound)

	_, err = f.lending.BorrowCopy(ctx, 99, john.ID)
	assert.ErrorIs(t, err, domain.ErrCopyNotFound)

	// Failed lookups never touch the ledger
	assert.Equal(t, 0, f.ledger.Len())
}

func TestBorrowAndReturnCycle(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	copy := f.addCopy(t)
	john := f.addBorrower(t, "John Doe", "john@x.com")

	_, err := f.lending.BorrowCopy(ctx, copy.ID, john.ID)
	require.NoError(t, err)

	returned, err := f.lending.Return(ctx, copy.ID)
	require.NoError(t, err)
	assert.True(t, returned.IsAvailable())
	assert.Nil(t, returned.BorrowerID)

	// Ledger holds BORROWED then RETURNED, most recent first
	entries, err := f.ledger.QueryByCopy(ctx, copy.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionReturned, entries[0].Action)
	assert.Nil(t, entries[0].DueDate)
	assert.Equal(t, models.ActionBorrowed, entries[1].Action)
	assert.Equal(t, john.ID, entries[0].BorrowerID)
}

func TestReturnNotOnLoan(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	copy := f.addCopy(t)

	_, err := f.lending.Return(ctx, copy.ID)
	assert.ErrorIs(t, err, domain.ErrNotOnLoan)

	_, err = f.lending.Return(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrCopyNotFound)
}

func TestBorrowByISBNPicksLowestID(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	first := f.addCopy(t)
	second := f.addCopy(t)
	john := f.addBorrower(t, "John Doe", "john@x.com")
	jane := f.addBorrower(t, "Jane Doe", "jane@x.com")

	borrowed, err := f.lending.BorrowByISBN(ctx, "978-0-13-110362-7", john.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, borrowed.ID)

	borrowed, err = f.lending.BorrowByISBN(ctx, "9780131103627", jane.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, borrowed.ID)

	_, err = f.lending.BorrowByISBN(ctx, "9780131103627", john.ID)
	assert.ErrorIs(t, err, domain.ErrNoAvailableCopy)
}

func TestBorrowByISBNValidation(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	john := f.addBorrower(t, "John Doe", "john@x.com")

	_, err := f.lending.BorrowByISBN(ctx, "bad", john.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.lending.BorrowByISBN(ctx, "9780131103627", 99)
	assert.ErrorIs(t, err, domain.ErrBorrowerNotFound)

	// Valid ISBN with no copies registered
	_, err = f.lending.BorrowByISBN(ctx, "9780131103627", john.ID)
	assert.ErrorIs(t, err, domain.ErrNoAvailableCopy)
}

func TestConcurrentBorrowSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()
	copy := f.addCopy(t)

	const workers = 16
	borrowerIDs := make([]uint, workers)
	for i := 0; i < workers; i++ {
		b := f.addBorrower(t, "Borrower Name", string(rune('a'+i))+"@x.com")
		borrowerIDs[i] = b.ID
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	var failures []error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(borrowerID uint) {
			defer wg.Done()
			_, err := f.lending.BorrowCopy(ctx, copy.ID, borrowerID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				failures = append(failures, err)
			}
		}(borrowerIDs[i])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	require.Len(t, failures, workers-1)
	for _, err := range failures {
		assert.ErrorIs(t, err, domain.ErrNotAvailable)
	}

	// Exactly one BORROWED entry made it into the ledger
	entries, err := f.ledger.QueryByCopy(ctx, copy.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConcurrentBorrowByISBNDistinctCopies(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture()

	const copies = 8
	for i := 0; i < copies; i++ {
		f.addCopy(t)
	}
	borrowerIDs := make([]uint, copies)
	for i := 0; i < copies; i++ {
		b := f.addBorrower(t, "Borrower Name", string(rune('a'+i))+"@x.com")
		borrowerIDs[i] = b.ID
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := make(map[uint]int)

	for i := 0; i < copies; i++ {
		wg.Add(1)
		go func(borrowerID uint) {
			defer wg.Done()
			borrowed, err := f.lending.BorrowByISBN(ctx, "9780131103627", borrowerID)
			assert.NoError(t, err)
			if err == nil {
				mu.Lock()
				claimed[borrowed.ID]++
				mu.Unlock()
			}
		}(borrowerIDs[i])
	}
	wg.Wait()

	// Every borrower got a different copy
	assert.Len(t, claimed, copies)
	for id, n := range claimed {
		assert.Equal(t, 1, n, "copy %d double-lent", id)
	}
}
