package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"libtrack/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCatalogStoreSaveAssignsIDs(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()

	first := &models.Copy{ISBN: "9780131103627", Title: "Effective Java", Author: "Joshua Bloch"}
	second := &models.Copy{ISBN: "9780131103627", Title: "Effective Java", Author: "Joshua Bloch"}

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(2), second.ID)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Effective Java", got.Title)
	assert.True(t, got.IsAvailable())
}

func TestCatalogStoreGetMissing(t *testing.T) {
	store := NewCatalogStore()
	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCatalogStoreGetReturnsClone(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	require.NoError(t, store.Save(ctx, &models.Copy{ISBN: "9780131103627", Title: "A", Author: "B"}))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Title)
}

func TestCatalogStoreClaimRelease(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	require.NoError(t, store.Save(ctx, &models.Copy{ISBN: "9780131103627", Title: "A", Author: "B"}))

	now := time.Now()

	claimed, err := store.Claim(ctx, 1, 7, now)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second claim must lose
	claimed, err = store.Claim(ctx, 1, 8, now)
	require.NoError(t, err)
	assert.False(t, claimed)

	// Release by the wrong borrower must lose
	released, err := store.Release(ctx, 1, 8, now)
	require.NoError(t, err)
	assert.False(t, released)

	released, err = store.Release(ctx, 1, 7, now)
	require.NoError(t, err)
	assert.True(t, released)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable())
}

func TestCatalogStoreConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	require.NoError(t, store.Save(ctx, &models.Copy{ISBN: "9780131103627", Title: "A", Author: "B"}))

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(borrowerID uint) {
			defer wg.Done()
			claimed, err := store.Claim(ctx, 1, borrowerID, time.Now())
			assert.NoError(t, err)
			if claimed {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestCatalogStoreFilters(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	require.NoError(t, store.Save(ctx, &models.Copy{ISBN: "9780131103627", Title: "Effective Java", Author: "Joshua Bloch"}))
	require.NoError(t, store.Save(ctx, &models.Copy{ISBN: "9780131103627", Title: "Effective Java", Author: "Joshua Bloch"}))
	require.NoError(t, store.Save(ctx, &models.Copy{ISBN: "9780201633610", Title: "Design Patterns", Author: "Gamma"}))

	claimed, err := store.Claim(ctx, 1, 5, time.Now())
	require.NoError(t, err)
	require.True(t, claimed)

	byISBN, err := store.FindByISBN(ctx, "9780131103627")
	require.NoError(t, err)
	assert.Len(t, byISBN, 2)

	available, err := store.FindAvailableByISBN(ctx, "9780131103627")
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, uint(2), available[0].ID)

	held, err := store.FindByBorrower(ctx, 5)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, uint(1), held[0].ID)

	count, err := store.CountByBorrower(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byTitle, err := store.SearchByTitle(ctx, "effective")
	require.NoError(t, err)
	assert.Len(t, byTitle, 2)

	byAuthor, err := store.SearchByAuthor(ctx, "gamma")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	exists, err := store.ExistsByISBN(ctx, "9780201633610")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsByISBN(ctx, "9999999999999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCatalogStoreListPagination(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, &models.Copy{ISBN: "9780131103627", Title: "A", Author: "B"}))
	}

	page, total, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, uint(3), page[0].ID)
	assert.Equal(t, uint(4), page[1].ID)

	page, total, err = store.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, page)
}

func TestBorrowerStoreEmailLookup(t *testing.T) {
	ctx := context.Background()
	store := NewBorrowerStore()
	require.NoError(t, store.Save(ctx, &models.Borrower{Name: "John Doe", Email: "john@x.com"}))

	got, err := store.FindByEmail(ctx, "john@x.com")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Name)

	_, err = store.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := store.ExistsByEmail(ctx, "john@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBorrowerStoreSearchByName(t *testing.T) {
	ctx := context.Background()
	store := NewBorrowerStore()
	require.NoError(t, store.Save(ctx, &models.Borrower{Name: "John Doe", Email: "john@x.com"}))
	require.NoError(t, store.Save(ctx, &models.Borrower{Name: "Jane Doe", Email: "jane@x.com"}))
	require.NoError(t, store.Save(ctx, &models.Borrower{Name: "Bob Smith", Email: "bob@x.com"}))

	does, err := store.SearchByName(ctx, "doe")
	require.NoError(t, err)
	assert.Len(t, does, 2)
}

func TestLedgerOrdering(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	due := base.Add(14 * 24 * time.Hour)

	// Two entries share an action time; id must break the tie, newest id first
	require.NoError(t, ledger.Append(ctx, &models.LedgerEntry{CopyID: 1, BorrowerID: 1, Action: models.ActionBorrowed, ActionTime: base, DueDate: &due}))
	require.NoError(t, ledger.Append(ctx, &models.LedgerEntry{CopyID: 2, BorrowerID: 1, Action: models.ActionBorrowed, ActionTime: base, DueDate: &due}))
	require.NoError(t, ledger.Append(ctx, &models.LedgerEntry{CopyID: 1, BorrowerID: 1, Action: models.ActionReturned, ActionTime: base.Add(time.Hour)}))

	all, err := ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint(3), all[0].ID)
	assert.Equal(t, uint(2), all[1].ID)
	assert.Equal(t, uint(1), all[2].ID)

	byCopy, err := ledger.QueryByCopy(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byCopy, 2)
	assert.Equal(t, models.ActionReturned, byCopy[0].Action)
	assert.Equal(t, models.ActionBorrowed, byCopy[1].Action)
}

func TestLedgerDateRange(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}

	for d := 1; d <= 5; d++ {
		require.NoError(t, ledger.Append(ctx, &models.LedgerEntry{
			CopyID: uint(d), BorrowerID: 1, Action: models.ActionBorrowed, ActionTime: day(d),
		}))
	}

	// Range bounds are inclusive
	window, err := ledger.QueryByDateRange(ctx, day(2), day(4))
	require.NoError(t, err)
	assert.Len(t, window, 3)

	byCopy, err := ledger.QueryByCopyAndDateRange(ctx, 3, day(2), day(4))
	require.NoError(t, err)
	assert.Len(t, byCopy, 1)

	byBorrower, err := ledger.QueryByBorrowerAndDateRange(ctx, 1, day(5), day(5))
	require.NoError(t, err)
	assert.Len(t, byBorrower, 1)
}

func TestLedgerAppendOnlyGrowth(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	require.NoError(t, ledger.Append(ctx, &models.LedgerEntry{CopyID: 1, BorrowerID: 1, Action: models.ActionBorrowed, ActionTime: time.Now()}))
	assert.Equal(t, 1, ledger.Len())

	// Mutating a queried entry must not reach the stored one
	all, err := ledger.All(ctx)
	require.NoError(t, err)
	all[0].Action = models.ActionReturned

	again, err := ledger.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ActionBorrowed, again[0].Action)
	assert.Equal(t, 1, ledger.Len())
}
