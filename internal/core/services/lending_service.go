package services

import (
	"context"
	"errors"
	"log"
	"time"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/adapters/persistence/repositories"
	"libtrack/internal/core/domain"

	"gorm.io/gorm"
)

// DefaultLoanPeriodDays is the loan period applied when none is configured
const DefaultLoanPeriodDays = 14

// LendingService is the sole writer of copy availability and ledger entries.
// Borrow and return are serialized per copy through the store's compare-and-swap
// transitions: two concurrent borrows of one copy cannot both claim it. The
// ledger append happens after a successful claim; if the append fails the claim
// is rolled back so the availability flag and the ledger never drift apart.
type LendingService struct {
	copies     repositories.CatalogStore
	borrowers  repositories.BorrowerStore
	ledger     repositories.Ledger
	loanPeriod time.Duration
}

// NewLendingService creates a new lending service
func NewLendingService(
	copies repositories.CatalogStore,
	borrowers repositories.BorrowerStore,
	ledger repositories.Ledger,
	loanPeriodDays int,
) *LendingService {
	if loanPeriodDays < 1 {
		loanPeriodDays = DefaultLoanPeriodDays
	}
	return &LendingService{
		copies:     copies,
		borrowers:  borrowers,
		ledger:     ledger,
		loanPeriod: time.Duration(loanPeriodDays) * 24 * time.Hour,
	}
}

// BorrowCopy lends a specific copy to a borrower
func (s *LendingService) BorrowCopy(ctx context.Context, copyID, borrowerID uint) (*models.Copy, error) {
	if _, err := s.borrowers.Get(ctx, borrowerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}

	copy, err := s.copies.Get(ctx, copyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCopyNotFound
		}
		return nil, err
	}
	if copy.BorrowerID != nil {
		return nil, domain.ErrNotAvailable
	}

	return s.claimAndRecord(ctx, copy, borrowerID, domain.ErrNotAvailable)
}

// BorrowByISBN lends the oldest available copy of the given ISBN. Candidates
// are tried lowest id first, so the winner is deterministic when uncontended.
func (s *LendingService) BorrowByISBN(ctx context.Context, isbn string, borrowerID uint) (*models.Copy, error) {
	normalized, err := domain.ValidateISBN(isbn)
	if err != nil {
		return nil, err
	}

	if _, err := s.borrowers.Get(ctx, borrowerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}

	candidates, err := s.copies.FindAvailableByISBN(ctx, normalized)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		borrowed, err := s.claimAndRecord(ctx, candidate, borrowerID, nil)
		if err == nil {
			return borrowed, nil
		}
		// Lost the race on this candidate, try the next one
		if errors.Is(err, errClaimLost) {
			continue
		}
		return nil, err
	}
	return nil, domain.ErrNoAvailableCopy
}

// Return accepts a copy back and records the return against the borrower who
// held it.
func (s *LendingService) Return(ctx context.Context, copyID uint) (*models.Copy, error) {
	copy, err := s.copies.Get(ctx, copyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCopyNotFound
		}
		return nil, err
	}
	if copy.BorrowerID == nil {
		return nil, domain.ErrNotOnLoan
	}
	borrowerID := *copy.BorrowerID

	now := time.Now()
	released, err := s.copies.Release(ctx, copyID, borrowerID, now)
	if err != nil {
		return nil, err
	}
	if !released {
		// A concurrent return got there first
		return nil, domain.ErrNotOnLoan
	}

	entry := &models.LedgerEntry{
		CopyID:     copyID,
		BorrowerID: borrowerID,
		Action:     models.ActionReturned,
		ActionTime: now,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		// Undo the release so copy state and ledger stay in step
		if _, rbErr := s.copies.Claim(ctx, copyID, borrowerID, now); rbErr != nil {
			log.Printf("⚠️ Failed to roll back release of copy %d: %v", copyID, rbErr)
		}
		return nil, err
	}

	copy.BorrowerID = nil
	copy.Borrower = nil
	copy.UpdatedAt = now
	return copy, nil
}

// errClaimLost signals that another borrower claimed the candidate first
var errClaimLost = errors.New("claim lost")

// claimAndRecord performs the claim-then-append transition for one candidate
// copy. lostErr is returned when the claim fails; nil maps the loss to
// errClaimLost so BorrowByISBN can move on to the next candidate.
func (s *LendingService) claimAndRecord(ctx context.Context, copy *models.Copy, borrowerID uint, lostErr error) (*models.Copy, error) {
	now := time.Now()
	claimed, err := s.copies.Claim(ctx, copy.ID, borrowerID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		if lostErr != nil {
			return nil, lostErr
		}
		return nil, errClaimLost
	}

	due := now.Add(s.loanPeriod)
	entry := &models.LedgerEntry{
		CopyID:     copy.ID,
		BorrowerID: borrowerID,
		Action:     models.ActionBorrowed,
		ActionTime: now,
		DueDate:    &due,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		// Undo the claim so copy state and ledger stay in step
		if _, rbErr := s.copies.Release(ctx, copy.ID, borrowerID, now); rbErr != nil {
			log.Printf("⚠️ Failed to roll back claim of copy %d: %v", copy.ID, rbErr)
		}
		return nil, err
	}

	copy.BorrowerID = &borrowerID
	copy.UpdatedAt = now
	return copy, nil
}
