package repositories

import (
	"context"
	"time"

	"libtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ledgerRepository implements Ledger on gorm.
// The ledger is append-only: this type deliberately exposes no update or
// delete path for existing entries.
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) Ledger {
	return &ledgerRepository{db: db}
}

// Append appends one entry to the ledger
func (r *ledgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// QueryByCopy lists all entries for a copy, most recent first
func (r *ledgerRepository) QueryByCopy(ctx context.Context, copyID uint) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("copy_id = ?", copyID).
		Order("action_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// QueryByBorrower lists all entries for a borrower, most recent first
func (r *ledgerRepository) QueryByBorrower(ctx context.Context, borrowerID uint) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("action_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// QueryByDateRange lists all entries whose action time falls in [from, to]
func (r *ledgerRepository) QueryByDateRange(ctx context.Context, from, to time.Time) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("action_time BETWEEN ? AND ?", from, to).
		Order("action_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// QueryByCopyAndDateRange lists a copy's entries within [from, to]
func (r *ledgerRepository) QueryByCopyAndDateRange(ctx context.Context, copyID uint, from, to time.Time) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("copy_id = ?", copyID).
		Where("action_time BETWEEN ? AND ?", from, to).
		Order("action_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// QueryByBorrowerAndDateRange lists a borrower's entries within [from, to]
func (r *ledgerRepository) QueryByBorrowerAndDateRange(ctx context.Context, borrowerID uint, from, to time.Time) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Where("action_time BETWEEN ? AND ?", from, to).
		Order("action_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// All lists the entire ledger, most recent first
func (r *ledgerRepository) All(ctx context.Context) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Order("action_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
