package repositories

import (
	"context"
	"time"

	"libtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// copyRepository implements CatalogStore on gorm
type copyRepository struct {
	db *gorm.DB
}

// NewCopyRepository creates a new copy repository
func NewCopyRepository(db *gorm.DB) CatalogStore {
	return &copyRepository{db: db}
}

// Save inserts or updates a copy
func (r *copyRepository) Save(ctx context.Context, copy *models.Copy) error {
	return r.db.WithContext(ctx).Save(copy).Error
}

// Get gets a copy by ID
func (r *copyRepository) Get(ctx context.Context, id uint) (*models.Copy, error) {
	var copy models.Copy
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&copy).Error
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

// Delete removes a copy
func (r *copyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Copy{}, id).Error
}

// List lists copies with pagination
func (r *copyRepository) List(ctx context.Context, offset, limit int) ([]*models.Copy, int64, error) {
	var copies []*models.Copy
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Copy{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&copies).Error; err != nil {
		return nil, 0, err
	}

	return copies, total, nil
}

// ListAvailable lists all copies currently on the shelf
func (r *copyRepository) ListAvailable(ctx context.Context) ([]*models.Copy, error) {
	var copies []*models.Copy
	err := r.db.WithContext(ctx).
		Where("borrower_id IS NULL").
		Order("id ASC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// ListBorrowed lists all copies currently on loan
func (r *copyRepository) ListBorrowed(ctx context.Context) ([]*models.Copy, error) {
	var copies []*models.Copy
	err := r.db.WithContext(ctx).
		Where("borrower_id IS NOT NULL").
		Order("id ASC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// FindByISBN lists all copies with the given normalized ISBN
func (r *copyRepository) FindByISBN(ctx context.Context, isbn string) ([]*models.Copy, error) {
	var copies []*models.Copy
	err := r.db.WithContext(ctx).
		Where("isbn = ?", isbn).
		Order("id ASC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// FindAvailableByISBN lists available copies with the given ISBN, oldest first
func (r *copyRepository) FindAvailableByISBN(ctx context.Context, isbn string) ([]*models.Copy, error) {
	var copies []*models.Copy
	err := r.db.WithContext(ctx).
		Where("isbn = ?", isbn).
		Where("borrower_id IS NULL").
		Order("id ASC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// FindByBorrower lists copies currently held by a borrower
func (r *copyRepository) FindByBorrower(ctx context.Context, borrowerID uint) ([]*models.Copy, error) {
	var copies []*models.Copy
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("id ASC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// SearchByTitle searches copies by title substring (case-insensitive)
func (r *copyRepository) SearchByTitle(ctx context.Context, pattern string) ([]*models.Copy, error) {
	var copies []*models.Copy
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?)", "%"+pattern+"%").
		Order("id ASC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// SearchByAuthor searches copies by author substring (case-insensitive)
func (r *copyRepository) SearchByAuthor(ctx context.Context, pattern string) ([]*models.Copy, error) {
	var copies []*models.Copy
	err := r.db.WithContext(ctx).
		Where("LOWER(author) LIKE LOWER(?)", "%"+pattern+"%").
		Order("id ASC").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// CountByISBN counts copies with the given ISBN
func (r *copyRepository) CountByISBN(ctx context.Context, isbn string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Copy{}).
		Where("isbn = ?", isbn).
		Count(&count).Error
	return count, err
}

// CountAvailableByISBN counts available copies with the given ISBN
func (r *copyRepository) CountAvailableByISBN(ctx context.Context, isbn string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Copy{}).
		Where("isbn = ?", isbn).
		Where("borrower_id IS NULL").
		Count(&count).Error
	return count, err
}

// CountByBorrower counts copies currently held by a borrower
func (r *copyRepository) CountByBorrower(ctx context.Context, borrowerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Copy{}).
		Where("borrower_id = ?", borrowerID).
		Count(&count).Error
	return count, err
}

// ExistsByISBN checks if any copy with the ISBN exists
func (r *copyRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	count, err := r.CountByISBN(ctx, isbn)
	return count > 0, err
}

// Claim atomically assigns the copy to the borrower. The conditional update
// only matches while borrower_id is NULL, so of N concurrent claims exactly
// one observes RowsAffected == 1.
func (r *copyRepository) Claim(ctx context.Context, copyID, borrowerID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Copy{}).
		Where("id = ?", copyID).
		Where("borrower_id IS NULL").
		Updates(map[string]interface{}{
			"borrower_id": borrowerID,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release atomically clears the copy's borrower, matching only if the copy is
// still held by the given borrower.
func (r *copyRepository) Release(ctx context.Context, copyID, borrowerID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Copy{}).
		Where("id = ?", copyID).
		Where("borrower_id = ?", borrowerID).
		Updates(map[string]interface{}{
			"borrower_id": nil,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
