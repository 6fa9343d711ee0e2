package repositories

import (
	"context"

	"libtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// borrowerRepository implements BorrowerStore on gorm
type borrowerRepository struct {
	db *gorm.DB
}

// NewBorrowerRepository creates a new borrower repository
func NewBorrowerRepository(db *gorm.DB) BorrowerStore {
	return &borrowerRepository{db: db}
}

// Save inserts or updates a borrower
func (r *borrowerRepository) Save(ctx context.Context, borrower *models.Borrower) error {
	return r.db.WithContext(ctx).Save(borrower).Error
}

// Get gets a borrower by ID
func (r *borrowerRepository) Get(ctx context.Context, id uint) (*models.Borrower, error) {
	var borrower models.Borrower
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&borrower).Error
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

// Delete removes a borrower
func (r *borrowerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Borrower{}, id).Error
}

// List lists borrowers with pagination
func (r *borrowerRepository) List(ctx context.Context, offset, limit int) ([]*models.Borrower, int64, error) {
	var borrowers []*models.Borrower
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Borrower{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&borrowers).Error; err != nil {
		return nil, 0, err
	}

	return borrowers, total, nil
}

// FindByEmail gets a borrower by normalized email
func (r *borrowerRepository) FindByEmail(ctx context.Context, email string) (*models.Borrower, error) {
	var borrower models.Borrower
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&borrower).Error
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

// ExistsByEmail checks if the normalized email is already registered
func (r *borrowerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Borrower{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// SearchByName searches borrowers by name substring (case-insensitive)
func (r *borrowerRepository) SearchByName(ctx context.Context, pattern string) ([]*models.Borrower, error) {
	var borrowers []*models.Borrower
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+pattern+"%").
		Order("id ASC").
		Find(&borrowers).Error
	if err != nil {
		return nil, err
	}
	return borrowers, nil
}
