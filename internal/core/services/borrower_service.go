package services

import (
	"context"
	"errors"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/adapters/persistence/repositories"
	"libtrack/internal/core/domain"

	"gorm.io/gorm"
)

// BorrowerService handles borrower registry business logic
type BorrowerService struct {
	borrowers repositories.BorrowerStore
	copies    repositories.CatalogStore
}

// NewBorrowerService creates a new borrower service
func NewBorrowerService(borrowers repositories.BorrowerStore, copies repositories.CatalogStore) *BorrowerService {
	return &BorrowerService{borrowers: borrowers, copies: copies}
}

// UpdateBorrowerInput represents a partial borrower update
type UpdateBorrowerInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Register creates a new borrower. Emails are lowercased and unique.
func (s *BorrowerService) Register(ctx context.Context, name, email string) (*models.Borrower, error) {
	trimmedName, err := domain.ValidateBorrowerName(name)
	if err != nil {
		return nil, err
	}
	normalizedEmail, err := domain.ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	exists, err := s.borrowers.ExistsByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	borrower := &models.Borrower{
		Name:  trimmedName,
		Email: normalizedEmail,
	}
	if err := s.borrowers.Save(ctx, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}

// Update edits a borrower's name and/or email. Email uniqueness is re-checked
// only when the email actually changes.
func (s *BorrowerService) Update(ctx context.Context, id uint, input *UpdateBorrowerInput) (*models.Borrower, error) {
	borrower, err := s.borrowers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		trimmedName, err := domain.ValidateBorrowerName(*input.Name)
		if err != nil {
			return nil, err
		}
		borrower.Name = trimmedName
	}

	if input.Email != nil {
		normalizedEmail, err := domain.ValidateEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if normalizedEmail != borrower.Email {
			exists, err := s.borrowers.ExistsByEmail(ctx, normalizedEmail)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateEmail
			}
			borrower.Email = normalizedEmail
		}
	}

	if err := s.borrowers.Save(ctx, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}

// Delete removes a borrower. Borrowers still holding copies cannot be removed;
// the check goes through the copy availability flag, not the ledger.
func (s *BorrowerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.borrowers.Get(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBorrowerNotFound
		}
		return err
	}

	held, err := s.copies.CountByBorrower(ctx, id)
	if err != nil {
		return err
	}
	if held > 0 {
		return domain.ErrHasActiveLoans
	}

	return s.borrowers.Delete(ctx, id)
}

// GetBorrower gets a borrower by ID
func (s *BorrowerService) GetBorrower(ctx context.Context, id uint) (*models.Borrower, error) {
	borrower, err := s.borrowers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}
	return borrower, nil
}

// FindByEmail gets a borrower by email (case-insensitive)
func (s *BorrowerService) FindByEmail(ctx context.Context, email string) (*models.Borrower, error) {
	normalized, err := domain.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	borrower, err := s.borrowers.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}
	return borrower, nil
}

// ListBorrowers lists borrowers with pagination
func (s *BorrowerService) ListBorrowers(ctx context.Context, offset, limit int) ([]*models.Borrower, int64, error) {
	return s.borrowers.List(ctx, offset, limit)
}

// SearchByName searches borrowers by name substring
func (s *BorrowerService) SearchByName(ctx context.Context, pattern string) ([]*models.Borrower, error) {
	return s.borrowers.SearchByName(ctx, pattern)
}
