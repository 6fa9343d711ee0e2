package services

import (
	"context"
	"errors"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/adapters/persistence/repositories"
	"libtrack/internal/core/domain"

	"gorm.io/gorm"
)

// CatalogService handles copy catalog business logic. Every copy sharing a
// normalized ISBN must carry identical title and author; the service enforces
// this at add time and at metadata-update time.
type CatalogService struct {
	copies repositories.CatalogStore
}

// NewCatalogService creates a new catalog service
func NewCatalogService(copies repositories.CatalogStore) *CatalogService {
	return &CatalogService{copies: copies}
}

// UpdateCopyInput represents a partial metadata update
type UpdateCopyInput struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
}

// AddCopy registers one new physical copy. If other copies already carry the
// normalized ISBN their title and author must match exactly.
func (s *CatalogService) AddCopy(ctx context.Context, isbn, title, author string) (*models.Copy, error) {
	normalized, err := domain.ValidateISBN(isbn)
	if err != nil {
		return nil, err
	}
	trimmedTitle, err := domain.ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	trimmedAuthor, err := domain.ValidateAuthor(author)
	if err != nil {
		return nil, err
	}

	existing, err := s.copies.FindByISBN(ctx, normalized)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.Title != trimmedTitle || other.Author != trimmedAuthor {
			return nil, domain.ErrConflictingMetadata
		}
	}

	copy := &models.Copy{
		ISBN:   normalized,
		Title:  trimmedTitle,
		Author: trimmedAuthor,
	}
	if err := s.copies.Save(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

// UpdateCopy edits a copy's title and/or author. Both supplied fields are
// validated and checked against sibling copies before anything is written, so
// a conflict never applies a partial update.
func (s *CatalogService) UpdateCopy(ctx context.Context, id uint, input *UpdateCopyInput) (*models.Copy, error) {
	copy, err := s.copies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCopyNotFound
		}
		return nil, err
	}

	newTitle := copy.Title
	newAuthor := copy.Author
	if input.Title != nil {
		if newTitle, err = domain.ValidateTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Author != nil {
		if newAuthor, err = domain.ValidateAuthor(*input.Author); err != nil {
			return nil, err
		}
	}
	if newTitle == copy.Title && newAuthor == copy.Author {
		return copy, nil
	}

	siblings, err := s.copies.FindByISBN(ctx, copy.ISBN)
	if err != nil {
		return nil, err
	}
	for _, other := range siblings {
		if other.ID == copy.ID {
			continue
		}
		if other.Title != newTitle || other.Author != newAuthor {
			return nil, domain.ErrConflictingMetadata
		}
	}

	copy.Title = newTitle
	copy.Author = newAuthor
	if err := s.copies.Save(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

// RemoveCopy deletes a copy from the catalog. Copies on loan cannot be removed.
func (s *CatalogService) RemoveCopy(ctx context.Context, id uint) error {
	copy, err := s.copies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCopyNotFound
		}
		return err
	}
	if copy.BorrowerID != nil {
		return domain.ErrCopyOnLoan
	}
	return s.copies.Delete(ctx, id)
}

// GetCopy gets a copy by ID
func (s *CatalogService) GetCopy(ctx context.Context, id uint) (*models.Copy, error) {
	copy, err := s.copies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCopyNotFound
		}
		return nil, err
	}
	return copy, nil
}

// ListCopies lists copies with pagination
func (s *CatalogService) ListCopies(ctx context.Context, offset, limit int) ([]*models.Copy, int64, error) {
	return s.copies.List(ctx, offset, limit)
}

// ListAvailable lists all copies currently on the shelf
func (s *CatalogService) ListAvailable(ctx context.Context) ([]*models.Copy, error) {
	return s.copies.ListAvailable(ctx)
}

// ListBorrowed lists all copies currently on loan
func (s *CatalogService) ListBorrowed(ctx context.Context) ([]*models.Copy, error) {
	return s.copies.ListBorrowed(ctx)
}

// FindByISBN lists every copy of the given ISBN
func (s *CatalogService) FindByISBN(ctx context.Context, isbn string) ([]*models.Copy, error) {
	return s.copies.FindByISBN(ctx, domain.NormalizeISBN(isbn))
}

// FindAvailableByISBN lists available copies of the given ISBN
func (s *CatalogService) FindAvailableByISBN(ctx context.Context, isbn string) ([]*models.Copy, error) {
	return s.copies.FindAvailableByISBN(ctx, domain.NormalizeISBN(isbn))
}

// CountByISBN counts every copy of the given ISBN
func (s *CatalogService) CountByISBN(ctx context.Context, isbn string) (int64, error) {
	return s.copies.CountByISBN(ctx, domain.NormalizeISBN(isbn))
}

// CountAvailableByISBN counts available copies of the given ISBN
func (s *CatalogService) CountAvailableByISBN(ctx context.Context, isbn string) (int64, error) {
	return s.copies.CountAvailableByISBN(ctx, domain.NormalizeISBN(isbn))
}

// CopiesByBorrower lists copies currently held by a borrower
func (s *CatalogService) CopiesByBorrower(ctx context.Context, borrowerID uint) ([]*models.Copy, error) {
	return s.copies.FindByBorrower(ctx, borrowerID)
}

// SearchByTitle searches copies by title substring
func (s *CatalogService) SearchByTitle(ctx context.Context, pattern string) ([]*models.Copy, error) {
	return s.copies.SearchByTitle(ctx, pattern)
}

// SearchByAuthor searches copies by author substring
func (s *CatalogService) SearchByAuthor(ctx context.Context, pattern string) ([]*models.Copy, error) {
	return s.copies.SearchByAuthor(ctx, pattern)
}
