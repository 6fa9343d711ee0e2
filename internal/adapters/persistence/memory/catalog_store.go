// Package memory provides mutex-guarded in-memory implementations of the
// persistence store interfaces. They back unit tests and the dev fallback
// mode, and honor the same contracts as the gorm repositories, including
// the compare-and-swap availability transitions on copies.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// CatalogStore is an in-memory CatalogStore implementation
type CatalogStore struct {
	mu     sync.RWMutex
	nextID uint
	copies map[uint]*models.Copy
}

// NewCatalogStore creates an empty in-memory catalog store
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		nextID: 1,
		copies: make(map[uint]*models.Copy),
	}
}

var _ repositories.CatalogStore = (*CatalogStore)(nil)

func cloneCopy(c *models.Copy) *models.Copy {
	clone := *c
	if c.BorrowerID != nil {
		id := *c.BorrowerID
		clone.BorrowerID = &id
	}
	return &clone
}

// Save inserts or updates a copy, assigning an ID on insert
func (s *CatalogStore) Save(_ context.Context, copy *models.Copy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if copy.ID == 0 {
		copy.ID = s.nextID
		s.nextID++
		copy.CreatedAt = now
	}
	copy.UpdatedAt = now
	s.copies[copy.ID] = cloneCopy(copy)
	return nil
}

// Get gets a copy by ID
func (s *CatalogStore) Get(_ context.Context, id uint) (*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copy, ok := s.copies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneCopy(copy), nil
}

// Delete removes a copy
func (s *CatalogStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.copies, id)
	return nil
}

func (s *CatalogStore) filter(match func(*models.Copy) bool) []*models.Copy {
	var out []*models.Copy
	for _, c := range s.copies {
		if match(c) {
			out = append(out, cloneCopy(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// List lists copies with pagination, ordered by ID
func (s *CatalogStore) List(_ context.Context, offset, limit int) ([]*models.Copy, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.filter(func(*models.Copy) bool { return true })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ListAvailable lists all copies currently on the shelf
func (s *CatalogStore) ListAvailable(_ context.Context) ([]*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *models.Copy) bool { return c.BorrowerID == nil }), nil
}

// ListBorrowed lists all copies currently on loan
func (s *CatalogStore) ListBorrowed(_ context.Context) ([]*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *models.Copy) bool { return c.BorrowerID != nil }), nil
}

// FindByISBN lists all copies with the given normalized ISBN
func (s *CatalogStore) FindByISBN(_ context.Context, isbn string) ([]*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *models.Copy) bool { return c.ISBN == isbn }), nil
}

// FindAvailableByISBN lists available copies with the given ISBN, oldest first
func (s *CatalogStore) FindAvailableByISBN(_ context.Context, isbn string) ([]*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *models.Copy) bool { return c.ISBN == isbn && c.BorrowerID == nil }), nil
}

// FindByBorrower lists copies currently held by a borrower
func (s *CatalogStore) FindByBorrower(_ context.Context, borrowerID uint) ([]*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *models.Copy) bool {
		return c.BorrowerID != nil && *c.BorrowerID == borrowerID
	}), nil
}

// SearchByTitle searches copies by title substring (case-insensitive)
func (s *CatalogStore) SearchByTitle(_ context.Context, pattern string) ([]*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(pattern)
	return s.filter(func(c *models.Copy) bool {
		return strings.Contains(strings.ToLower(c.Title), needle)
	}), nil
}

// SearchByAuthor searches copies by author substring (case-insensitive)
func (s *CatalogStore) SearchByAuthor(_ context.Context, pattern string) ([]*models.Copy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(pattern)
	return s.filter(func(c *models.Copy) bool {
		return strings.Contains(strings.ToLower(c.Author), needle)
	}), nil
}

// CountByISBN counts copies with the given ISBN
func (s *CatalogStore) CountByISBN(ctx context.Context, isbn string) (int64, error) {
	copies, err := s.FindByISBN(ctx, isbn)
	return int64(len(copies)), err
}

// CountAvailableByISBN counts available copies with the given ISBN
func (s *CatalogStore) CountAvailableByISBN(ctx context.Context, isbn string) (int64, error) {
	copies, err := s.FindAvailableByISBN(ctx, isbn)
	return int64(len(copies)), err
}

// CountByBorrower counts copies currently held by a borrower
func (s *CatalogStore) CountByBorrower(ctx context.Context, borrowerID uint) (int64, error) {
	copies, err := s.FindByBorrower(ctx, borrowerID)
	return int64(len(copies)), err
}

// ExistsByISBN checks if any copy with the ISBN exists
func (s *CatalogStore) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	count, err := s.CountByISBN(ctx, isbn)
	return count > 0, err
}

// Claim atomically assigns the copy to the borrower if it is available
func (s *CatalogStore) Claim(_ context.Context, copyID, borrowerID uint, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy, ok := s.copies[copyID]
	if !ok || copy.BorrowerID != nil {
		return false, nil
	}
	id := borrowerID
	copy.BorrowerID = &id
	copy.UpdatedAt = at
	return true, nil
}

// Release atomically clears the copy's borrower if still held by that borrower
func (s *CatalogStore) Release(_ context.Context, copyID, borrowerID uint, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy, ok := s.copies[copyID]
	if !ok || copy.BorrowerID == nil || *copy.BorrowerID != borrowerID {
		return false, nil
	}
	copy.BorrowerID = nil
	copy.UpdatedAt = at
	return true, nil
}
