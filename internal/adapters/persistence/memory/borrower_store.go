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

// BorrowerStore is an in-memory BorrowerStore implementation
type BorrowerStore struct {
	mu        sync.RWMutex
	nextID    uint
	borrowers map[uint]*models.Borrower
}

// NewBorrowerStore creates an empty in-memory borrower store
func NewBorrowerStore() *BorrowerStore {
	return &BorrowerStore{
		nextID:    1,
		borrowers: make(map[uint]*models.Borrower),
	}
}

var _ repositories.BorrowerStore = (*BorrowerStore)(nil)

func cloneBorrower(b *models.Borrower) *models.Borrower {
	clone := *b
	return &clone
}

// Save inserts or updates a borrower, assigning an ID on insert
func (s *BorrowerStore) Save(_ context.Context, borrower *models.Borrower) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if borrower.ID == 0 {
		borrower.ID = s.nextID
		s.nextID++
		borrower.CreatedAt = now
	}
	borrower.UpdatedAt = now
	s.borrowers[borrower.ID] = cloneBorrower(borrower)
	return nil
}

// Get gets a borrower by ID
func (s *BorrowerStore) Get(_ context.Context, id uint) (*models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	borrower, ok := s.borrowers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneBorrower(borrower), nil
}

// Delete removes a borrower
func (s *BorrowerStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.borrowers, id)
	return nil
}

func (s *BorrowerStore) filter(match func(*models.Borrower) bool) []*models.Borrower {
	var out []*models.Borrower
	for _, b := range s.borrowers {
		if match(b) {
			out = append(out, cloneBorrower(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// List lists borrowers with pagination, ordered by ID
func (s *BorrowerStore) List(_ context.Context, offset, limit int) ([]*models.Borrower, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.filter(func(*models.Borrower) bool { return true })
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

// FindByEmail gets a borrower by normalized email
func (s *BorrowerStore) FindByEmail(_ context.Context, email string) (*models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.borrowers {
		if b.Email == email {
			return cloneBorrower(b), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ExistsByEmail checks if the normalized email is already registered
func (s *BorrowerStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SearchByName searches borrowers by name substring (case-insensitive)
func (s *BorrowerStore) SearchByName(_ context.Context, pattern string) ([]*models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(pattern)
	return s.filter(func(b *models.Borrower) bool {
		return strings.Contains(strings.ToLower(b.Name), needle)
	}), nil
}
