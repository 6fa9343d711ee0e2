package repositories

import (
	"context"
	"time"

	"libtrack/internal/adapters/persistence/models"
)

// CatalogStore defines the copy store interface.
// Claim and Release are compare-and-swap transitions on the borrower column;
// they succeed exactly once per transition, which serializes concurrent
// borrow/return attempts against the same copy.
type CatalogStore interface {
	Save(ctx context.Context, copy *models.Copy) error
	Get(ctx context.Context, id uint) (*models.Copy, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Copy, int64, error)
	ListAvailable(ctx context.Context) ([]*models.Copy, error)
	ListBorrowed(ctx context.Context) ([]*models.Copy, error)
	FindByISBN(ctx context.Context, isbn string) ([]*models.Copy, error)
	FindAvailableByISBN(ctx context.Context, isbn string) ([]*models.Copy, error)
	FindByBorrower(ctx context.Context, borrowerID uint) ([]*models.Copy, error)
	SearchByTitle(ctx context.Context, pattern string) ([]*models.Copy, error)
	SearchByAuthor(ctx context.Context, pattern string) ([]*models.Copy, error)
	CountByISBN(ctx context.Context, isbn string) (int64, error)
	CountAvailableByISBN(ctx context.Context, isbn string) (int64, error)
	CountByBorrower(ctx context.Context, borrowerID uint) (int64, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	Claim(ctx context.Context, copyID, borrowerID uint, at time.Time) (bool, error)
	Release(ctx context.Context, copyID, borrowerID uint, at time.Time) (bool, error)
}

// BorrowerStore defines the borrower store interface
type BorrowerStore interface {
	Save(ctx context.Context, borrower *models.Borrower) error
	Get(ctx context.Context, id uint) (*models.Borrower, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Borrower, int64, error)
	FindByEmail(ctx context.Context, email string) (*models.Borrower, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SearchByName(ctx context.Context, pattern string) ([]*models.Borrower, error)
}

// Ledger defines the append-only lending ledger interface. Entries are never
// updated or deleted; every query method returns entries ordered by action
// time descending, then id descending.
type Ledger interface {
	Append(ctx context.Context, entry *models.LedgerEntry) error
	QueryByCopy(ctx context.Context, copyID uint) ([]*models.LedgerEntry, error)
	QueryByBorrower(ctx context.Context, borrowerID uint) ([]*models.LedgerEntry, error)
	QueryByDateRange(ctx context.Context, from, to time.Time) ([]*models.LedgerEntry, error)
	QueryByCopyAndDateRange(ctx context.Context, copyID uint, from, to time.Time) ([]*models.LedgerEntry, error)
	QueryByBorrowerAndDateRange(ctx context.Context, borrowerID uint, from, to time.Time) ([]*models.LedgerEntry, error)
	All(ctx context.Context) ([]*models.LedgerEntry, error)
}

// UserRepository defines the staff user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines the refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
