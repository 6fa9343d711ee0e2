package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents a staff account (librarian) in the users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'STAFF'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog & Borrower Tables
// ============================================================

// Copy represents one physical copy of a book in the copies table.
// BorrowerID is nil iff the copy sits on the shelf; every copy sharing an ISBN
// must carry identical title and author.
type Copy struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ISBN       string    `gorm:"size:13;not null;index" json:"isbn"`
	Title      string    `gorm:"size:500;not null" json:"title"`
	Author     string    `gorm:"size:200;not null" json:"author"`
	BorrowerID *uint     `gorm:"index" json:"borrower_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Borrower *Borrower `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
}

func (Copy) TableName() string {
	return "copies"
}

// IsAvailable reports whether the copy can be borrowed.
func (c *Copy) IsAvailable() bool {
	return c.BorrowerID == nil
}

// CopyResponse DTO
type CopyResponse struct {
	ID           uint      `json:"id"`
	ISBN         string    `json:"isbn"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Available    bool      `json:"available"`
	BorrowerID   *uint     `json:"borrower_id,omitempty"`
	BorrowerName string    `json:"borrower_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Copy) ToResponse() *CopyResponse {
	resp := &CopyResponse{
		ID:         c.ID,
		ISBN:       c.ISBN,
		Title:      c.Title,
		Author:     c.Author,
		Available:  c.BorrowerID == nil,
		BorrowerID: c.BorrowerID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Borrower != nil {
		resp.BorrowerName = c.Borrower.Name
	}
	return resp
}

// Borrower represents a registered borrower in the borrowers table
type Borrower struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:150;not null" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Borrower) TableName() string {
	return "borrowers"
}

// BorrowerResponse DTO
type BorrowerResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Borrower) ToResponse() *BorrowerResponse {
	return &BorrowerResponse{
		ID:        b.ID,
		Name:      b.Name,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ============================================================
// Lending Ledger
// ============================================================

// Ledger actions
const (
	ActionBorrowed = "BORROWED"
	ActionReturned = "RETURNED"
)

// LedgerEntry is one immutable fact in the ledger_entries audit log: at
// ActionTime the borrower performed Action on the copy. Entries are only ever
// appended, never updated or deleted; DueDate is set for BORROWED entries only.
type LedgerEntry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CopyID     uint       `gorm:"not null;index" json:"copy_id"`
	BorrowerID uint       `gorm:"not null;index" json:"borrower_id"`
	Action     string     `gorm:"size:20;not null" json:"action"`
	ActionTime time.Time  `gorm:"not null;index" json:"action_time"`
	DueDate    *time.Time `json:"due_date"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// LedgerEntryResponse DTO
type LedgerEntryResponse struct {
	ID           uint       `json:"id"`
	CopyID       uint       `json:"copy_id"`
	BorrowerID   uint       `json:"borrower_id"`
	Action       string     `json:"action"`
	ActionTime   time.Time  `json:"action_time"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Overdue      bool       `json:"overdue"`
	DaysUntilDue int        `json:"days_until_due"`
}

// ToResponse projects the entry together with overdue info computed against now.
func (e *LedgerEntry) ToResponse(overdue bool, daysUntilDue int) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:           e.ID,
		CopyID:       e.CopyID,
		BorrowerID:   e.BorrowerID,
		Action:       e.Action,
		ActionTime:   e.ActionTime,
		DueDate:      e.DueDate,
		Overdue:      overdue,
		DaysUntilDue: daysUntilDue,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates the schema for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Borrower{},
		&Copy{},
		&LedgerEntry{},
	)
}
