package domain

import "errors"

// Common domain errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInternalServer  = errors.New("internal server error")
)

// Catalog errors
var (
	ErrCopyNotFound        = errors.New("copy not found")
	ErrConflictingMetadata = errors.New("isbn already registered with different title/author")
	ErrCopyOnLoan          = errors.New("copy is currently on loan")
)

// Borrower errors
var (
	ErrBorrowerNotFound = errors.New("borrower not found")
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrHasActiveLoans   = errors.New("borrower still holds borrowed copies")
)

// Lending errors
var (
	ErrNotAvailable    = errors.New("copy is not available for borrowing")
	ErrNoAvailableCopy = errors.New("no available copy for isbn")
	ErrNotOnLoan       = errors.New("copy is not currently on loan")
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)
