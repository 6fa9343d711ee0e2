package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Accepts ISBN-10 (9 digits + digit/X) and ISBN-13 (978/979 prefix) after
	// normalization. Hyphens and spaces are tolerated in raw input and stripped
	// by NormalizeISBN before this pattern is applied.
	isbnPattern = regexp.MustCompile(`^(?:[0-9]{9}[0-9X]|97[89][0-9]{10})$`)

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

	namePattern = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
)

// NormalizeISBN strips every character except digits and "X" and uppercases
// the result, so ISBNs compare equal regardless of punctuation.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(isbn) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateISBN checks the raw ISBN and returns its normalized form.
func ValidateISBN(isbn string) (string, error) {
	if strings.TrimSpace(isbn) == "" {
		return "", fmt.Errorf("%w: isbn cannot be empty", ErrInvalidArgument)
	}
	normalized := NormalizeISBN(isbn)
	if !isbnPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: invalid isbn format: %s", ErrInvalidArgument, isbn)
	}
	return normalized, nil
}

// ValidateTitle checks a book title and returns its trimmed form.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", fmt.Errorf("%w: title cannot be empty", ErrInvalidArgument)
	}
	if len(trimmed) > 500 {
		return "", fmt.Errorf("%w: title cannot exceed 500 characters", ErrInvalidArgument)
	}
	return trimmed, nil
}

// ValidateAuthor checks an author name and returns its trimmed form.
func ValidateAuthor(author string) (string, error) {
	trimmed := strings.TrimSpace(author)
	if trimmed == "" {
		return "", fmt.Errorf("%w: author cannot be empty", ErrInvalidArgument)
	}
	if len(trimmed) > 200 {
		return "", fmt.Errorf("%w: author cannot exceed 200 characters", ErrInvalidArgument)
	}
	return trimmed, nil
}

// ValidateBorrowerName checks a borrower name and returns its trimmed form.
// Names are 2-100 characters of letters, spaces, hyphens and apostrophes.
func ValidateBorrowerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return "", fmt.Errorf("%w: name must be at least 2 characters long", ErrInvalidArgument)
	}
	if len(trimmed) > 100 {
		return "", fmt.Errorf("%w: name cannot exceed 100 characters", ErrInvalidArgument)
	}
	if !namePattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: name can only contain letters, spaces, hyphens, and apostrophes", ErrInvalidArgument)
	}
	return trimmed, nil
}

// ValidateEmail checks an email address and returns it trimmed and lowercased.
// Emails are stored and compared in lowercase.
func ValidateEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", fmt.Errorf("%w: email cannot be empty", ErrInvalidArgument)
	}
	if len(normalized) > 150 {
		return "", fmt.Errorf("%w: email cannot exceed 150 characters", ErrInvalidArgument)
	}
	if !emailPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: email format is invalid: %s", ErrInvalidArgument, email)
	}
	return normalized, nil
}
