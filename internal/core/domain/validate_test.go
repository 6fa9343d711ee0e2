package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeISBN(t *testing.T) {
	assert.Equal(t, "9780131103627", NormalizeISBN("978-0-13-110362-7"))
	assert.Equal(t, "013468599X", NormalizeISBN("0-13-468599-x"))
	assert.Equal(t, "9780131103627", NormalizeISBN("978 0131 103627"))
	assert.Equal(t, "", NormalizeISBN("---"))
}

func TestValidateISBN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"isbn13 with hyphens", "978-0-13-110362-7", "9780131103627", false},
		{"isbn13 plain", "9780131103627", "9780131103627", false},
		{"isbn13 979 prefix", "9791234567890", "9791234567890", false},
		{"isbn10 with X", "0-13-468599-X", "013468599X", false},
		{"isbn10 lowercase x", "013468599x", "013468599X", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"too short", "12345", "", true},
		{"isbn13 bad prefix", "1234567890123", "", true},
		{"X in wrong position", "01346X5990", "", true},
		{"letters", "not-an-isbn", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateISBN(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateTitle(t *testing.T) {
	got, err := ValidateTitle("  Effective Java  ")
	require.NoError(t, err)
	assert.Equal(t, "Effective Java", got)

	_, err = ValidateTitle("   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ValidateTitle(strings.Repeat("a", 501))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ValidateTitle(strings.Repeat("a", 500))
	assert.NoError(t, err)
}

func TestValidateAuthor(t *testing.T) {
	got, err := ValidateAuthor(" Joshua Bloch ")
	require.NoError(t, err)
	assert.Equal(t, "Joshua Bloch", got)

	_, err = ValidateAuthor("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ValidateAuthor(strings.Repeat("b", 201))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestValidateBorrowerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "John Doe", "John Doe", false},
		{"apostrophe", "O'Brien", "O'Brien", false},
		{"hyphen", "Mary-Jane Watson", "Mary-Jane Watson", false},
		{"trimmed", "  Jane  ", "Jane", false},
		{"too short", "J", "", true},
		{"digits", "John 2", "", true},
		{"symbols", "John@Doe", "", true},
		{"too long", strings.Repeat("a", 101), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateBorrowerName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("  John.Doe@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "john.doe@example.com", got)

	got, err = ValidateEmail("a+b@sub.domain.org")
	require.NoError(t, err)
	assert.Equal(t, "a+b@sub.domain.org", got)

	for _, bad := range []string{"", "no-at-sign", "a@b", "a@b.", "@example.com", "a b@example.com"} {
		_, err := ValidateEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, "input %q", bad)
	}

	_, err = ValidateEmail(strings.Repeat("a", 145) + "@example.com")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
