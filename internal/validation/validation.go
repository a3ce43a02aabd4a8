// Package validation holds the stateless input checks shared by the
// HTTP handlers. Every violation is reported as a domain.ErrValidation
// with a message the client can act on.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	MaxPage           = 1_000_000
	MaxPageSize       = 100
	MaxLimit          = 100
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MaxEmailLength    = 100
	maxDateAgeYears   = 50
)

var (
	emailRe      = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	ibanRe       = regexp.MustCompile(`^IT\d{2}[A-Z]\d{5}\d{5}\d{12}$`)
	cardNumberRe = regexp.MustCompile(`^\d{15,16}$`)
	whitespaceRe = regexp.MustCompile(`\s`)
)

// Errorf builds an ad-hoc validation error for checks that live at the
// boundary, like request-body parse failures.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func errf(format string, args ...any) error {
	return Errorf(format, args...)
}

func RequiredField(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errf("%s is required", fieldName)
	}
	return nil
}

func ID(id int64, resource string) error {
	if id <= 0 {
		return errf("invalid %s id", resource)
	}
	return nil
}

func Amount(amount decimal.Decimal) error {
	if amount.Cmp(decimal.Zero) <= 0 {
		return errf("amount must be positive")
	}
	return nil
}

// Date rejects dates in the future or more than fifty years before the
// reference date.
func Date(date, ref time.Time) error {
	if date.IsZero() {
		return errf("date is required")
	}
	if date.After(ref) {
		return errf("date cannot be in the future")
	}
	if date.Before(ref.AddDate(-maxDateAgeYears, 0, 0)) {
		return errf("date is too far in the past")
	}
	return nil
}

func Limit(limit int) error {
	if limit <= 0 {
		return errf("limit must be > 0")
	}
	if limit > MaxLimit {
		return errf("limit must be <= %d", MaxLimit)
	}
	return nil
}

// Pagination bounds both dimensions; the page cap keeps the resulting
// page*size offset inside integer range.
func Pagination(page, size int) error {
	if page < 0 {
		return errf("page must be >= 0")
	}
	if page > MaxPage {
		return errf("page must be <= %d", MaxPage)
	}
	if size <= 0 {
		return errf("page size must be > 0")
	}
	if size > MaxPageSize {
		return errf("page size must be <= %d", MaxPageSize)
	}
	return nil
}

func Email(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return errf("email is required")
	}
	if !emailRe.MatchString(trimmed) {
		return errf("invalid email format")
	}
	if len(email) > MaxEmailLength {
		return errf("email too long (max %d characters)", MaxEmailLength)
	}
	return nil
}

func Password(password string) error {
	if password == "" {
		return errf("password is required")
	}
	if len(password) < MinPasswordLength {
		return errf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return errf("password too long (max %d characters)", MaxPasswordLength)
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return errf("password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return errf("password must contain at least one digit")
	}
	return nil
}

// IBAN validates the Italian 27-character format. Whitespace is
// stripped before matching.
func IBAN(iban string) error {
	if strings.TrimSpace(iban) == "" {
		return errf("iban is required")
	}
	clean := whitespaceRe.ReplaceAllString(iban, "")
	if !ibanRe.MatchString(clean) {
		return errf("invalid italian iban format")
	}
	return nil
}

// CardNumber accepts 15 or 16 digits after whitespace removal. Masked
// values containing '*' are exempt.
func CardNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return errf("card number is required")
	}
	if strings.Contains(number, "*") {
		return nil
	}
	clean := whitespaceRe.ReplaceAllString(number, "")
	if !cardNumberRe.MatchString(clean) {
		return errf("invalid card number")
	}
	return nil
}
