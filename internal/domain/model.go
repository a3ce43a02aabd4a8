package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	DocumentIDCard         DocumentType = "ID_CARD"
	DocumentPassport       DocumentType = "PASSPORT"
	DocumentDrivingLicence DocumentType = "DRIVING_LICENCE"
)

type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
	TypePayment    TransactionType = "PAYMENT"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

const AdultAge = 18

type User struct {
	ID          int64
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	PhoneNumber string
	IsActive    bool
	Document    *Document
	Address     *Address
	CreatedAt   time.Time
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Age is computed against an explicit reference date so callers and
// tests are not tied to the system clock.
func (u User) Age(ref time.Time) int {
	years := ref.Year() - u.DateOfBirth.Year()
	if u.DateOfBirth.AddDate(years, 0, 0).After(ref) {
		years--
	}
	return years
}

func (u User) IsAdult(ref time.Time) bool {
	return u.Age(ref) >= AdultAge
}

// ValidIdentity reports whether the user holds a non-expired identity
// document at the reference date.
func (u User) ValidIdentity(ref time.Time) bool {
	return u.Document != nil && !u.Document.Expired(ref)
}

type Document struct {
	ID         int64
	Type       DocumentType
	Number     string
	Issuer     string
	ExpiryDate time.Time
}

func (d Document) Expired(ref time.Time) bool {
	return ref.After(d.ExpiryDate)
}

type Address struct {
	ID         int64
	Street     string
	City       string
	PostalCode string
	Country    string
}

type Account struct {
	ID       int64
	IBAN     string
	Balance  decimal.Decimal
	IsActive bool
	OwnerID  int64
	OpenedAt time.Time
}

type Card struct {
	ID         int64
	Number     string
	CVV        string
	ExpiryDate time.Time
	IsActive   bool
	AccountID  int64
	OwnerID    int64
}

func (c Card) Expired(ref time.Time) bool {
	return ref.After(c.ExpiryDate)
}

func (c Card) Masked() string {
	if len(c.Number) >= 4 {
		return "**** **** **** " + c.Number[len(c.Number)-4:]
	}
	return "****"
}

// Transaction is an immutable record of a money movement. From and To
// reference the same account for deposits and withdrawals, where the
// counterpart is external.
type Transaction struct {
	ID            int64
	TransactionID string
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Description   string
	Type          TransactionType
	Status        TransactionStatus
	CreatedAt     time.Time
}
