package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/shopspring/decimal"
)

var testRef = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func adultUser(id int64) domain.User {
	return domain.User{
		ID:          id,
		Email:       "mario.rossi@example.com",
		FirstName:   "Mario",
		LastName:    "Rossi",
		DateOfBirth: time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
		Document: &domain.Document{
			Type:       domain.DocumentPassport,
			Number:     "AA1234567",
			Issuer:     "Questura di Milano",
			ExpiryDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func newAccountService(store *stubStore) *AccountService {
	svc := NewAccountService(store, store, NewIdentifierGenerator(store))
	svc.now = func() time.Time { return testRef }
	return svc
}

func TestAccountCreate(t *testing.T) {
	store := newStubStore()
	store.addUser(adultUser(1))
	svc := newAccountService(store)

	account, err := svc.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !account.Balance.IsZero() {
		t.Errorf("new account balance = %s, want 0", account.Balance)
	}
	if !account.IsActive {
		t.Error("new account is not active")
	}
	if account.OwnerID != 1 {
		t.Errorf("owner = %d, want 1", account.OwnerID)
	}
	if len(account.IBAN) != 27 {
		t.Errorf("IBAN %q has length %d, want 27", account.IBAN, len(account.IBAN))
	}
}

func TestAccountCreateMinor(t *testing.T) {
	store := newStubStore()
	minor := adultUser(1)
	minor.DateOfBirth = testRef.AddDate(-17, 0, 0)
	store.addUser(minor)
	svc := newAccountService(store)

	if _, err := svc.Create(context.Background(), 1); !errors.Is(err, domain.ErrUserNotAdult) {
		t.Errorf("Create for minor: err = %v, want %v", err, domain.ErrUserNotAdult)
	}
}

func TestAccountCreateEighteenthBirthday(t *testing.T) {
	store := newStubStore()
	user := adultUser(1)
	user.DateOfBirth = testRef.AddDate(-domain.AdultAge, 0, 0)
	store.addUser(user)
	svc := newAccountService(store)

	if _, err := svc.Create(context.Background(), 1); err != nil {
		t.Errorf("Create on 18th birthday: %v", err)
	}
}

func TestAccountCreateInactiveUser(t *testing.T) {
	store := newStubStore()
	user := adultUser(1)
	user.IsActive = false
	store.addUser(user)
	svc := newAccountService(store)

	if _, err := svc.Create(context.Background(), 1); !errors.Is(err, domain.ErrUserNotActive) {
		t.Errorf("Create for inactive user: err = %v, want %v", err, domain.ErrUserNotActive)
	}
}

func TestAccountCreateExpiredDocument(t *testing.T) {
	store := newStubStore()
	user := adultUser(1)
	user.Document.ExpiryDate = testRef.AddDate(-1, 0, 0)
	store.addUser(user)
	svc := newAccountService(store)

	if _, err := svc.Create(context.Background(), 1); !errors.Is(err, domain.ErrInvalidIdentity) {
		t.Errorf("Create with expired document: err = %v, want %v", err, domain.ErrInvalidIdentity)
	}
}

func TestAccountCreateUnknownUser(t *testing.T) {
	svc := newAccountService(newStubStore())

	if _, err := svc.Create(context.Background(), 42); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Create for unknown user: err = %v, want %v", err, domain.ErrUserNotFound)
	}
}

func TestAccountFreezeUnfreeze(t *testing.T) {
	store := newStubStore()
	store.addUser(adultUser(1))
	account := store.addAccount(domain.Account{IBAN: "IT00X0547281110000000000001", IsActive: true, OwnerID: 1})
	svc := newAccountService(store)
	ctx := context.Background()

	if err := svc.Freeze(ctx, account.ID); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if err := svc.Freeze(ctx, account.ID); !errors.Is(err, domain.ErrAccountFrozen) {
		t.Errorf("second Freeze: err = %v, want %v", err, domain.ErrAccountFrozen)
	}

	if err := svc.Unfreeze(ctx, account.ID); err != nil {
		t.Fatalf("Unfreeze: %v", err)
	}
	if err := svc.Unfreeze(ctx, account.ID); !errors.Is(err, domain.ErrAccountActive) {
		t.Errorf("second Unfreeze: err = %v, want %v", err, domain.ErrAccountActive)
	}

	got, err := svc.ByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if !got.IsActive {
		t.Error("account is not active after unfreeze")
	}
}

func TestAccountDebitInsufficientFunds(t *testing.T) {
	store := newStubStore()
	account := store.addAccount(domain.Account{
		IsActive: true,
		OwnerID:  1,
		Balance:  decimal.NewFromInt(30),
	})
	svc := newAccountService(store)
	ctx := context.Background()

	err := svc.Debit(ctx, account.ID, decimal.NewFromInt(50))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("Debit: err = %v, want %v", err, domain.ErrInsufficientFunds)
	}

	balance, err := svc.Balance(ctx, account.ID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(30)) {
		t.Errorf("balance after failed debit = %s, want 30", balance)
	}
}

func TestAccountTotalBalance(t *testing.T) {
	store := newStubStore()
	store.addUser(adultUser(1))
	store.addAccount(domain.Account{IsActive: true, OwnerID: 1, Balance: decimal.NewFromInt(100)})
	store.addAccount(domain.Account{IsActive: true, OwnerID: 1, Balance: decimal.NewFromInt(250)})
	store.addAccount(domain.Account{IsActive: false, OwnerID: 1, Balance: decimal.NewFromInt(999)})
	store.addAccount(domain.Account{IsActive: true, OwnerID: 2, Balance: decimal.NewFromInt(777)})
	svc := newAccountService(store)

	total, err := svc.TotalBalance(context.Background(), 1)
	if err != nil {
		t.Fatalf("TotalBalance: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(350)) {
		t.Errorf("total = %s, want 350 (frozen accounts excluded)", total)
	}
}

func TestAccountTotalBalanceNoAccounts(t *testing.T) {
	store := newStubStore()
	store.addUser(adultUser(1))
	svc := newAccountService(store)

	total, err := svc.TotalBalance(context.Background(), 1)
	if err != nil {
		t.Fatalf("TotalBalance: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("total = %s, want 0", total)
	}
}

func TestAccountTotalBalanceUnknownUser(t *testing.T) {
	svc := newAccountService(newStubStore())

	if _, err := svc.TotalBalance(context.Background(), 9); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("TotalBalance: err = %v, want %v", err, domain.ErrUserNotFound)
	}
}

func TestAccountsByUnknownUser(t *testing.T) {
	svc := newAccountService(newStubStore())

	if _, err := svc.ByUser(context.Background(), 9); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("ByUser: err = %v, want %v", err, domain.ErrUserNotFound)
	}
}
