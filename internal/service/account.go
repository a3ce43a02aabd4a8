package service

import (
	"context"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/shopspring/decimal"
)

type accountRepository interface {
	CreateAccount(ctx context.Context, ownerID int64, iban string) (*domain.Account, error)
	AccountByID(ctx context.Context, id int64) (*domain.Account, error)
	AccountByIBAN(ctx context.Context, iban string) (*domain.Account, error)
	AccountsByOwner(ctx context.Context, ownerID int64) ([]domain.Account, error)
	Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error
	SetAccountActive(ctx context.Context, accountID int64, active bool) (bool, error)
	TotalActiveBalance(ctx context.Context, ownerID int64) (decimal.Decimal, error)
	ApplyTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error
}

type accountUserRepository interface {
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

// AccountService owns the account lifecycle and the balance mutation
// primitives. Credit, Debit and Transfer are the only paths that touch
// a balance.
type AccountService struct {
	accounts accountRepository
	users    accountUserRepository
	ids      *IdentifierGenerator
	now      func() time.Time
}

func NewAccountService(accounts accountRepository, users accountUserRepository, ids *IdentifierGenerator) *AccountService {
	return &AccountService{
		accounts: accounts,
		users:    users,
		ids:      ids,
		now:      time.Now,
	}
}

// Create opens a zero-balance active account for an active, adult,
// identity-verified user.
func (s *AccountService) Create(ctx context.Context, userID int64) (*domain.Account, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !user.IsActive {
		logger.Log.Warn("account creation for inactive user", logger.Int64("user_id", userID))
		return nil, domain.ErrUserNotActive
	}
	if !user.IsAdult(now) {
		logger.Log.Warn("account creation for minor", logger.Int64("user_id", userID))
		return nil, domain.ErrUserNotAdult
	}
	if !user.ValidIdentity(now) {
		logger.Log.Warn("account creation with invalid identity document", logger.Int64("user_id", userID))
		return nil, domain.ErrInvalidIdentity
	}

	iban, err := s.ids.IBAN(ctx)
	if err != nil {
		return nil, err
	}

	return s.accounts.CreateAccount(ctx, userID, iban)
}

func (s *AccountService) ByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.accounts.AccountByID(ctx, accountID)
}

func (s *AccountService) ByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	account, err := s.accounts.AccountByIBAN(ctx, iban)
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AccountService) ByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	return s.accounts.AccountsByOwner(ctx, userID)
}

func (s *AccountService) Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return s.accounts.Credit(ctx, accountID, amount)
}

func (s *AccountService) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return s.accounts.Debit(ctx, accountID, amount)
}

// Transfer applies both ledger legs atomically through the store.
func (s *AccountService) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	return s.accounts.ApplyTransfer(ctx, fromID, toID, amount)
}

func (s *AccountService) Freeze(ctx context.Context, accountID int64) error {
	changed, err := s.accounts.SetAccountActive(ctx, accountID, false)
	if err != nil {
		return err
	}
	if !changed {
		return domain.ErrAccountFrozen
	}

	return nil
}

func (s *AccountService) Unfreeze(ctx context.Context, accountID int64) error {
	changed, err := s.accounts.SetAccountActive(ctx, accountID, true)
	if err != nil {
		return err
	}
	if !changed {
		return domain.ErrAccountActive
	}

	return nil
}

func (s *AccountService) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	account, err := s.accounts.AccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// TotalBalance sums the balances of the user's active accounts; zero
// when the user owns none.
func (s *AccountService) TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !exists {
		return decimal.Zero, domain.ErrUserNotFound
	}

	return s.accounts.TotalActiveBalance(ctx, userID)
}
