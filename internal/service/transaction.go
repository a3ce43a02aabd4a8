package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transactionRepository interface {
	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id int64, status domain.TransactionStatus) error
	CancelPendingTransaction(ctx context.Context, id int64) error
	TransactionByID(ctx context.Context, id int64) (*domain.Transaction, error)
	TransactionsByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
	TransactionsByAccountPaginated(ctx context.Context, accountID int64, page, size int) ([]domain.Transaction, error)
	TransactionsByUserPaginated(ctx context.Context, userID int64, page, size int) ([]domain.Transaction, error)
	IncomesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error)
	ExpensesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error)
}

// ledger is the slice of AccountService the engine drives.
type ledger interface {
	ByID(ctx context.Context, accountID int64) (*domain.Account, error)
	ByIBAN(ctx context.Context, iban string) (*domain.Account, error)
	Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error
}

type transactionUserRepository interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

var whitespace = regexp.MustCompile(`\s`)

// TransactionService runs the transaction state machine over the
// ledger primitives. A transaction starts PENDING, moves to COMPLETED
// once the ledger effect is applied, to FAILED when the effect errors,
// and to CANCELLED only from PENDING (or from COMPLETED through the
// internal rollback path).
type TransactionService struct {
	transactions transactionRepository
	ledger       ledger
	users        transactionUserRepository
}

func NewTransactionService(transactions transactionRepository, ledger ledger, users transactionUserRepository) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		ledger:       ledger,
		users:        users,
	}
}

// Deposit credits an external amount into an active account.
func (s *TransactionService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	account, err := s.ledger.ByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		logger.Log.Warn("deposit into inactive account", logger.Int64("account_id", accountID))
		return nil, domain.ErrAccountNotActive
	}

	// external source, counterpart is the account itself
	t := &domain.Transaction{
		TransactionID: uuid.NewString(),
		FromAccountID: accountID,
		ToAccountID:   accountID,
		Amount:        amount,
		Description:   description,
		Type:          domain.TypeDeposit,
		Status:        domain.StatusPending,
	}
	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	if err := s.ledger.Credit(ctx, accountID, amount); err != nil {
		s.markFailed(ctx, t)
		return nil, err
	}

	return s.complete(ctx, t)
}

// Withdraw debits an amount to an external destination. Insufficient
// funds is rejected before any transaction is recorded.
func (s *TransactionService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	account, err := s.ledger.ByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		logger.Log.Warn("withdrawal from inactive account", logger.Int64("account_id", accountID))
		return nil, domain.ErrAccountNotActive
	}
	if account.Balance.Cmp(amount) < 0 {
		logger.Log.Warn("insufficient funds for withdrawal", logger.Int64("account_id", accountID))
		return nil, domain.ErrInsufficientFunds
	}

	t := &domain.Transaction{
		TransactionID: uuid.NewString(),
		FromAccountID: accountID,
		ToAccountID:   accountID,
		Amount:        amount,
		Description:   description,
		Type:          domain.TypeWithdrawal,
		Status:        domain.StatusPending,
	}
	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	if err := s.ledger.Debit(ctx, accountID, amount); err != nil {
		s.markFailed(ctx, t)
		return nil, err
	}

	return s.complete(ctx, t)
}

// Transfer moves funds between two accounts resolved by id and IBAN.
// Both ledger legs are applied atomically: either both balances change
// and the transaction completes, or neither is visible and it fails.
func (s *TransactionService) Transfer(ctx context.Context, fromAccountID int64, toIBAN string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	cleanIBAN := whitespace.ReplaceAllString(toIBAN, "")
	toAccount, err := s.ledger.ByIBAN(ctx, cleanIBAN)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrRecipientNotFound
		}
		return nil, err
	}

	fromAccount, err := s.ledger.ByID(ctx, fromAccountID)
	if err != nil {
		return nil, err
	}

	if fromAccount.ID == toAccount.ID {
		logger.Log.Warn("transfer to own account rejected", logger.Int64("account_id", fromAccountID))
		return nil, domain.ErrSameAccountTransfer
	}
	if !fromAccount.IsActive || !toAccount.IsActive {
		logger.Log.Warn("transfer with inactive endpoint",
			logger.Int64("from_account_id", fromAccount.ID),
			logger.Int64("to_account_id", toAccount.ID),
		)
		return nil, domain.ErrAccountNotActive
	}
	if fromAccount.Balance.Cmp(amount) < 0 {
		logger.Log.Warn("insufficient funds for transfer", logger.Int64("account_id", fromAccountID))
		return nil, domain.ErrInsufficientFunds
	}

	t := &domain.Transaction{
		TransactionID: uuid.NewString(),
		FromAccountID: fromAccount.ID,
		ToAccountID:   toAccount.ID,
		Amount:        amount,
		Description:   description,
		Type:          domain.TypeTransfer,
		Status:        domain.StatusPending,
	}
	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	if err := s.ledger.Transfer(ctx, fromAccount.ID, toAccount.ID, amount); err != nil {
		s.markFailed(ctx, t)
		return nil, err
	}

	return s.complete(ctx, t)
}

// Cancel is only legal while the transaction is still PENDING. The
// store applies the status guard and the write in one statement, so a
// cancel racing the completing request cannot overwrite a terminal
// status. No ledger effect is reversed: a pending transaction has not
// altered any balance.
func (s *TransactionService) Cancel(ctx context.Context, transactionID int64) error {
	err := s.transactions.CancelPendingTransaction(ctx, transactionID)
	if errors.Is(err, domain.ErrCannotCancel) {
		logger.Log.Warn("cancel rejected", logger.Int64("transaction_id", transactionID))
	}

	return err
}

// Rollback reverses a COMPLETED transaction's ledger effect, debiting
// the original recipient and crediting the original sender, then marks
// it CANCELLED. It is not exposed over the HTTP surface.
func (s *TransactionService) Rollback(ctx context.Context, transactionID int64) error {
	t, err := s.transactions.TransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if t.Status != domain.StatusCompleted {
		return domain.ErrCannotRollback
	}

	if t.FromAccountID == t.ToAccountID {
		// deposit or withdrawal: a single leg to undo
		switch t.Type {
		case domain.TypeDeposit:
			err = s.ledger.Debit(ctx, t.FromAccountID, t.Amount)
		default:
			err = s.ledger.Credit(ctx, t.FromAccountID, t.Amount)
		}
	} else {
		err = s.ledger.Transfer(ctx, t.ToAccountID, t.FromAccountID, t.Amount)
	}
	if err != nil {
		return err
	}

	return s.transactions.UpdateTransactionStatus(ctx, t.ID, domain.StatusCancelled)
}

func (s *TransactionService) ByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	return s.transactions.TransactionByID(ctx, transactionID)
}

func (s *TransactionService) ByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	return s.transactions.TransactionsByAccount(ctx, accountID)
}

func (s *TransactionService) ByAccountPaginated(ctx context.Context, accountID int64, page, size int) ([]domain.Transaction, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	return s.transactions.TransactionsByAccountPaginated(ctx, accountID, page, size)
}

func (s *TransactionService) ByUserPaginated(ctx context.Context, userID int64, page, size int) ([]domain.Transaction, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.transactions.TransactionsByUserPaginated(ctx, userID, page, size)
}

func (s *TransactionService) RecentByAccount(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	return s.transactions.TransactionsByAccountPaginated(ctx, accountID, 0, limit)
}

func (s *TransactionService) RecentByUser(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.transactions.TransactionsByUserPaginated(ctx, userID, 0, limit)
}

func (s *TransactionService) IncomesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	return s.transactions.IncomesSince(ctx, userID, since)
}

func (s *TransactionService) ExpensesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	return s.transactions.ExpensesSince(ctx, userID, since)
}

func (s *TransactionService) requireAccount(ctx context.Context, accountID int64) error {
	_, err := s.ledger.ByID(ctx, accountID)
	return err
}

func (s *TransactionService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	return nil
}

func (s *TransactionService) complete(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	if err := s.transactions.UpdateTransactionStatus(ctx, t.ID, domain.StatusCompleted); err != nil {
		return nil, err
	}
	t.Status = domain.StatusCompleted

	return t, nil
}

func (s *TransactionService) markFailed(ctx context.Context, t *domain.Transaction) {
	if err := s.transactions.UpdateTransactionStatus(ctx, t.ID, domain.StatusFailed); err != nil {
		logger.Log.Error("error marking transaction failed",
			logger.Int64("transaction_id", t.ID),
			logger.Error(err),
		)
		return
	}
	t.Status = domain.StatusFailed
}
