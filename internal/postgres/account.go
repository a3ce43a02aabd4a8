package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/shopspring/decimal"
)

func (p *Postgres) CreateAccount(ctx context.Context, ownerID int64, iban string) (*domain.Account, error) {
	account := domain.Account{
		IBAN:    iban,
		OwnerID: ownerID,
	}

	err := p.DB.QueryRowContext(ctx,
		"INSERT INTO accounts (iban, owner_id) VALUES ($1, $2) RETURNING id, balance, is_active, opened_at",
		iban, ownerID,
	).Scan(&account.ID, &account.Balance, &account.IsActive, &account.OpenedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return &account, nil
}

const accountColumns = "id, iban, balance, is_active, owner_id, opened_at"

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(&account.ID, &account.IBAN, &account.Balance, &account.IsActive, &account.OwnerID, &account.OpenedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error fetching account: %w", err)
	}

	return &account, nil
}

func (p *Postgres) AccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row)
}

func (p *Postgres) AccountByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE iban = $1", iban)
	return scanAccount(row)
}

func (p *Postgres) AccountsByOwner(ctx context.Context, ownerID int64) ([]domain.Account, error) {
	rows, err := p.DB.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE owner_id = $1 ORDER BY opened_at", ownerID)
	if err != nil {
		return nil, fmt.Errorf("error fetching accounts: %w", err)
	}
	defer closeRows(rows)

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		err := rows.Scan(&account.ID, &account.IBAN, &account.Balance, &account.IsActive, &account.OwnerID, &account.OpenedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

func (p *Postgres) IBANExists(ctx context.Context, iban string) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE iban = $1)", iban).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking iban existence: %w", err)
	}

	return exists, nil
}

func (p *Postgres) Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	result, err := p.DB.ExecContext(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE id = $2", amount, accountID)
	if err != nil {
		return fmt.Errorf("error crediting account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for credit: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Debit applies the amount only when the resulting balance stays
// non-negative. The conditional update is the per-account mutual
// exclusion: concurrent debits serialize on the row.
func (p *Postgres) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	result, err := p.DB.ExecContext(ctx,
		"UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1", amount, accountID)
	if err != nil {
		return fmt.Errorf("error debiting account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for debit: %w", err)
	}
	if rowsAffected == 0 {
		exists, err := p.AccountExists(ctx, accountID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrAccountNotFound
		}
		logger.Log.Warn("insufficient funds for debit", logger.Int64("account_id", accountID))
		return domain.ErrInsufficientFunds
	}

	return nil
}

// SetActive flips the active flag and reports whether a row changed.
// rowsAffected 0 with an existing account means it was already in the
// target state.
func (p *Postgres) SetAccountActive(ctx context.Context, accountID int64, active bool) (bool, error) {
	result, err := p.DB.ExecContext(ctx,
		"UPDATE accounts SET is_active = $1 WHERE id = $2 AND is_active <> $1", active, accountID)
	if err != nil {
		return false, fmt.Errorf("error updating account status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error checking rows affected for status update: %w", err)
	}
	if rowsAffected == 0 {
		exists, err := p.AccountExists(ctx, accountID)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, domain.ErrAccountNotFound
		}
		return false, nil
	}

	return true, nil
}

func (p *Postgres) TotalActiveBalance(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := p.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE owner_id = $1 AND is_active = TRUE", ownerID).
		Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error fetching total balance: %w", err)
	}

	return total, nil
}

// ApplyTransfer moves the amount between two accounts atomically. Both
// rows are locked in ascending id order regardless of direction so two
// opposite transfers cannot deadlock.
func (p *Postgres) ApplyTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM accounts WHERE id = $1 OR id = $2 ORDER BY id FOR UPDATE", fromID, toID)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("error locking accounts: %w", err)
	}
	var locked int
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			closeRows(rows)
			rollback(tx)
			return fmt.Errorf("error scanning locked account: %w", err)
		}
		locked++
	}
	closeRows(rows)
	if err = rows.Err(); err != nil {
		rollback(tx)
		return fmt.Errorf("error iterating over locked accounts: %w", err)
	}
	if locked != 2 {
		rollback(tx)
		return domain.ErrAccountNotFound
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1", amount, fromID)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("error debiting source account: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		rollback(tx)
		return fmt.Errorf("error checking rows affected for transfer debit: %w", err)
	}
	if rowsAffected == 0 {
		rollback(tx)
		logger.Log.Warn("insufficient funds for transfer", logger.Int64("from_account_id", fromID))
		return domain.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE id = $2", amount, toID)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("error crediting destination account: %w", err)
	}

	if err = tx.Commit(); err != nil {
		rollback(tx)
		return fmt.Errorf("error committing transfer: %w", err)
	}

	return nil
}

func (p *Postgres) AccountExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking account existence: %w", err)
	}

	return exists, nil
}
