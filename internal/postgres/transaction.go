package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/shopspring/decimal"
)

func (p *Postgres) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	err := p.DB.QueryRowContext(ctx,
		`INSERT INTO transactions (transaction_id, from_account_id, to_account_id, amount, description, type, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		t.TransactionID, t.FromAccountID, t.ToAccountID, t.Amount, t.Description, t.Type, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating transaction: %w", err)
	}

	return nil
}

func (p *Postgres) UpdateTransactionStatus(ctx context.Context, id int64, status domain.TransactionStatus) error {
	result, err := p.DB.ExecContext(ctx,
		"UPDATE transactions SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("error updating transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for transaction status update: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// CancelPendingTransaction moves a transaction to CANCELLED only while
// it is still PENDING. The status guard lives in the statement itself
// so a cancel racing the completing request cannot overwrite a
// terminal status.
func (p *Postgres) CancelPendingTransaction(ctx context.Context, id int64) error {
	result, err := p.DB.ExecContext(ctx,
		"UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3",
		domain.StatusCancelled, id, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("error cancelling transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for cancel: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		err := p.DB.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("error checking transaction existence: %w", err)
		}
		if !exists {
			return domain.ErrTransactionNotFound
		}
		return domain.ErrCannotCancel
	}

	return nil
}

const transactionColumns = "id, transaction_id, from_account_id, to_account_id, amount, description, type, status, created_at"

func (p *Postgres) TransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	err := p.DB.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id).
		Scan(&t.ID, &t.TransactionID, &t.FromAccountID, &t.ToAccountID, &t.Amount, &t.Description, &t.Type, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error fetching transaction: %w", err)
	}

	return &t, nil
}

func (p *Postgres) transactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching transactions: %w", err)
	}
	defer closeRows(rows)

	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(&t.ID, &t.TransactionID, &t.FromAccountID, &t.ToAccountID, &t.Amount, &t.Description, &t.Type, &t.Status, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

func (p *Postgres) TransactionsByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	return p.transactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE from_account_id = $1 OR to_account_id = $1
		 ORDER BY created_at DESC`, accountID)
}

func (p *Postgres) TransactionsByAccountPaginated(ctx context.Context, accountID int64, page, size int) ([]domain.Transaction, error) {
	return p.transactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE from_account_id = $1 OR to_account_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, accountID, size, page*size)
}

func (p *Postgres) TransactionsByUserPaginated(ctx context.Context, userID int64, page, size int) ([]domain.Transaction, error) {
	return p.transactions(ctx,
		`SELECT `+transactionColumnsPrefixed("t")+` FROM transactions t
		 JOIN accounts fa ON fa.id = t.from_account_id
		 JOIN accounts ta ON ta.id = t.to_account_id
		 WHERE fa.owner_id = $1 OR ta.owner_id = $1
		 ORDER BY t.created_at DESC LIMIT $2 OFFSET $3`, userID, size, page*size)
}

func transactionColumnsPrefixed(alias string) string {
	return alias + ".id, " + alias + ".transaction_id, " + alias + ".from_account_id, " + alias + ".to_account_id, " +
		alias + ".amount, " + alias + ".description, " + alias + ".type, " + alias + ".status, " + alias + ".created_at"
}

// IncomesSince sums incoming DEPOSIT and TRANSFER amounts for the
// user's accounts after the cutoff.
func (p *Postgres) IncomesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := p.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(t.amount), 0) FROM transactions t
		 JOIN accounts ta ON ta.id = t.to_account_id
		 WHERE ta.owner_id = $1 AND t.type IN ('DEPOSIT', 'TRANSFER') AND t.created_at > $2`,
		userID, since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error fetching incomes: %w", err)
	}

	return total, nil
}

// ExpensesSince sums outgoing non-DEPOSIT amounts for the user's
// accounts after the cutoff.
func (p *Postgres) ExpensesSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := p.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(t.amount), 0) FROM transactions t
		 JOIN accounts fa ON fa.id = t.from_account_id
		 WHERE fa.owner_id = $1 AND t.type <> 'DEPOSIT' AND t.created_at > $2`,
		userID, since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error fetching expenses: %w", err)
	}

	return total, nil
}
