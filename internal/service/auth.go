package service

import (
	"context"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/pkg/logger"
)

type guardUserRepository interface {
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type guardAccountRepository interface {
	AccountByID(ctx context.Context, id int64) (*domain.Account, error)
}

type guardCardRepository interface {
	CardByID(ctx context.Context, id int64) (*domain.Card, error)
}

type guardTransactionRepository interface {
	TransactionByID(ctx context.Context, id int64) (*domain.Transaction, error)
}

// AuthGuard checks the caller's resolved identity (the verified email
// carried by the request) against the owner of the requested resource.
// A missing identity always reads as an invalid token.
type AuthGuard struct {
	users        guardUserRepository
	accounts     guardAccountRepository
	cards        guardCardRepository
	transactions guardTransactionRepository
}

func NewAuthGuard(users guardUserRepository, accounts guardAccountRepository, cards guardCardRepository, transactions guardTransactionRepository) *AuthGuard {
	return &AuthGuard{
		users:        users,
		accounts:     accounts,
		cards:        cards,
		transactions: transactions,
	}
}

func (g *AuthGuard) UserAccess(ctx context.Context, email string, userID int64) error {
	caller, err := g.caller(ctx, email)
	if err != nil {
		return err
	}

	if caller.ID != userID {
		logger.Log.Warn("user access denied", logger.String("email", email), logger.Int64("user_id", userID))
		return domain.ErrAccessDenied
	}

	return nil
}

func (g *AuthGuard) AccountAccess(ctx context.Context, email string, accountID int64) error {
	caller, err := g.caller(ctx, email)
	if err != nil {
		return err
	}

	account, err := g.accounts.AccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.OwnerID != caller.ID {
		logger.Log.Warn("account access denied", logger.String("email", email), logger.Int64("account_id", accountID))
		return domain.ErrAccessDenied
	}

	return nil
}

func (g *AuthGuard) CardAccess(ctx context.Context, email string, cardID int64) error {
	caller, err := g.caller(ctx, email)
	if err != nil {
		return err
	}

	card, err := g.cards.CardByID(ctx, cardID)
	if err != nil {
		return err
	}

	if card.OwnerID != caller.ID {
		logger.Log.Warn("card access denied", logger.String("email", email), logger.Int64("card_id", cardID))
		return domain.ErrAccessDenied
	}

	return nil
}

// TransactionAccess passes when the caller owns either endpoint
// account of the transaction.
func (g *AuthGuard) TransactionAccess(ctx context.Context, email string, transactionID int64) error {
	caller, err := g.caller(ctx, email)
	if err != nil {
		return err
	}

	t, err := g.transactions.TransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}

	from, err := g.accounts.AccountByID(ctx, t.FromAccountID)
	if err != nil {
		return err
	}
	if from.OwnerID == caller.ID {
		return nil
	}

	to, err := g.accounts.AccountByID(ctx, t.ToAccountID)
	if err != nil {
		return err
	}
	if to.OwnerID == caller.ID {
		return nil
	}

	logger.Log.Warn("transaction access denied", logger.String("email", email), logger.Int64("transaction_id", transactionID))
	return domain.ErrAccessDenied
}

func (g *AuthGuard) caller(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrInvalidToken
	}

	caller, err := g.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	return caller, nil
}
