package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgbank/dgbank/internal/domain"
)

func (p *Postgres) CreateCard(ctx context.Context, card *domain.Card) error {
	err := p.DB.QueryRowContext(ctx,
		`INSERT INTO cards (number, cvv, expiry_date, account_id, owner_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, is_active`,
		card.Number, card.CVV, card.ExpiryDate, card.AccountID, card.OwnerID,
	).Scan(&card.ID, &card.IsActive)
	if err != nil {
		return fmt.Errorf("error creating card: %w", err)
	}

	return nil
}

const cardColumns = "id, number, cvv, expiry_date, is_active, account_id, owner_id"

func scanCard(row *sql.Row) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(&card.ID, &card.Number, &card.CVV, &card.ExpiryDate, &card.IsActive, &card.AccountID, &card.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("error fetching card: %w", err)
	}

	return &card, nil
}

func (p *Postgres) CardByID(ctx context.Context, id int64) (*domain.Card, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+cardColumns+" FROM cards WHERE id = $1", id)
	return scanCard(row)
}

func (p *Postgres) CardByNumber(ctx context.Context, number string) (*domain.Card, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+cardColumns+" FROM cards WHERE number = $1", number)
	return scanCard(row)
}

func (p *Postgres) cards(ctx context.Context, query string, arg any) ([]domain.Card, error) {
	rows, err := p.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("error fetching cards: %w", err)
	}
	defer closeRows(rows)

	var cards []domain.Card
	for rows.Next() {
		var card domain.Card
		err := rows.Scan(&card.ID, &card.Number, &card.CVV, &card.ExpiryDate, &card.IsActive, &card.AccountID, &card.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("error scanning card: %w", err)
		}
		cards = append(cards, card)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over cards: %w", err)
	}

	return cards, nil
}

func (p *Postgres) CardsByOwner(ctx context.Context, ownerID int64) ([]domain.Card, error) {
	return p.cards(ctx, "SELECT "+cardColumns+" FROM cards WHERE owner_id = $1 ORDER BY id", ownerID)
}

func (p *Postgres) CardsByAccount(ctx context.Context, accountID int64) ([]domain.Card, error) {
	return p.cards(ctx, "SELECT "+cardColumns+" FROM cards WHERE account_id = $1 ORDER BY id", accountID)
}

func (p *Postgres) CardNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM cards WHERE number = $1)", number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking card number existence: %w", err)
	}

	return exists, nil
}

func (p *Postgres) SetCardActive(ctx context.Context, cardID int64, active bool) (bool, error) {
	result, err := p.DB.ExecContext(ctx,
		"UPDATE cards SET is_active = $1 WHERE id = $2 AND is_active <> $1", active, cardID)
	if err != nil {
		return false, fmt.Errorf("error updating card status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error checking rows affected for card status update: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		err := p.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)", cardID).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("error checking card existence: %w", err)
		}
		if !exists {
			return false, domain.ErrCardNotFound
		}
		return false, nil
	}

	return true, nil
}
