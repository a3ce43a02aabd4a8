package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/pkg/logger"
)

// CreateUser persists the user together with its document and address
// in one transaction and fills in the generated ids.
func (p *Postgres) CreateUser(ctx context.Context, user *domain.User) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		"INSERT INTO documents (type, number, issuer, expiry_date) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Document.Type, user.Document.Number, user.Document.Issuer, user.Document.ExpiryDate,
	).Scan(&user.Document.ID)
	if err != nil {
		rollback(tx)
		if isUniqueViolation(err) {
			logger.Log.Warn("document already registered", logger.String("number", user.Document.Number))
			return domain.ErrDocumentTaken
		}
		return fmt.Errorf("error creating document: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		"INSERT INTO addresses (street, city, postal_code, country) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Address.Street, user.Address.City, user.Address.PostalCode, user.Address.Country,
	).Scan(&user.Address.ID)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("error creating address: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, password, first_name, last_name, date_of_birth, phone_number, document_id, address_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, is_active, created_at`,
		user.Email, user.Password, user.FirstName, user.LastName,
		user.DateOfBirth, user.PhoneNumber, user.Document.ID, user.Address.ID,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt)
	if err != nil {
		rollback(tx)
		if isUniqueViolation(err) {
			logger.Log.Warn("email already registered", logger.String("email", user.Email))
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	if err = tx.Commit(); err != nil {
		rollback(tx)
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

const userColumns = `u.id, u.email, u.password, u.first_name, u.last_name, u.date_of_birth,
		u.phone_number, u.is_active, u.created_at,
		d.id, d.type, d.number, d.issuer, d.expiry_date,
		a.id, a.street, a.city, a.postal_code, a.country`

const userJoin = ` FROM users u
		JOIN documents d ON d.id = u.document_id
		JOIN addresses a ON a.id = u.address_id`

func scanUser(row *sql.Row) (*domain.User, error) {
	user := domain.User{
		Document: &domain.Document{},
		Address:  &domain.Address{},
	}

	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName, &user.DateOfBirth,
		&user.PhoneNumber, &user.IsActive, &user.CreatedAt,
		&user.Document.ID, &user.Document.Type, &user.Document.Number, &user.Document.Issuer, &user.Document.ExpiryDate,
		&user.Address.ID, &user.Address.Street, &user.Address.City, &user.Address.PostalCode, &user.Address.Country,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	return &user, nil
}

func (p *Postgres) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+userColumns+userJoin+" WHERE u.id = $1", id)
	return scanUser(row)
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+userColumns+userJoin+" WHERE u.email = $1", email)
	return scanUser(row)
}

func (p *Postgres) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}

	return exists, nil
}

func (p *Postgres) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email existence: %w", err)
	}

	return exists, nil
}

func (p *Postgres) DocumentNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := p.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM documents WHERE number = $1)", number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking document existence: %w", err)
	}

	return exists, nil
}
