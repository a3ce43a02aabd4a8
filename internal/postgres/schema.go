package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		type VARCHAR(30) NOT NULL,
		number VARCHAR(50) NOT NULL UNIQUE,
		issuer VARCHAR(100) NOT NULL,
		expiry_date DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id BIGSERIAL PRIMARY KEY,
		street VARCHAR(100) NOT NULL,
		city VARCHAR(50) NOT NULL,
		postal_code VARCHAR(10) NOT NULL,
		country VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(100) NOT NULL UNIQUE,
		password VARCHAR(100) NOT NULL,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		date_of_birth DATE NOT NULL,
		phone_number VARCHAR(20) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		document_id BIGINT NOT NULL REFERENCES documents (id),
		address_id BIGINT NOT NULL REFERENCES addresses (id),
		created_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		iban VARCHAR(34) NOT NULL UNIQUE,
		balance NUMERIC(15, 2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		owner_id BIGINT NOT NULL REFERENCES users (id),
		opened_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id BIGSERIAL PRIMARY KEY,
		number VARCHAR(19) NOT NULL UNIQUE,
		cvv VARCHAR(4) NOT NULL,
		expiry_date DATE NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		account_id BIGINT NOT NULL REFERENCES accounts (id),
		owner_id BIGINT NOT NULL REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		transaction_id VARCHAR(50) NOT NULL UNIQUE,
		from_account_id BIGINT NOT NULL REFERENCES accounts (id),
		to_account_id BIGINT NOT NULL REFERENCES accounts (id),
		amount NUMERIC(15, 2) NOT NULL CHECK (amount > 0),
		description VARCHAR(255),
		type VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_from_account_idx ON transactions (from_account_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS transactions_to_account_idx ON transactions (to_account_id, created_at DESC)`,
}

func (p *Postgres) Bootstrap(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}

	return nil
}
