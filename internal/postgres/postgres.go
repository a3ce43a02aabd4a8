// Package postgres implements the persistence port over database/sql
// with the pgx driver. All balance mutations are conditional single-row
// updates; the transfer path locks both rows in ascending id order
// inside one database transaction.
package postgres

import (
	"database/sql"
	"errors"

	"github.com/dgbank/dgbank/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type Postgres struct {
	DB *sql.DB
}

func New(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}

func rollback(tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Log.Error("error rolling back transaction", logger.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func closeRows(rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		logger.Log.Error("error closing rows", logger.Error(err))
	}
}
