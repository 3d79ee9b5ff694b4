package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/etnz/folio"
)

// schema creates the folio tables when they do not exist yet. Amounts are kept
// as exact numerics.
const schema = `
CREATE TABLE IF NOT EXISTS folio_transaction (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID      NOT NULL UNIQUE,
	owner      TEXT      NOT NULL,
	date       TEXT      NOT NULL,
	kind       TEXT      NOT NULL,
	instrument TEXT      NOT NULL,
	quantity   NUMERIC   NOT NULL,
	price      NUMERIC   NOT NULL,
	currency   TEXT      NOT NULL DEFAULT ''
);
ALTER TABLE folio_transaction ADD COLUMN IF NOT EXISTS class TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS folio_transaction_owner ON folio_transaction (owner, seq);

CREATE TABLE IF NOT EXISTS folio_holding (
	owner      TEXT    NOT NULL,
	symbol     TEXT    NOT NULL,
	instrument TEXT    NOT NULL,
	quantity   NUMERIC NOT NULL,
	avg_cost   NUMERIC NOT NULL,
	currency   TEXT    NOT NULL DEFAULT '',
	class      TEXT    NOT NULL,
	PRIMARY KEY (owner, symbol)
);`

// Postgres stores owners in a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database at connStr and creates the tables.
func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s := &Postgres{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) Close() error { return s.db.Close() }

// Migrate creates the tables used by the store.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// execer is implemented by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) LoadTransactions(ctx context.Context, owner string) ([]folio.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, date, kind, instrument, quantity, price, currency, class
		FROM folio_transaction WHERE owner = $1 ORDER BY seq`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []folio.Transaction
	for rows.Next() {
		var (
			tx              folio.Transaction
			id              uuid.UUID
			quantity, price decimal.Decimal
			currency        string
		)
		if err := rows.Scan(&id, &tx.Owner, &tx.Timestamp, &tx.Kind, &tx.Instrument, &quantity, &price, &currency, &tx.Class); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.ID = id
		tx.Quantity = folio.Q(quantity)
		tx.UnitPrice = folio.M(price, currency)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *Postgres) LoadHoldings(ctx context.Context, owner string) ([]folio.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, symbol, instrument, quantity, avg_cost, currency, class
		FROM folio_holding WHERE owner = $1 ORDER BY symbol`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []folio.Holding
	for rows.Next() {
		var (
			h                 folio.Holding
			quantity, avgCost decimal.Decimal
			currency          string
		)
		if err := rows.Scan(&h.Owner, &h.Symbol, &h.Instrument, &quantity, &avgCost, &currency, &h.Class); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		h.Quantity = folio.Q(quantity)
		h.AvgCost = folio.M(avgCost, currency)
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func saveHolding(ctx context.Context, db execer, h folio.Holding) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO folio_holding (owner, symbol, instrument, quantity, avg_cost, currency, class)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner, symbol) DO UPDATE SET
			instrument = EXCLUDED.instrument,
			quantity = EXCLUDED.quantity,
			avg_cost = EXCLUDED.avg_cost,
			currency = EXCLUDED.currency,
			class = EXCLUDED.class`,
		h.Owner, h.Symbol, h.Instrument, h.Quantity.Decimal(), h.AvgCost.Decimal(), h.AvgCost.Currency(), string(h.Class))
	if err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	return nil
}

func deleteHolding(ctx context.Context, db execer, owner, symbol string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM folio_holding WHERE owner = $1 AND symbol = $2`, owner, symbol); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

func appendTransaction(ctx context.Context, db execer, tx folio.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO folio_transaction (id, owner, date, kind, instrument, quantity, price, currency, class)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, tx.Owner, tx.Timestamp, string(tx.Kind), tx.Instrument, tx.Quantity.Decimal(), tx.UnitPrice.Decimal(), tx.UnitPrice.Currency(), string(tx.Class))
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *Postgres) SaveHolding(ctx context.Context, h folio.Holding) error {
	return saveHolding(ctx, s.db, h)
}

func (s *Postgres) DeleteHolding(ctx context.Context, owner, symbol string) error {
	return deleteHolding(ctx, s.db, owner, symbol)
}

func (s *Postgres) AppendTransaction(ctx context.Context, tx folio.Transaction) error {
	return appendTransaction(ctx, s.db, tx)
}

// ApplyChanges writes the holding changes and the transaction records in one
// database transaction. A zero Record is not written.
func (s *Postgres) ApplyChanges(ctx context.Context, changes ...folio.Change) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, c := range changes {
		switch {
		case c.Save != nil:
			err = saveHolding(ctx, tx, *c.Save)
		case c.Delete != nil:
			err = deleteHolding(ctx, tx, c.Delete.Owner, c.Delete.Symbol)
		}
		if err != nil {
			return err
		}
		if c.Record.Owner == "" {
			continue
		}
		if err = appendTransaction(ctx, tx, c.Record); err != nil {
			return err
		}
	}
	return tx.Commit()
}
