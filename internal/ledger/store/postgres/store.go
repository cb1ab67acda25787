// Package postgres implements the transaction store contract on a relational
// backend. Partitions are virtual: every row carries its month key in the
// partition_key column, so CreatePartition is a no-op and a cross-partition
// move is an insert plus a tombstone. Deletes are soft (deleted_at), which
// keeps moved-away rows around for audit while hiding them from reads.
//
// Expected schema:
//
//	CREATE TABLE transactions (
//	    id             TEXT NOT NULL,
//	    partition_key  TEXT NOT NULL,
//	    date           DATE,
//	    cash_flow_date DATE,
//	    type           TEXT NOT NULL DEFAULT 'expense',
//	    category       TEXT NOT NULL DEFAULT '',
//	    amount         NUMERIC NOT NULL DEFAULT 0,
//	    payment_method TEXT NOT NULL DEFAULT '',
//	    tags           TEXT NOT NULL DEFAULT '',
//	    note           TEXT NOT NULL DEFAULT '',
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at     TIMESTAMPTZ,
//	    deleted_at     TIMESTAMPTZ,
//	    PRIMARY KEY (id, partition_key)
//	);
//
// The key is composite because a move appends the id into the destination
// partition while the origin row still exists; AppendRecord upserts so that
// moving a record back over its own tombstone resurrects it.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yhhuang/moneybook/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row into a raw record. Expected column order:
// id, date, cash_flow_date, type, category, amount, payment_method, tags, note.
func scanRecord(s scanner) (ledger.Record, error) {
	var (
		id, typ, category, method, tags, note string
		date, cashFlow, amount                sql.NullString
	)

	if err := s.Scan(&id, &date, &cashFlow, &typ, &category, &amount, &method, &tags, &note); err != nil {
		return nil, err
	}

	return ledger.Record{
		ledger.FieldID:            id,
		ledger.FieldDate:          date.String,
		ledger.FieldCashFlowDate:  cashFlow.String,
		ledger.FieldType:          typ,
		ledger.FieldCategory:      category,
		ledger.FieldAmount:        amount.String,
		ledger.FieldPaymentMethod: method,
		ledger.FieldTags:          tags,
		ledger.FieldNote:          note,
	}, nil
}

const selectRecordColumns = `
	id, date::text, cash_flow_date::text, type, category, amount::text,
	payment_method, tags, note
`

func (s *Store) ListPartitions(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT partition_key FROM transactions
		WHERE deleted_at IS NULL ORDER BY partition_key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	defer rows.Close()

	var keys []string

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning partition key: %w", err)
		}

		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (s *Store) ReadPartition(ctx context.Context, key string) ([]ledger.Record, error) {
	query := `SELECT ` + selectRecordColumns + `
		FROM transactions
		WHERE partition_key = $1 AND deleted_at IS NULL
		ORDER BY date ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("reading partition %s: %w", key, err)
	}
	defer rows.Close()

	var records []ledger.Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// CreatePartition is a no-op: partitions exist as soon as a row carries their
// key.
func (s *Store) CreatePartition(_ context.Context, _ string) error {
	return nil
}

func (s *Store) AppendRecord(ctx context.Context, key string, rec ledger.Record) error {
	query := `
		INSERT INTO transactions
			(id, partition_key, date, cash_flow_date, type, category, amount, payment_method, tags, note, created_at)
		VALUES ($1, $2, NULLIF($3, '')::date, NULLIF($4, '')::date, $5, $6,
			COALESCE(NULLIF($7, '')::numeric, 0), $8, $9, $10, NOW())
		ON CONFLICT (id, partition_key) DO UPDATE SET
			date = EXCLUDED.date,
			cash_flow_date = EXCLUDED.cash_flow_date,
			type = EXCLUDED.type,
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			payment_method = EXCLUDED.payment_method,
			tags = EXCLUDED.tags,
			note = EXCLUDED.note,
			updated_at = NOW(),
			deleted_at = NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		rec[ledger.FieldID],
		key,
		rec[ledger.FieldDate],
		rec[ledger.FieldCashFlowDate],
		rec[ledger.FieldType],
		rec[ledger.FieldCategory],
		rec[ledger.FieldAmount],
		rec[ledger.FieldPaymentMethod],
		rec[ledger.FieldTags],
		rec[ledger.FieldNote],
	)
	if err != nil {
		return fmt.Errorf("appending record: %w", err)
	}

	return nil
}

func (s *Store) UpdateRecord(ctx context.Context, key, id string, fields ledger.Record) error {
	query := `
		UPDATE transactions SET
			date = NULLIF($3, '')::date,
			cash_flow_date = NULLIF($4, '')::date,
			type = $5, category = $6,
			amount = COALESCE(NULLIF($7, '')::numeric, 0),
			payment_method = $8, tags = $9, note = $10,
			updated_at = NOW()
		WHERE id = $1 AND partition_key = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		id,
		key,
		fields[ledger.FieldDate],
		fields[ledger.FieldCashFlowDate],
		fields[ledger.FieldType],
		fields[ledger.FieldCategory],
		fields[ledger.FieldAmount],
		fields[ledger.FieldPaymentMethod],
		fields[ledger.FieldTags],
		fields[ledger.FieldNote],
	)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	return requireRow(res)
}

func (s *Store) DeleteRecord(ctx context.Context, key, id string) error {
	query := `UPDATE transactions SET deleted_at = NOW()
		WHERE id = $1 AND partition_key = $2 AND deleted_at IS NULL`

	res, err := s.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	return requireRow(res)
}

func (s *Store) FindRecordLocation(ctx context.Context, id string) (string, error) {
	query := `SELECT partition_key FROM transactions
		WHERE id = $1 AND deleted_at IS NULL`

	var key string

	err := s.db.QueryRowContext(ctx, query, id).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ledger.ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("locating record: %w", err)
	}

	return key, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}
