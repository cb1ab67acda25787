// Package postgres implements the settings store contract on the
// app_settings table:
//
//	CREATE TABLE app_settings (
//	    section  TEXT NOT NULL,
//	    key_name TEXT NOT NULL,
//	    value    TEXT NOT NULL DEFAULT '',
//	    PRIMARY KEY (section, key_name)
//	);
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yhhuang/moneybook/internal/settings"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ReadAll(ctx context.Context) ([]settings.Entry, error) {
	query := `SELECT section, key_name, value FROM app_settings ORDER BY section, key_name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	defer rows.Close()

	var entries []settings.Entry

	for rows.Next() {
		var e settings.Entry
		if err := rows.Scan(&e.Section, &e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Store) Put(ctx context.Context, entry settings.Entry) error {
	query := `
		INSERT INTO app_settings (section, key_name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (section, key_name) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := s.db.ExecContext(ctx, query, entry.Section, entry.Key, entry.Value); err != nil {
		return fmt.Errorf("storing setting %s/%s: %w", entry.Section, entry.Key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, section, key string) error {
	query := `DELETE FROM app_settings WHERE section = $1 AND key_name = $2`

	if _, err := s.db.ExecContext(ctx, query, section, key); err != nil {
		return fmt.Errorf("deleting setting %s/%s: %w", section, key, err)
	}

	return nil
}
