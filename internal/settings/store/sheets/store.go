// Package sheets implements the settings store contract on the app_settings
// worksheet: a header row followed by (section, key, value) rows.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/retry"
	"github.com/yhhuang/moneybook/internal/settings"
)

const (
	retryAttempts = 3
	retryBase     = 500 * time.Millisecond
)

var header = []any{"section", "key", "value"}

type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

func New(svc *sheetsapi.Service, spreadsheetID string) *Store {
	return &Store{svc: svc, spreadsheetID: spreadsheetID}
}

func (s *Store) ReadAll(ctx context.Context) ([]settings.Entry, error) {
	values, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}

	if len(values) < 2 {
		return nil, nil
	}

	entries := make([]settings.Entry, 0, len(values)-1)

	for _, row := range values[1:] {
		cells := rowStrings(row)
		if len(cells) < 2 {
			continue
		}

		e := settings.Entry{Section: cells[0], Key: cells[1]}
		if len(cells) > 2 {
			e.Value = cells[2]
		}

		entries = append(entries, e)
	}

	return entries, nil
}

func (s *Store) Put(ctx context.Context, entry settings.Entry) error {
	if err := s.ensureWorksheet(ctx); err != nil {
		return err
	}

	values, err := s.readRows(ctx)
	if err != nil {
		return err
	}

	for i, row := range skipHeader(values) {
		cells := rowStrings(row)
		if len(cells) >= 2 && cells[0] == entry.Section && cells[1] == entry.Key {
			return s.writeRow(ctx, fmt.Sprintf("%s!A%d", ledger.SettingsPartition, i+2),
				[]any{entry.Section, entry.Key, entry.Value})
		}
	}

	err = s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.
			Append(s.spreadsheetID, ledger.SettingsPartition+"!A1:C",
				&sheetsapi.ValueRange{Values: [][]any{{entry.Section, entry.Key, entry.Value}}}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()

		return err
	})
	if err != nil {
		return fmt.Errorf("appending setting %s/%s: %w", entry.Section, entry.Key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, section, key string) error {
	values, err := s.readRows(ctx)
	if err != nil {
		return err
	}

	for i, row := range skipHeader(values) {
		cells := rowStrings(row)
		if len(cells) < 2 || cells[0] != section || cells[1] != key {
			continue
		}

		sheetID, err := s.sheetID(ctx)
		if err != nil {
			return err
		}

		err = s.call(ctx, func() error {
			req := &sheetsapi.BatchUpdateSpreadsheetRequest{
				Requests: []*sheetsapi.Request{{
					DeleteDimension: &sheetsapi.DeleteDimensionRequest{
						Range: &sheetsapi.DimensionRange{
							SheetId:    sheetID,
							Dimension:  "ROWS",
							StartIndex: int64(i + 1),
							EndIndex:   int64(i + 2),
						},
					},
				}},
			}

			_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()

			return err
		})
		if err != nil {
			return fmt.Errorf("deleting setting %s/%s: %w", section, key, err)
		}

		return nil
	}

	return nil
}

func (s *Store) ensureWorksheet(ctx context.Context) error {
	err := s.call(ctx, func() error {
		req := &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				AddSheet: &sheetsapi.AddSheetRequest{
					Properties: &sheetsapi.SheetProperties{Title: ledger.SettingsPartition},
				},
			}},
		}

		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()

		return err
	})

	if alreadyExists(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("adding settings worksheet: %w", err)
	}

	return s.writeRow(ctx, ledger.SettingsPartition+"!A1", header)
}

func (s *Store) readRows(ctx context.Context) ([][]any, error) {
	var values [][]any

	err := s.call(ctx, func() error {
		resp, err := s.svc.Spreadsheets.Values.
			Get(s.spreadsheetID, ledger.SettingsPartition+"!A1:C").
			Context(ctx).Do()
		if err != nil {
			return err
		}

		values = resp.Values

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading settings worksheet: %w", err)
	}

	return values, nil
}

func (s *Store) writeRow(ctx context.Context, cellRange string, row []any) error {
	err := s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.
			Update(s.spreadsheetID, cellRange, &sheetsapi.ValueRange{Values: [][]any{row}}).
			ValueInputOption("RAW").
			Context(ctx).Do()

		return err
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", cellRange, err)
	}

	return nil
}

func (s *Store) sheetID(ctx context.Context) (int64, error) {
	var sheetID int64 = -1

	err := s.call(ctx, func() error {
		spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		if err != nil {
			return err
		}

		for _, sheet := range spreadsheet.Sheets {
			if sheet.Properties.Title == ledger.SettingsPartition {
				sheetID = sheet.Properties.SheetId
				return nil
			}
		}

		return fmt.Errorf("settings worksheet missing")
	})
	if err != nil {
		return 0, fmt.Errorf("resolving settings worksheet: %w", err)
	}

	return sheetID, nil
}

func (s *Store) call(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, retryAttempts, retryBase, func() error {
		err := fn()
		if isTransient(err) {
			return retry.Transient(err)
		}

		return err
	})
}

func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}

	return false
}

func alreadyExists(err error) bool {
	var apiErr *googleapi.Error

	return errors.As(err, &apiErr) && apiErr.Code == 400 &&
		strings.Contains(apiErr.Message, "already exists")
}

func rowStrings(row []any) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	return out
}

func skipHeader(values [][]any) [][]any {
	if len(values) == 0 {
		return nil
	}

	return values[1:]
}
