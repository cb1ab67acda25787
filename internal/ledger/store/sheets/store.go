// Package sheets implements the transaction store contract on a Google
// spreadsheet: one worksheet per month key, a header row of the canonical
// record fields, hard deletes by removing the row. The app_settings worksheet
// and anything else that is not a month key are not transaction partitions
// and are filtered out of ListPartitions.
//
// Every API call goes through a bounded jittered retry so a rate-limited or
// flaky call fails alone instead of failing a whole reconciliation batch.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/retry"
)

const (
	retryAttempts = 3
	retryBase     = 500 * time.Millisecond

	dataRange = "A1:I"
)

type Store struct {
	svc           *sheets.Service
	spreadsheetID string
}

func New(svc *sheets.Service, spreadsheetID string) *Store {
	return &Store{svc: svc, spreadsheetID: spreadsheetID}
}

func (s *Store) ListPartitions(ctx context.Context) ([]string, error) {
	var keys []string

	err := s.call(ctx, func() error {
		spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		if err != nil {
			return err
		}

		keys = keys[:0]
		for _, sheet := range spreadsheet.Sheets {
			keys = append(keys, sheet.Properties.Title)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing worksheets: %w", err)
	}

	return keys, nil
}

func (s *Store) ReadPartition(ctx context.Context, key string) ([]ledger.Record, error) {
	values, err := s.readRows(ctx, key)
	if err != nil {
		return nil, err
	}

	if len(values) < 2 {
		return nil, nil
	}

	headers := rowStrings(values[0])

	records := make([]ledger.Record, 0, len(values)-1)

	for _, row := range values[1:] {
		cells := rowStrings(row)
		rec := make(ledger.Record, len(headers))

		for i, header := range headers {
			if i < len(cells) {
				rec[header] = cells[i]
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// CreatePartition adds the worksheet and its header row. Creating an
// existing partition is a no-op.
func (s *Store) CreatePartition(ctx context.Context, key string) error {
	err := s.call(ctx, func() error {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: key},
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
		return fmt.Errorf("adding worksheet %s: %w", key, err)
	}

	header := make([]any, len(ledger.Fields))
	for i, field := range ledger.Fields {
		header[i] = field
	}

	return s.writeRow(ctx, fmt.Sprintf("%s!A1", key), header)
}

func (s *Store) AppendRecord(ctx context.Context, key string, rec ledger.Record) error {
	row := make([]any, len(ledger.Fields))
	for i, field := range ledger.Fields {
		row[i] = rec[field]
	}

	err := s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.
			Append(s.spreadsheetID, fmt.Sprintf("%s!%s", key, dataRange), &sheets.ValueRange{Values: [][]any{row}}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()

		return err
	})
	if err != nil {
		return fmt.Errorf("appending to worksheet %s: %w", key, err)
	}

	return nil
}

func (s *Store) UpdateRecord(ctx context.Context, key, id string, fields ledger.Record) error {
	rowIndex, headers, err := s.findRow(ctx, key, id)
	if err != nil {
		return err
	}

	row := make([]any, len(headers))
	for i, header := range headers {
		row[i] = fields[header]
	}

	// Sheet rows are 1-based and row 1 is the header.
	return s.writeRow(ctx, fmt.Sprintf("%s!A%d", key, rowIndex+2), row)
}

func (s *Store) DeleteRecord(ctx context.Context, key, id string) error {
	rowIndex, _, err := s.findRow(ctx, key, id)
	if err != nil {
		return err
	}

	sheetID, err := s.sheetID(ctx, key)
	if err != nil {
		return err
	}

	err = s.call(ctx, func() error {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(rowIndex + 1),
						EndIndex:   int64(rowIndex + 2),
					},
				},
			}},
		}

		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()

		return err
	})
	if err != nil {
		return fmt.Errorf("deleting row from worksheet %s: %w", key, err)
	}

	return nil
}

func (s *Store) FindRecordLocation(ctx context.Context, id string) (string, error) {
	keys, err := s.ListPartitions(ctx)
	if err != nil {
		return "", err
	}

	for _, key := range keys {
		if _, err := ledger.ParsePartitionKey(key); err != nil {
			continue
		}

		if _, _, err := s.findRow(ctx, key, id); err == nil {
			return key, nil
		} else if !errors.Is(err, ledger.ErrNotFound) {
			return "", err
		}
	}

	return "", ledger.ErrNotFound
}

// findRow returns the 0-based data-row index of id within the partition,
// plus the worksheet's header order.
func (s *Store) findRow(ctx context.Context, key, id string) (int, []string, error) {
	values, err := s.readRows(ctx, key)
	if err != nil {
		return 0, nil, err
	}

	if len(values) == 0 {
		return 0, nil, ledger.ErrNotFound
	}

	headers := rowStrings(values[0])

	idCol := -1

	for i, header := range headers {
		if header == ledger.FieldID {
			idCol = i
			break
		}
	}

	if idCol < 0 {
		return 0, nil, ledger.ErrNotFound
	}

	for i, row := range values[1:] {
		cells := rowStrings(row)
		if idCol < len(cells) && cells[idCol] == id {
			return i, headers, nil
		}
	}

	return 0, nil, ledger.ErrNotFound
}

func (s *Store) readRows(ctx context.Context, key string) ([][]any, error) {
	var values [][]any

	err := s.call(ctx, func() error {
		resp, err := s.svc.Spreadsheets.Values.
			Get(s.spreadsheetID, fmt.Sprintf("%s!%s", key, dataRange)).
			Context(ctx).Do()
		if err != nil {
			return err
		}

		values = resp.Values

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %s: %w", key, err)
	}

	return values, nil
}

func (s *Store) writeRow(ctx context.Context, cellRange string, row []any) error {
	err := s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.
			Update(s.spreadsheetID, cellRange, &sheets.ValueRange{Values: [][]any{row}}).
			ValueInputOption("RAW").
			Context(ctx).Do()

		return err
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", cellRange, err)
	}

	return nil
}

func (s *Store) sheetID(ctx context.Context, key string) (int64, error) {
	var sheetID int64 = -1

	err := s.call(ctx, func() error {
		spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		if err != nil {
			return err
		}

		for _, sheet := range spreadsheet.Sheets {
			if sheet.Properties.Title == key {
				sheetID = sheet.Properties.SheetId
				return nil
			}
		}

		return ledger.ErrNotFound
	})
	if err != nil {
		return 0, fmt.Errorf("resolving worksheet %s: %w", key, err)
	}

	return sheetID, nil
}

// call classifies API errors and retries the transient ones.
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
