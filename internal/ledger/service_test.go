package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/logger"
)

func newService(t *testing.T, store ledger.Store, methods ledger.MethodSource) *ledger.Service {
	t.Helper()
	return ledger.NewService(store, methods, time.Minute, logger.NewWithWriter(testWriter{t}))
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// staticMethods is a MethodSource backed by a fixed map.
type staticMethods map[string]ledger.PaymentMethod

func (m staticMethods) PaymentMethods(context.Context) (map[string]ledger.PaymentMethod, error) {
	return m, nil
}

func row(id, origin string, d time.Time, category string, amount int64) ledger.Row {
	return ledger.Row{
		Transaction: ledger.Transaction{
			ID:           id,
			Date:         d,
			CashFlowDate: d,
			Type:         ledger.TypeExpense,
			Category:     category,
			Amount:       decimal.NewFromInt(amount),
		},
		Origin: origin,
	}
}

func TestService_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	store.EXPECT().
		ListPartitions(gomock.Any()).
		Return([]string{"2024-02", "app_settings", "2024-01", "scratchpad"}, nil).
		Times(1)

	store.EXPECT().
		ReadPartition(gomock.Any(), "2024-01").
		Return([]ledger.Record{
			{
				ledger.FieldID:     "a",
				ledger.FieldDate:   "2024-01-10",
				ledger.FieldAmount: "1,200",
				// No cash_flow_date, type or tags: old record shape.
			},
			{
				ledger.FieldID:     "b",
				ledger.FieldDate:   "not a date",
				ledger.FieldType:   "income",
				ledger.FieldAmount: "oops",
			},
		}, nil).
		Times(1)

	store.EXPECT().
		ReadPartition(gomock.Any(), "2024-02").
		Return(nil, nil).
		Times(1)

	svc := newService(t, store, staticMethods{})

	snapshot, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Rows, 2)

	a := snapshot.Rows[0]
	assert.Equal(t, "2024-01", a.Origin)
	assert.Equal(t, ledger.TypeExpense, a.Type)
	assert.True(t, a.CashFlowDate.Equal(a.Date), "missing cash flow date backfills to date")
	assert.True(t, a.Amount.Equal(decimal.NewFromInt(1200)), "thousands separator stripped")

	b := snapshot.Rows[1]
	assert.True(t, b.Date.IsZero(), "malformed date becomes zero time")
	assert.True(t, b.Amount.IsZero(), "malformed amount becomes 0")
	assert.Equal(t, ledger.TypeIncome, b.Type)

	// Second load inside the TTL is served from the cache; the Times(1)
	// expectations above fail if it hits the store again.
	_, err = svc.Load(context.Background())
	require.NoError(t, err)

	// Invalidation forces a re-read.
	store.EXPECT().ListPartitions(gomock.Any()).Return(nil, nil)
	svc.Invalidate()

	_, err = svc.Load(context.Background())
	require.NoError(t, err)
}

func TestService_Reconcile_NoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)
	// No store expectations: an unchanged snapshot must not touch the store.

	original := &ledger.Snapshot{Rows: []ledger.Row{
		row("a", "2024-01", date(2024, time.January, 10), "food", 120),
		row("b", "2024-02", date(2024, time.February, 2), "transport", 40),
	}}

	edited := []ledger.Transaction{
		original.Rows[0].Transaction,
		original.Rows[1].Transaction,
	}

	svc := newService(t, store, staticMethods{})

	summary, err := svc.Reconcile(context.Background(), edited, original)
	require.NoError(t, err)

	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Moved)
	assert.Zero(t, summary.Deleted)
	assert.Empty(t, summary.Failed)
}

func TestService_Reconcile_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	original := &ledger.Snapshot{Rows: []ledger.Row{
		row("a", "2024-01", date(2024, time.January, 10), "food", 120),
		row("b", "2024-02", date(2024, time.February, 2), "transport", 40),
	}}

	// Row "a" disappeared from the edited copy: exactly one delete, against
	// its recorded origin partition.
	store.EXPECT().
		DeleteRecord(gomock.Any(), "2024-01", "a").
		Return(nil).
		Times(1)

	edited := []ledger.Transaction{original.Rows[1].Transaction}

	svc := newService(t, store, staticMethods{})

	summary, err := svc.Reconcile(context.Background(), edited, original)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Deleted)
	assert.Empty(t, summary.Failed)
}

func TestService_Reconcile_UpdateInPlace(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	visa := staticMethods{"visa": {CutoffDay: 19, GapDays: 15}}

	orig := row("a", "2024-05", date(2024, time.May, 20), "food", 120)
	orig.PaymentMethod = "visa"

	edited := orig.Transaction
	edited.Category = "entertainment"

	var updated ledger.Record

	store.EXPECT().
		UpdateRecord(gomock.Any(), "2024-05", "a", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fields ledger.Record) error {
			updated = fields
			return nil
		})

	svc := newService(t, store, visa)

	summary, err := svc.Reconcile(context.Background(),
		[]ledger.Transaction{edited},
		&ledger.Snapshot{Rows: []ledger.Row{orig}})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Empty(t, summary.Failed)

	assert.Equal(t, "entertainment", updated[ledger.FieldCategory])
	// Day 20 is past the cutoff: cycle closes 2024-06-19, cash flows 15
	// days later. The derived date is rewritten on every update.
	assert.Equal(t, "2024-07-04", updated[ledger.FieldCashFlowDate])
}

func TestService_Reconcile_MoveAppendsBeforeDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	orig := row("a", "2024-01", date(2024, time.January, 28), "food", 120)

	edited := orig.Transaction
	edited.Date = date(2024, time.February, 2)

	var appended ledger.Record

	gomock.InOrder(
		store.EXPECT().CreatePartition(gomock.Any(), "2024-02").Return(nil),
		store.EXPECT().
			AppendRecord(gomock.Any(), "2024-02", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, rec ledger.Record) error {
				appended = rec
				return nil
			}),
		store.EXPECT().DeleteRecord(gomock.Any(), "2024-01", "a").Return(nil),
	)

	svc := newService(t, store, staticMethods{})

	summary, err := svc.Reconcile(context.Background(),
		[]ledger.Transaction{edited},
		&ledger.Snapshot{Rows: []ledger.Row{orig}})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Moved)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, "a", appended[ledger.FieldID], "moved record keeps its id")
	assert.Equal(t, "2024-02-02", appended[ledger.FieldDate])
}

func TestService_Reconcile_MoveDeleteFailureIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	orig := row("a", "2024-01", date(2024, time.January, 28), "food", 120)

	edited := orig.Transaction
	edited.Date = date(2024, time.February, 2)

	gomock.InOrder(
		store.EXPECT().CreatePartition(gomock.Any(), "2024-02").Return(nil),
		store.EXPECT().AppendRecord(gomock.Any(), "2024-02", gomock.Any()).Return(nil),
		store.EXPECT().
			DeleteRecord(gomock.Any(), "2024-01", "a").
			Return(errors.New("quota exceeded")),
	)

	svc := newService(t, store, staticMethods{})

	summary, err := svc.Reconcile(context.Background(),
		[]ledger.Transaction{edited},
		&ledger.Snapshot{Rows: []ledger.Row{orig}})
	require.NoError(t, err)

	assert.Zero(t, summary.Moved)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "a", summary.Failed[0].ID)
	assert.Contains(t, summary.Failed[0].Reason, "duplicate left behind")
}

func TestService_Reconcile_RowFailuresAreIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	a := row("a", "2024-01", date(2024, time.January, 10), "food", 120)
	b := row("b", "2024-01", date(2024, time.January, 11), "food", 80)

	editedA := a.Transaction
	editedA.Amount = decimal.NewFromInt(150)

	editedB := b.Transaction
	editedB.Amount = decimal.NewFromInt(90)

	store.EXPECT().
		UpdateRecord(gomock.Any(), "2024-01", "a", gomock.Any()).
		Return(ledger.ErrNotFound)
	store.EXPECT().
		UpdateRecord(gomock.Any(), "2024-01", "b", gomock.Any()).
		Return(nil)

	svc := newService(t, store, staticMethods{})

	summary, err := svc.Reconcile(context.Background(),
		[]ledger.Transaction{editedA, editedB},
		&ledger.Snapshot{Rows: []ledger.Row{a, b}})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated, "the second row still converges")
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "a", summary.Failed[0].ID)
}

func TestService_Reconcile_InvalidRowRejectedBeforeStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)
	// No expectations: the malformed row must not reach the store.

	orig := row("a", "2024-01", date(2024, time.January, 10), "food", 120)

	edited := orig.Transaction
	edited.Date = time.Time{} // the grid handed back an unparseable date

	svc := newService(t, store, staticMethods{})

	summary, err := svc.Reconcile(context.Background(),
		[]ledger.Transaction{edited},
		&ledger.Snapshot{Rows: []ledger.Row{orig}})
	require.NoError(t, err)

	assert.Zero(t, summary.Updated)
	require.Len(t, summary.Failed, 1)
	assert.Contains(t, summary.Failed[0].Reason, "invalid date")
}

func TestService_Reconcile_IgnoresRowsWithoutID(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)
	// A half-filled grid row without an id is not an insert and not a
	// delete of anything; nothing may reach the store.

	orig := row("a", "2024-01", date(2024, time.January, 10), "food", 120)

	fresh := ledger.Transaction{
		Date:   date(2024, time.January, 20),
		Amount: decimal.NewFromInt(55),
	}

	svc := newService(t, store, staticMethods{})

	summary, err := svc.Reconcile(context.Background(),
		[]ledger.Transaction{orig.Transaction, fresh},
		&ledger.Snapshot{Rows: []ledger.Row{orig}})
	require.NoError(t, err)

	assert.Zero(t, summary.Updated+summary.Moved+summary.Deleted)
	assert.Empty(t, summary.Failed)
}

func TestService_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	visa := staticMethods{"visa": {CutoffDay: 19, GapDays: 15}}

	var appended ledger.Record

	gomock.InOrder(
		store.EXPECT().CreatePartition(gomock.Any(), "2024-05").Return(nil),
		store.EXPECT().
			AppendRecord(gomock.Any(), "2024-05", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, rec ledger.Record) error {
				appended = rec
				return nil
			}),
	)

	svc := newService(t, store, visa)

	tx, err := svc.Add(context.Background(), ledger.CreateParams{
		Date:          date(2024, time.May, 20),
		Category:      "food",
		Amount:        decimal.NewFromInt(120),
		PaymentMethod: "visa",
		Note:          "lunch",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, ledger.TypeExpense, tx.Type, "type defaults to expense")
	assert.True(t, tx.CashFlowDate.Equal(date(2024, time.July, 4)))
	assert.Equal(t, tx.ID, appended[ledger.FieldID])
	assert.Equal(t, "2024-07-04", appended[ledger.FieldCashFlowDate])
}

func TestService_Add_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	svc := newService(t, store, staticMethods{})

	type testCase struct {
		name   string
		params ledger.CreateParams
	}

	tests := []testCase{
		{
			name:   "MissingDate",
			params: ledger.CreateParams{Amount: decimal.NewFromInt(10)},
		},
		{
			name: "NegativeAmount",
			params: ledger.CreateParams{
				Date:   date(2024, time.May, 1),
				Amount: decimal.NewFromInt(-10),
			},
		},
		{
			name: "UnknownType",
			params: ledger.CreateParams{
				Date:   date(2024, time.May, 1),
				Amount: decimal.NewFromInt(10),
				Type:   ledger.Type("transfer"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tt.params)

			var vErr *ledger.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestService_AddInstallments(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := ledger.NewMockStore(ctrl)

	for _, key := range []string{"2024-01", "2024-02", "2024-03"} {
		store.EXPECT().CreatePartition(gomock.Any(), key).Return(nil)
		store.EXPECT().AppendRecord(gomock.Any(), key, gomock.Any()).Return(nil)
	}

	svc := newService(t, store, staticMethods{})

	created, err := svc.AddInstallments(context.Background(), ledger.CreateParams{
		Date:   date(2024, time.January, 15),
		Amount: decimal.NewFromInt(300),
		Note:   "new phone",
	}, 3)
	require.NoError(t, err)
	require.Len(t, created, 3)

	for i, tx := range created {
		assert.NotEmpty(t, tx.ID)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)), "installment %d", i)
	}
}
