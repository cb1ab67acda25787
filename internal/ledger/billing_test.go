package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yhhuang/moneybook/internal/ledger"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeCashFlow_ImmediateSettlement(t *testing.T) {
	cash := ledger.PaymentMethod{CutoffDay: 0, GapDays: 0}

	dates := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.February, 29),
		date(2024, time.December, 31),
	}

	for _, d := range dates {
		cashFlow, label := ledger.ComputeCashFlow(d, cash)

		assert.True(t, cashFlow.Equal(d), "cash flow date should equal transaction date for %s", d)
		assert.Equal(t, ledger.LabelImmediate, label)
	}
}

func TestComputeCashFlow_BillingCycle(t *testing.T) {
	type testCase struct {
		name         string
		date         time.Time
		method       ledger.PaymentMethod
		wantCashFlow time.Time
		wantLabel    string
	}

	tests := []testCase{
		{
			name:         "AfterCutoffRollsToNextMonth",
			date:         date(2024, time.May, 20),
			method:       ledger.PaymentMethod{CutoffDay: 19, GapDays: 15},
			wantCashFlow: date(2024, time.July, 4),
			wantLabel:    "2024-06",
		},
		{
			name:         "OnOrBeforeCutoffStaysInMonth",
			date:         date(2024, time.May, 10),
			method:       ledger.PaymentMethod{CutoffDay: 19, GapDays: 15},
			wantCashFlow: date(2024, time.June, 3),
			wantLabel:    "2024-05",
		},
		{
			name:         "CutoffDayExactlyStaysInMonth",
			date:         date(2024, time.May, 19),
			method:       ledger.PaymentMethod{CutoffDay: 19, GapDays: 15},
			wantCashFlow: date(2024, time.June, 3),
			wantLabel:    "2024-05",
		},
		{
			name:         "CutoffClampedToLeapFebruary",
			date:         date(2024, time.February, 10),
			method:       ledger.PaymentMethod{CutoffDay: 31, GapDays: 0},
			wantCashFlow: date(2024, time.February, 29),
			wantLabel:    "2024-02",
		},
		{
			name:         "CutoffClampedToShortFebruary",
			date:         date(2023, time.February, 10),
			method:       ledger.PaymentMethod{CutoffDay: 31, GapDays: 0},
			wantCashFlow: date(2023, time.February, 28),
			wantLabel:    "2023-02",
		},
		{
			name:         "CycleRollsAcrossYearEnd",
			date:         date(2024, time.December, 25),
			method:       ledger.PaymentMethod{CutoffDay: 19, GapDays: 15},
			wantCashFlow: date(2025, time.February, 3),
			wantLabel:    "2025-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cashFlow, label := ledger.ComputeCashFlow(tt.date, tt.method)

			assert.True(t, cashFlow.Equal(tt.wantCashFlow),
				"got %s, want %s", cashFlow, tt.wantCashFlow)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}
