package ledger

import "time"

// LabelImmediate is the billing label for methods that settle on the
// transaction date itself.
const LabelImmediate = "immediate"

// ComputeCashFlow derives the cash-flow date and billing-cycle label for a
// transaction date under the given payment method.
//
// CutoffDay 0 settles immediately. Otherwise the transaction belongs to the
// cycle closing on CutoffDay: in the transaction's own month when the day is
// on or before the cutoff, in the next month when it is after. The billing
// date is that month's cutoff day (clamped to the month's last day when the
// cutoff does not exist, e.g. day 31 in February) plus GapDays.
func ComputeCashFlow(date time.Time, method PaymentMethod) (time.Time, string) {
	if method.CutoffDay == 0 {
		return date, LabelImmediate
	}

	year, month, day := date.Date()
	if day > method.CutoffDay {
		month++
	}

	billing := time.Date(year, month, clampDay(year, month, method.CutoffDay),
		0, 0, 0, 0, date.Location())

	return billing.AddDate(0, 0, method.GapDays), billing.Format(partitionKeyLayout)
}

// clampDay limits day to the last day of the given month. The month may be
// out of the 1..12 range; time.Date normalizes it.
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}

	return day
}

// addMonths shifts a date by whole calendar months, clamping the day to the
// target month's last day (Jan 31 + 1 month = Feb 29/28, not Mar 2/3).
func addMonths(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	month += time.Month(months)

	return time.Date(year, month, clampDay(year, month, day),
		0, 0, 0, 0, date.Location())
}
