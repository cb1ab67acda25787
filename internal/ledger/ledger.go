package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// SettingsPartition is the partition reserved for configuration. The snapshot
// loader never treats it as a transaction partition.
const SettingsPartition = "app_settings"

// Transaction represents a single ledger entry. The id is opaque and
// immutable once created; CashFlowDate is derived from Date and the payment
// method's billing cycle and is re-derived on every write.
type Transaction struct {
	ID            string
	Date          time.Time
	CashFlowDate  time.Time
	Type          Type
	Category      string
	Amount        decimal.Decimal
	PaymentMethod string
	Tags          []string
	Note          string
}

// PaymentMethod describes a payment method's billing cycle. CutoffDay 0 means
// immediate settlement (cash, bank transfer).
type PaymentMethod struct {
	CutoffDay    int
	GapDays      int
	DisplayColor string
}

// ErrNotFound is returned when a record addressed by id no longer exists in
// the store.
var ErrNotFound = errors.New("record not found")

// ValidationError rejects a row before any store call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Record is the raw field map crossing the store boundary. Absent fields are
// the reader's problem; Decode backfills them.
type Record map[string]string

// Field names shared by every store backend.
const (
	FieldID            = "id"
	FieldDate          = "date"
	FieldCashFlowDate  = "cash_flow_date"
	FieldType          = "type"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldPaymentMethod = "payment_method"
	FieldTags          = "tags"
	FieldNote          = "note"
)

// Fields is the canonical column order for tabular backends.
var Fields = []string{
	FieldID, FieldDate, FieldCashFlowDate, FieldType, FieldCategory,
	FieldAmount, FieldPaymentMethod, FieldTags, FieldNote,
}

// Encode serializes a transaction into a raw record.
func Encode(tx *Transaction) Record {
	return Record{
		FieldID:            tx.ID,
		FieldDate:          formatDate(tx.Date),
		FieldCashFlowDate:  formatDate(tx.CashFlowDate),
		FieldType:          string(tx.Type),
		FieldCategory:      tx.Category,
		FieldAmount:        tx.Amount.String(),
		FieldPaymentMethod: tx.PaymentMethod,
		FieldTags:          strings.Join(tx.Tags, ","),
		FieldNote:          tx.Note,
	}
}

// Decode turns a raw record into a transaction, tolerating older or partial
// rows: a missing cash-flow date falls back to the transaction date, a
// missing type defaults to expense, a malformed amount becomes 0 and a
// malformed date becomes the zero time (excluded from date-dependent logic
// downstream). This is a compatibility shim, not validation.
func Decode(rec Record) Transaction {
	tx := Transaction{
		ID:            rec[FieldID],
		Date:          parseDate(rec[FieldDate]),
		Type:          TypeExpense,
		Category:      rec[FieldCategory],
		Amount:        parseAmount(rec[FieldAmount]),
		PaymentMethod: rec[FieldPaymentMethod],
		Tags:          splitTags(rec[FieldTags]),
		Note:          rec[FieldNote],
	}

	if t := Type(rec[FieldType]); t == TypeIncome || t == TypeExpense {
		tx.Type = t
	}

	tx.CashFlowDate = parseDate(rec[FieldCashFlowDate])
	if tx.CashFlowDate.IsZero() {
		tx.CashFlowDate = tx.Date
	}

	return tx
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}

	return t
}

func parseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}

func splitTags(s string) []string {
	var tags []string

	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}
