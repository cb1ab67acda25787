package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yhhuang/moneybook/internal/ledger"
)

// rowPayload is a snapshot row on the wire, in both directions: the snapshot
// endpoint emits it and the reconcile endpoint accepts the edited copy back.
type rowPayload struct {
	ID            string          `json:"id,omitempty"`
	Origin        string          `json:"origin,omitempty"`
	Date          string          `json:"date"`
	CashFlowDate  string          `json:"cash_flow_date,omitempty"`
	Type          ledger.Type     `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Tags          []string        `json:"tags,omitempty"`
	Note          string          `json:"note"`
}

type snapshotResponse struct {
	Rows []rowPayload `json:"rows"`
}

type createResponse struct {
	Transactions []rowPayload `json:"transactions"`
}

func (p rowPayload) toTransaction() ledger.Transaction {
	return ledger.Transaction{
		ID:            p.ID,
		Date:          parseDate(p.Date),
		Type:          p.Type,
		Category:      p.Category,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Tags:          p.Tags,
		Note:          p.Note,
	}
}

func toRow(tx ledger.Transaction, origin string) rowPayload {
	return rowPayload{
		ID:            tx.ID,
		Origin:        origin,
		Date:          formatDate(tx.Date),
		CashFlowDate:  formatDate(tx.CashFlowDate),
		Type:          tx.Type,
		Category:      tx.Category,
		Amount:        tx.Amount,
		PaymentMethod: tx.PaymentMethod,
		Tags:          tx.Tags,
		Note:          tx.Note,
	}
}

func toRows(rows []ledger.Row) []rowPayload {
	out := make([]rowPayload, len(rows))
	for i, row := range rows {
		out[i] = toRow(row.Transaction, row.Origin)
	}

	return out
}

func toTransactions(txs []*ledger.Transaction) []rowPayload {
	out := make([]rowPayload, len(txs))
	for i, tx := range txs {
		out[i] = toRow(*tx, ledger.PartitionKey(tx.Date))
	}

	return out
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}
