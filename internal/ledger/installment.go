package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TagInstallment marks transactions produced by installment expansion.
const TagInstallment = "#installment"

// ExpandInstallments splits one entry into count drafts, one calendar month
// apart starting at params.Date, each carrying amount/count rounded half-up
// to the cent. The per-installment rounding is not reconciled back to the
// original amount, so the drafts may sum to a few cents more or less than it.
//
// Each draft derives its own cash-flow date from its shifted date, gets an
// "(i/N)" note suffix and the #installment tag. Drafts carry no id;
// persistence is the caller's responsibility.
func ExpandInstallments(params CreateParams, count int, method PaymentMethod) []Transaction {
	if count < 1 {
		count = 1
	}

	monthly := params.Amount.DivRound(decimal.NewFromInt(int64(count)), 2)

	drafts := make([]Transaction, count)
	for i := range drafts {
		date := addMonths(params.Date, i)
		cashFlow, _ := ComputeCashFlow(date, method)

		drafts[i] = Transaction{
			Date:          date,
			CashFlowDate:  cashFlow,
			Type:          params.Type,
			Category:      params.Category,
			Amount:        monthly,
			PaymentMethod: params.PaymentMethod,
			Tags:          appendTag(params.Tags, TagInstallment),
			Note:          strings.TrimSpace(fmt.Sprintf("%s (%d/%d)", params.Note, i+1, count)),
		}
	}

	return drafts
}

func appendTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}

	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)

	return append(out, tag)
}
