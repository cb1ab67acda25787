// Package recurring materializes subscription templates into a target
// month's partition. Generation is idempotent: a template whose canonical
// note already appears among the month's live transactions is skipped, so
// re-running for an already-materialized month adds nothing.
package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/settings"
)

// TagRecurring marks transactions produced from subscription templates.
const TagRecurring = "#recurring"

// Ledger is the slice of the ledger service the generator needs.
type Ledger interface {
	Load(ctx context.Context) (*ledger.Snapshot, error)
	Add(ctx context.Context, params ledger.CreateParams) (*ledger.Transaction, error)
}

// Templates supplies the subscription templates to materialize.
type Templates interface {
	Subscriptions(ctx context.Context) ([]settings.Subscription, error)
}

// Result summarizes one materialization run. One template's insertion
// failure never aborts the batch; it lands in Failed and the run continues.
type Result struct {
	Added   int              `json:"added"`
	Skipped int              `json:"skipped"`
	Failed  []ledger.Failure `json:"failed"`
}

type Service struct {
	ledger    Ledger
	templates Templates
	log       zerolog.Logger
}

func NewService(l Ledger, templates Templates, log zerolog.Logger) *Service {
	return &Service{ledger: l, templates: templates, log: log}
}

// ExpectedNote is the canonical note a materialized template carries. Its
// presence in the target month is the idempotency guard.
func ExpectedNote(sub settings.Subscription) string {
	return fmt.Sprintf("%s (%s)", sub.Name, sub.Note)
}

// Materialize generates one transaction per template into the partition of
// target, skipping templates already present there.
func (s *Service) Materialize(ctx context.Context, target time.Time) (*Result, error) {
	subs, err := s.templates.Subscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading subscription templates: %w", err)
	}

	snapshot, err := s.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	key := ledger.PartitionKey(target)

	existing := make(map[string]struct{})

	for _, row := range snapshot.Rows {
		if !row.Date.IsZero() && ledger.PartitionKey(row.Date) == key {
			existing[row.Note] = struct{}{}
		}
	}

	result := &Result{}

	for _, sub := range subs {
		note := ExpectedNote(sub)

		if _, ok := existing[note]; ok {
			result.Skipped++
			continue
		}

		_, err := s.ledger.Add(ctx, ledger.CreateParams{
			Date:          target,
			Type:          ledger.TypeExpense,
			Category:      sub.Category,
			Amount:        sub.Amount,
			PaymentMethod: sub.PaymentMethod,
			Tags:          []string{TagRecurring},
			Note:          note,
		})
		if err != nil {
			s.log.Warn().Str("template", sub.Name).Err(err).Msg("materialization failed")
			result.Failed = append(result.Failed, ledger.Failure{ID: sub.Name, Reason: err.Error()})

			continue
		}

		result.Added++
	}

	s.log.Info().
		Str("month", key).
		Int("added", result.Added).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Failed)).
		Msg("materialized recurring transactions")

	return result, nil
}
