package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yhhuang/moneybook/internal/cache"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=ledger

// Store is the partitioned transaction store contract. One partition holds
// all live transactions of one calendar month. Records cross this boundary as
// raw field maps; absent fields are the caller's problem. Update and delete
// are addressed by (partition, id); FindRecordLocation serves callers that do
// not already know the partition. Implementations may delete hard or soft, as
// long as deleted records stay out of ReadPartition results.
type Store interface {
	ListPartitions(ctx context.Context) ([]string, error)
	ReadPartition(ctx context.Context, key string) ([]Record, error)
	// CreatePartition is idempotent: creating an existing partition is a no-op.
	CreatePartition(ctx context.Context, key string) error
	AppendRecord(ctx context.Context, key string, rec Record) error
	UpdateRecord(ctx context.Context, key, id string, fields Record) error
	DeleteRecord(ctx context.Context, key, id string) error
	FindRecordLocation(ctx context.Context, id string) (string, error)
}

// MethodSource supplies the payment-method billing configuration used to
// derive cash-flow dates.
type MethodSource interface {
	PaymentMethods(ctx context.Context) (map[string]PaymentMethod, error)
}

// Row is a transaction together with the partition it was read from. The
// origin is what move detection compares against.
type Row struct {
	Transaction

	Origin string
}

// Snapshot is the merged view of every transaction partition.
type Snapshot struct {
	Rows []Row
}

// ByID indexes the snapshot rows by id. Rows without an id are skipped.
func (s *Snapshot) ByID() map[string]Row {
	byID := make(map[string]Row, len(s.Rows))

	for _, row := range s.Rows {
		if row.ID != "" {
			byID[row.ID] = row
		}
	}

	return byID
}

// MonthTotals sums expense and income amounts for one month key. Rows whose
// date failed to parse carry a zero date and are excluded.
func (s *Snapshot) MonthTotals(key string) (expense, income decimal.Decimal) {
	for _, row := range s.Rows {
		if row.Date.IsZero() || PartitionKey(row.Date) != key {
			continue
		}

		if row.Type == TypeIncome {
			income = income.Add(row.Amount)
		} else {
			expense = expense.Add(row.Amount)
		}
	}

	return expense, income
}

// Failure reports one row the engine could not converge.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Summary aggregates a reconciliation batch. An empty Failed list signals
// complete-batch success.
type Summary struct {
	Updated int       `json:"updated"`
	Moved   int       `json:"moved"`
	Deleted int       `json:"deleted"`
	Failed  []Failure `json:"failed"`
}

// CreateParams describes one user entry before it becomes a transaction.
type CreateParams struct {
	Date          time.Time
	Type          Type
	Category      string
	Amount        decimal.Decimal
	PaymentMethod string
	Tags          []string
	Note          string
}

func (p CreateParams) validate() error {
	if p.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "missing or malformed"}
	}

	if p.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}

	if p.Type != "" && p.Type != TypeExpense && p.Type != TypeIncome {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", p.Type)}
	}

	return nil
}

// Service loads merged snapshots and reconciles edited copies back into the
// partitioned store.
type Service struct {
	store    Store
	methods  MethodSource
	snapshot *cache.Cache[*Snapshot]
	log      zerolog.Logger
}

func NewService(store Store, methods MethodSource, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		methods:  methods,
		snapshot: cache.New[*Snapshot](ttl),
		log:      log,
	}
}

// Load returns the merged snapshot of all transaction partitions, served from
// a short-lived cache. Every write path invalidates that cache.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	return s.snapshot.GetOrFetch(ctx, s.load)
}

// Invalidate drops the cached snapshot so the next Load re-reads the store.
func (s *Service) Invalidate() {
	s.snapshot.Invalidate()
}

func (s *Service) load(ctx context.Context) (*Snapshot, error) {
	keys, err := s.store.ListPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	sort.Strings(keys)

	snapshot := &Snapshot{}

	for _, key := range keys {
		if key == SettingsPartition {
			continue
		}

		if _, err := ParsePartitionKey(key); err != nil {
			// Not a month partition (scratch sheet, legacy tab). Ignore.
			continue
		}

		records, err := s.store.ReadPartition(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading partition %s: %w", key, err)
		}

		for _, rec := range records {
			snapshot.Rows = append(snapshot.Rows, Row{Transaction: Decode(rec), Origin: key})
		}
	}

	return snapshot, nil
}

// Add validates one entry, derives its cash-flow date and partition, and
// appends it to the store.
func (s *Service) Add(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	method := s.methodFor(ctx, params.PaymentMethod)
	cashFlow, _ := ComputeCashFlow(params.Date, method)

	tx := &Transaction{
		ID:            uuid.NewString(),
		Date:          params.Date,
		CashFlowDate:  cashFlow,
		Type:          params.Type,
		Category:      params.Category,
		Amount:        params.Amount,
		PaymentMethod: params.PaymentMethod,
		Tags:          params.Tags,
		Note:          params.Note,
	}
	if tx.Type == "" {
		tx.Type = TypeExpense
	}

	if err := s.append(ctx, tx); err != nil {
		return nil, err
	}

	s.Invalidate()

	return tx, nil
}

// AddInstallments expands one entry into count monthly installments and
// appends each. On a mid-batch append failure the drafts created so far stay
// in the store and are returned with the error.
func (s *Service) AddInstallments(ctx context.Context, params CreateParams, count int) ([]*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	method := s.methodFor(ctx, params.PaymentMethod)
	drafts := ExpandInstallments(params, count, method)

	created := make([]*Transaction, 0, len(drafts))

	defer func() {
		if len(created) > 0 {
			s.Invalidate()
		}
	}()

	for i := range drafts {
		tx := &drafts[i]
		tx.ID = uuid.NewString()

		if err := s.append(ctx, tx); err != nil {
			return created, fmt.Errorf("installment %d/%d: %w", i+1, len(drafts), err)
		}

		created = append(created, tx)
	}

	return created, nil
}

func (s *Service) append(ctx context.Context, tx *Transaction) error {
	key := PartitionKey(tx.Date)

	if err := s.store.CreatePartition(ctx, key); err != nil {
		return fmt.Errorf("creating partition %s: %w", key, err)
	}

	if err := s.store.AppendRecord(ctx, key, Encode(tx)); err != nil {
		return fmt.Errorf("appending to %s: %w", key, err)
	}

	return nil
}

// Reconcile diffs an edited snapshot against the original one and converges
// the store: deletes for ids that disappeared, in-place updates for changed
// rows staying in their month, append-before-delete moves for rows whose
// edited date crossed a month boundary. Edited rows without an id are
// ignored; grid-level "new row" affordances go through Add instead, so a
// half-filled row cannot turn into an accidental insert.
//
// Every row failure is isolated: recorded in the summary and skipped, never
// aborting the batch. Rows are processed strictly in order, so the
// append-before-delete window of a failed move is bounded to that one row.
func (s *Service) Reconcile(ctx context.Context, edited []Transaction, original *Snapshot) (*Summary, error) {
	summary := &Summary{}

	origByID := original.ByID()

	editedIDs := make(map[string]struct{}, len(edited))

	for _, tx := range edited {
		if tx.ID != "" {
			editedIDs[tx.ID] = struct{}{}
		}
	}

	attempted := false

	defer func() {
		if attempted {
			s.Invalidate()
		}
	}()

	// Deletions first: present originally, absent from the edited copy.
	for _, row := range original.Rows {
		if row.ID == "" {
			continue
		}

		if _, stillThere := editedIDs[row.ID]; stillThere {
			continue
		}

		attempted = true

		if err := s.store.DeleteRecord(ctx, row.Origin, row.ID); err != nil {
			s.fail(summary, row.ID, fmt.Errorf("delete from %s: %w", row.Origin, err))
			continue
		}

		summary.Deleted++
	}

	methods := s.paymentMethods(ctx)

	for _, tx := range edited {
		orig, known := origByID[tx.ID]
		if tx.ID == "" || !known {
			continue
		}

		if !changed(tx, orig.Transaction) {
			continue
		}

		if err := (CreateParams{Date: tx.Date, Amount: tx.Amount, Type: tx.Type}).validate(); err != nil {
			// Rejected before any store call is attempted.
			s.fail(summary, tx.ID, err)
			continue
		}

		cashFlow, _ := ComputeCashFlow(tx.Date, lookupMethod(methods, tx.PaymentMethod))
		tx.CashFlowDate = cashFlow

		newKey := PartitionKey(tx.Date)
		attempted = true

		if newKey == orig.Origin {
			if err := s.store.UpdateRecord(ctx, orig.Origin, tx.ID, Encode(&tx)); err != nil {
				s.fail(summary, tx.ID, fmt.Errorf("update in %s: %w", orig.Origin, err))
				continue
			}

			summary.Updated++

			continue
		}

		if err := s.move(ctx, &tx, orig.Origin, newKey); err != nil {
			s.fail(summary, tx.ID, err)
			continue
		}

		summary.Moved++
	}

	s.log.Info().
		Int("updated", summary.Updated).
		Int("moved", summary.Moved).
		Int("deleted", summary.Deleted).
		Int("failed", len(summary.Failed)).
		Msg("reconciled snapshot")

	return summary, nil
}

// move appends the row to its new partition before deleting it from the old
// one. Append-before-delete cannot silently lose the row, but a delete
// failure after a successful append leaves a duplicate id behind; the failure
// list names it so the operator can re-delete.
func (s *Service) move(ctx context.Context, tx *Transaction, from, to string) error {
	if err := s.store.CreatePartition(ctx, to); err != nil {
		return fmt.Errorf("creating partition %s: %w", to, err)
	}

	if err := s.store.AppendRecord(ctx, to, Encode(tx)); err != nil {
		return fmt.Errorf("append to %s: %w", to, err)
	}

	if err := s.store.DeleteRecord(ctx, from, tx.ID); err != nil {
		return fmt.Errorf("appended to %s but delete from %s failed (duplicate left behind): %w", to, from, err)
	}

	return nil
}

func (s *Service) fail(summary *Summary, id string, err error) {
	s.log.Warn().Str("id", id).Err(err).Msg("row reconciliation failed")
	summary.Failed = append(summary.Failed, Failure{ID: id, Reason: err.Error()})
}

func (s *Service) paymentMethods(ctx context.Context) map[string]PaymentMethod {
	methods, err := s.methods.PaymentMethods(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("payment methods unavailable, assuming immediate settlement")
		return nil
	}

	return methods
}

func (s *Service) methodFor(ctx context.Context, name string) PaymentMethod {
	return lookupMethod(s.paymentMethods(ctx), name)
}

// lookupMethod falls back to immediate settlement for unconfigured methods.
func lookupMethod(methods map[string]PaymentMethod, name string) PaymentMethod {
	if method, ok := methods[name]; ok {
		return method
	}

	return PaymentMethod{}
}

// changed compares every user-editable field. CashFlowDate is derived and
// deliberately not compared.
func changed(edited, original Transaction) bool {
	editedType := edited.Type
	if editedType == "" {
		editedType = TypeExpense
	}

	return !edited.Date.Equal(original.Date) ||
		editedType != original.Type ||
		edited.Category != original.Category ||
		!edited.Amount.Equal(original.Amount) ||
		edited.PaymentMethod != original.PaymentMethod ||
		strings.Join(edited.Tags, ",") != strings.Join(original.Tags, ",") ||
		edited.Note != original.Note
}
