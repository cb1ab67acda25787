package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yhhuang/moneybook/internal/cache"
	"github.com/yhhuang/moneybook/internal/ledger"
)

// Store is the sectioned key/value settings store contract.
type Store interface {
	ReadAll(ctx context.Context) ([]Entry, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, section, key string) error
}

// Service serves parsed settings from a short-lived cache and writes them
// back entry by entry. Reads never fail: an unreadable store degrades to
// Defaults.
type Service struct {
	store Store
	cache *cache.Cache[*Settings]
	log   zerolog.Logger
}

func NewService(store Store, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		cache: cache.New[*Settings](ttl),
		log:   log,
	}
}

// Load returns the parsed settings, falling back to Defaults when the
// settings partition is missing or unreadable.
func (s *Service) Load(ctx context.Context) (*Settings, error) {
	return s.cache.GetOrFetch(ctx, func(ctx context.Context) (*Settings, error) {
		entries, err := s.store.ReadAll(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("settings unreadable, using defaults")
			return Defaults(), nil
		}

		return parse(entries, s.log), nil
	})
}

// Invalidate drops the cached settings.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}

// Categories returns the configured category list for a transaction type.
func (s *Service) Categories(ctx context.Context, t ledger.Type) ([]string, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	if t == ledger.TypeIncome {
		return cfg.IncomeCategories, nil
	}

	return cfg.ExpenseCategories, nil
}

// PaymentMethods implements ledger.MethodSource.
func (s *Service) PaymentMethods(ctx context.Context) (map[string]ledger.PaymentMethod, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	return cfg.PaymentMethods, nil
}

// Subscriptions returns the recurring transaction templates.
func (s *Service) Subscriptions(ctx context.Context) ([]Subscription, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	return cfg.Subscriptions, nil
}

// AdminPassword returns the configured admin credential.
func (s *Service) AdminPassword(ctx context.Context) (string, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return "", err
	}

	return cfg.AdminPassword, nil
}

// SetBudget stores the budget amount for a month key ("YYYY-MM").
func (s *Service) SetBudget(ctx context.Context, month string, amount decimal.Decimal) error {
	if _, err := ledger.ParsePartitionKey(month); err != nil {
		return fmt.Errorf("invalid month key %q: %w", month, err)
	}

	if err := s.store.Put(ctx, Entry{Section: SectionBudget, Key: month, Value: amount.String()}); err != nil {
		return fmt.Errorf("storing budget: %w", err)
	}

	s.Invalidate()

	return nil
}

// SaveSubscription creates or replaces a subscription template.
func (s *Service) SaveSubscription(ctx context.Context, sub Subscription) error {
	if sub.Name == "" {
		return fmt.Errorf("subscription template needs a name")
	}

	value, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encoding subscription: %w", err)
	}

	if err := s.store.Put(ctx, Entry{Section: SectionSubscription, Key: sub.Name, Value: string(value)}); err != nil {
		return fmt.Errorf("storing subscription: %w", err)
	}

	s.Invalidate()

	return nil
}

// DeleteSubscription removes a subscription template by name.
func (s *Service) DeleteSubscription(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, SectionSubscription, name); err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}

	s.Invalidate()

	return nil
}

// SavePaymentMethod creates or replaces one payment method inside the
// serialized method map.
func (s *Service) SavePaymentMethod(ctx context.Context, name string, method ledger.PaymentMethod) error {
	if name == "" {
		return fmt.Errorf("payment method needs a name")
	}

	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}

	methods := make(map[string]paymentMethodJSON, len(cfg.PaymentMethods)+1)
	for n, m := range cfg.PaymentMethods {
		methods[n] = paymentMethodJSON{CutoffDay: m.CutoffDay, GapDays: m.GapDays, DisplayColor: m.DisplayColor}
	}

	methods[name] = paymentMethodJSON{CutoffDay: method.CutoffDay, GapDays: method.GapDays, DisplayColor: method.DisplayColor}

	value, err := json.Marshal(methods)
	if err != nil {
		return fmt.Errorf("encoding payment methods: %w", err)
	}

	if err := s.store.Put(ctx, Entry{Section: SectionSystem, Key: KeyPaymentMethods, Value: string(value)}); err != nil {
		return fmt.Errorf("storing payment methods: %w", err)
	}

	s.Invalidate()

	return nil
}
