package settings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/logger"
	"github.com/yhhuang/moneybook/internal/settings"
	"github.com/yhhuang/moneybook/internal/settings/store/memory"
)

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func newService(t *testing.T, store settings.Store) *settings.Service {
	t.Helper()
	return settings.NewService(store, time.Minute, logger.NewWithWriter(testWriter{t}))
}

func seed(t *testing.T, store *memory.Store, entries ...settings.Entry) {
	t.Helper()

	for _, e := range entries {
		require.NoError(t, store.Put(context.Background(), e))
	}
}

func TestService_Load_ParsesSections(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	seed(t, store,
		settings.Entry{Section: settings.SectionCategories, Key: settings.KeyExpenseCategories, Value: "food, transport ,rent"},
		settings.Entry{Section: settings.SectionBudget, Key: "2024-05", Value: "25000"},
		settings.Entry{Section: settings.SectionSubscription, Key: "spotify", Value: `{"amount":"149","category":"entertainment","note":"family plan"}`},
		settings.Entry{Section: settings.SectionSystem, Key: settings.KeyPaymentMethods, Value: `{"visa":{"cutoff_day":19,"gap_days":15,"display_color":"#2b2d42"}}`},
		settings.Entry{Section: settings.SectionSystem, Key: settings.KeyAdminPassword, Value: "hunter2"},
	)

	svc := newService(t, store)

	cfg, err := svc.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"food", "transport", "rent"}, cfg.ExpenseCategories)
	assert.NotEmpty(t, cfg.IncomeCategories, "untouched sections keep their defaults")

	budget, ok := cfg.Budgets["2024-05"]
	require.True(t, ok)
	assert.True(t, budget.Equal(decimal.NewFromInt(25000)))

	require.Len(t, cfg.Subscriptions, 1)
	sub := cfg.Subscriptions[0]
	assert.Equal(t, "spotify", sub.Name)
	assert.True(t, sub.Amount.Equal(decimal.NewFromInt(149)))
	assert.Equal(t, "family plan", sub.Note)

	visa, ok := cfg.PaymentMethods["visa"]
	require.True(t, ok)
	assert.Equal(t, 19, visa.CutoffDay)
	assert.Equal(t, 15, visa.GapDays)
	_, ok = cfg.PaymentMethods["cash"]
	assert.True(t, ok, "default methods survive alongside configured ones")

	assert.Equal(t, "hunter2", cfg.AdminPassword)
}

func TestService_Load_SkipsMalformedRows(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	seed(t, store,
		settings.Entry{Section: settings.SectionBudget, Key: "2024-05", Value: "not a number"},
		settings.Entry{Section: settings.SectionSubscription, Key: "broken", Value: "{"},
		settings.Entry{Section: settings.SectionSystem, Key: settings.KeyPaymentMethods, Value: "[]"},
		settings.Entry{Section: "unknown_section", Key: "whatever", Value: "x"},
		settings.Entry{Section: settings.SectionBudget, Key: "2024-06", Value: "18000"},
	)

	svc := newService(t, store)

	cfg, err := svc.Load(ctx)
	require.NoError(t, err)

	_, ok := cfg.Budgets["2024-05"]
	assert.False(t, ok, "malformed budget is dropped")

	good, ok := cfg.Budgets["2024-06"]
	require.True(t, ok, "a bad row does not poison the rest")
	assert.True(t, good.Equal(decimal.NewFromInt(18000)))

	assert.Empty(t, cfg.Subscriptions)
	assert.Equal(t, settings.Defaults().PaymentMethods, cfg.PaymentMethods)
}

type unreadableStore struct{}

func (unreadableStore) ReadAll(context.Context) ([]settings.Entry, error) {
	return nil, errors.New("worksheet missing")
}

func (unreadableStore) Put(context.Context, settings.Entry) error { return nil }

func (unreadableStore) Delete(context.Context, string, string) error { return nil }

func TestService_Load_DegradesToDefaults(t *testing.T) {
	svc := newService(t, unreadableStore{})

	cfg, err := svc.Load(context.Background())
	require.NoError(t, err, "an unreadable store is not a load failure")

	assert.Equal(t, settings.Defaults(), cfg)

	password, err := svc.AdminPassword(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "moneybook", password)
}

func TestService_SetBudget(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(t, store)

	// Prime the cache so the test proves writes invalidate it.
	before, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, before.Budgets)

	require.NoError(t, svc.SetBudget(ctx, "2024-05", decimal.NewFromInt(25000)))

	after, err := svc.Load(ctx)
	require.NoError(t, err)

	budget, ok := after.Budgets["2024-05"]
	require.True(t, ok, "write must invalidate the cached settings")
	assert.True(t, budget.Equal(decimal.NewFromInt(25000)))

	err = svc.SetBudget(ctx, "May 2024", decimal.NewFromInt(1))
	assert.Error(t, err, "budget keys are month keys")
}

func TestService_SaveAndDeleteSubscription(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(t, store)

	sub := settings.Subscription{
		Name:     "gym",
		Amount:   decimal.NewFromInt(800),
		Category: "health",
		Note:     "monthly",
	}

	require.NoError(t, svc.SaveSubscription(ctx, sub))

	subs, err := svc.Subscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "gym", subs[0].Name)
	assert.True(t, subs[0].Amount.Equal(decimal.NewFromInt(800)))

	// Saving again under the same name replaces, not duplicates.
	sub.Amount = decimal.NewFromInt(900)
	require.NoError(t, svc.SaveSubscription(ctx, sub))

	subs, err = svc.Subscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Amount.Equal(decimal.NewFromInt(900)))

	require.NoError(t, svc.DeleteSubscription(ctx, "gym"))

	subs, err = svc.Subscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	assert.Error(t, svc.SaveSubscription(ctx, settings.Subscription{}), "nameless template rejected")
}

func TestService_SavePaymentMethod(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(t, store)

	visa := ledger.PaymentMethod{CutoffDay: 19, GapDays: 15, DisplayColor: "#2b2d42"}
	require.NoError(t, svc.SavePaymentMethod(ctx, "visa", visa))

	methods, err := svc.PaymentMethods(ctx)
	require.NoError(t, err)
	assert.Equal(t, visa, methods["visa"])
	assert.Contains(t, methods, "cash", "existing methods survive the read-modify-write")

	// Overwrite in place.
	visa.GapDays = 20
	require.NoError(t, svc.SavePaymentMethod(ctx, "visa", visa))

	methods, err = svc.PaymentMethods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, methods["visa"].GapDays)
}
