// Package settings holds the typed application configuration that lives in
// the store's reserved settings partition: category lists, per-month budgets,
// subscription templates and payment-method billing cycles. The sectioned
// key/value rows are parsed once per load; anything missing or malformed
// degrades to a hard-coded default instead of failing.
package settings

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yhhuang/moneybook/internal/ledger"
)

// Recognized sections of the settings store.
const (
	SectionCategories   = "categories"
	SectionBudget       = "budget"
	SectionSubscription = "subscription"
	SectionSystem       = "system"
)

// Keys within the categories and system sections.
const (
	KeyExpenseCategories = "expense"
	KeyIncomeCategories  = "income"
	KeyPaymentMethods    = "payment_methods"
	KeyAdminPassword     = "admin_password"
)

// Entry is one row of the sectioned key/value settings store.
type Entry struct {
	Section string
	Key     string
	Value   string
}

// Subscription is a recurring transaction stencil, not an instance. Name is
// the unique key.
type Subscription struct {
	Name          string          `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	Note          string          `json:"note"`
}

// Settings is the parsed configuration.
type Settings struct {
	ExpenseCategories []string
	IncomeCategories  []string
	Budgets           map[string]decimal.Decimal
	Subscriptions     []Subscription
	PaymentMethods    map[string]ledger.PaymentMethod
	AdminPassword     string
}

type paymentMethodJSON struct {
	CutoffDay    int    `json:"cutoff_day"`
	GapDays      int    `json:"gap_days"`
	DisplayColor string `json:"display_color"`
}

// Defaults is what every load starts from and what the application runs on
// when the settings partition is missing or unreadable.
func Defaults() *Settings {
	return &Settings{
		ExpenseCategories: []string{
			"food", "transport", "entertainment", "shopping", "housing",
			"medical", "investment", "pets", "education", "other",
		},
		IncomeCategories: []string{"salary", "bonus", "interest", "other"},
		Budgets:          map[string]decimal.Decimal{},
		PaymentMethods: map[string]ledger.PaymentMethod{
			"cash": {CutoffDay: 0, GapDays: 0, DisplayColor: "#8d99ae"},
		},
		AdminPassword: "moneybook",
	}
}

// parse folds settings rows over the defaults. Rows it cannot make sense of
// are logged and skipped, never fatal.
func parse(entries []Entry, log zerolog.Logger) *Settings {
	s := Defaults()

	for _, e := range entries {
		switch e.Section {
		case SectionCategories:
			switch e.Key {
			case KeyExpenseCategories:
				s.ExpenseCategories = splitList(e.Value)
			case KeyIncomeCategories:
				s.IncomeCategories = splitList(e.Value)
			}

		case SectionBudget:
			amount, err := decimal.NewFromString(e.Value)
			if err != nil {
				log.Warn().Str("month", e.Key).Str("value", e.Value).Msg("skipping malformed budget")
				continue
			}

			s.Budgets[e.Key] = amount

		case SectionSubscription:
			var sub Subscription
			if err := json.Unmarshal([]byte(e.Value), &sub); err != nil {
				log.Warn().Str("template", e.Key).Err(err).Msg("skipping malformed subscription template")
				continue
			}

			sub.Name = e.Key
			s.Subscriptions = append(s.Subscriptions, sub)

		case SectionSystem:
			switch e.Key {
			case KeyAdminPassword:
				if e.Value != "" {
					s.AdminPassword = e.Value
				}
			case KeyPaymentMethods:
				var methods map[string]paymentMethodJSON
				if err := json.Unmarshal([]byte(e.Value), &methods); err != nil {
					log.Warn().Err(err).Msg("skipping malformed payment method map")
					continue
				}

				for name, m := range methods {
					s.PaymentMethods[name] = ledger.PaymentMethod{
						CutoffDay:    m.CutoffDay,
						GapDays:      m.GapDays,
						DisplayColor: m.DisplayColor,
					}
				}
			}
		}
	}

	return s
}

func splitList(s string) []string {
	var out []string

	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
