package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/settings"
)

type Handler struct {
	svc *settings.Service
	log zerolog.Logger
}

func NewHandler(svc *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/budget/{month}", h.setBudget)
	r.Put("/subscriptions/{name}", h.saveSubscription)
	r.Delete("/subscriptions/{name}", h.deleteSubscription)
	r.Put("/payment-methods/{name}", h.savePaymentMethod)
}

type paymentMethodPayload struct {
	CutoffDay    int    `json:"cutoff_day"`
	GapDays      int    `json:"gap_days"`
	DisplayColor string `json:"display_color"`
}

type subscriptionPayload struct {
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	Note          string          `json:"note"`
}

// settingsResponse deliberately leaves the admin credential out.
type settingsResponse struct {
	ExpenseCategories []string                        `json:"expense_categories"`
	IncomeCategories  []string                        `json:"income_categories"`
	Budgets           map[string]decimal.Decimal      `json:"budgets"`
	Subscriptions     map[string]subscriptionPayload  `json:"subscriptions"`
	PaymentMethods    map[string]paymentMethodPayload `json:"payment_methods"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := settingsResponse{
		ExpenseCategories: cfg.ExpenseCategories,
		IncomeCategories:  cfg.IncomeCategories,
		Budgets:           cfg.Budgets,
		Subscriptions:     make(map[string]subscriptionPayload, len(cfg.Subscriptions)),
		PaymentMethods:    make(map[string]paymentMethodPayload, len(cfg.PaymentMethods)),
	}

	for _, sub := range cfg.Subscriptions {
		resp.Subscriptions[sub.Name] = subscriptionPayload{
			Amount:        sub.Amount,
			Category:      sub.Category,
			PaymentMethod: sub.PaymentMethod,
			Note:          sub.Note,
		}
	}

	for name, m := range cfg.PaymentMethods {
		resp.PaymentMethods[name] = paymentMethodPayload{
			CutoffDay:    m.CutoffDay,
			GapDays:      m.GapDays,
			DisplayColor: m.DisplayColor,
		}
	}

	h.writeJSON(w, resp)
}

type setBudgetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) setBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.SetBudget(r.Context(), chi.URLParam(r, "month"), req.Amount); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub := settings.Subscription{
		Name:          chi.URLParam(r, "name"),
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	}

	if err := h.svc.SaveSubscription(r.Context(), sub); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSubscription(r.Context(), chi.URLParam(r, "name")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) savePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	method := ledger.PaymentMethod{
		CutoffDay:    req.CutoffDay,
		GapDays:      req.GapDays,
		DisplayColor: req.DisplayColor,
	}

	if err := h.svc.SavePaymentMethod(r.Context(), chi.URLParam(r, "name"), method); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}
