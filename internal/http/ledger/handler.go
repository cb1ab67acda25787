package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/settings"
)

type Handler struct {
	svc      *ledger.Service
	settings *settings.Service
	log      zerolog.Logger
}

func NewHandler(svc *ledger.Service, settings *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, settings: settings, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/snapshot", h.snapshot)
	r.Get("/summary/{month}", h.summary)
	r.Post("/transactions", h.create)
	r.Post("/reconcile", h.reconcile)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshotResponse{Rows: toRows(snapshot.Rows)})
}

type summaryResponse struct {
	Month     string           `json:"month"`
	Expense   decimal.Decimal  `json:"expense"`
	Income    decimal.Decimal  `json:"income"`
	Budget    *decimal.Decimal `json:"budget,omitempty"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if _, err := ledger.ParsePartitionKey(month); err != nil {
		http.Error(w, "invalid month key", http.StatusBadRequest)
		return
	}

	snapshot, err := h.svc.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	expense, income := snapshot.MonthTotals(month)
	resp := summaryResponse{Month: month, Expense: expense, Income: income}

	if cfg, err := h.settings.Load(r.Context()); err == nil {
		if budget, ok := cfg.Budgets[month]; ok {
			remaining := budget.Sub(expense)
			resp.Budget = &budget
			resp.Remaining = &remaining
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type createRequest struct {
	Date          string          `json:"date"`
	Type          ledger.Type     `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Tags          []string        `json:"tags"`
	Note          string          `json:"note"`
	// Installments above 1 expands the entry into that many monthly drafts.
	Installments int `json:"installments"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := ledger.CreateParams{
		Date:          parseDate(req.Date),
		Type:          req.Type,
		Category:      req.Category,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
		Note:          req.Note,
	}

	var (
		created []*ledger.Transaction
		err     error
	)

	if req.Installments > 1 {
		created, err = h.svc.AddInstallments(r.Context(), params, req.Installments)
	} else {
		var tx *ledger.Transaction
		if tx, err = h.svc.Add(r.Context(), params); err == nil {
			created = []*ledger.Transaction{tx}
		}
	}

	if err != nil {
		var vErr *ledger.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	h.writeJSON(w, http.StatusCreated, createResponse{Transactions: toTransactions(created)})
}

type reconcileRequest struct {
	Rows []rowPayload `json:"rows"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	original, err := h.svc.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	edited := make([]ledger.Transaction, len(req.Rows))
	for i, row := range req.Rows {
		edited[i] = row.toTransaction()
	}

	summary, err := h.svc.Reconcile(r.Context(), edited, original)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}
