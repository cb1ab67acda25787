package recurring

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/yhhuang/moneybook/internal/ledger"
	"github.com/yhhuang/moneybook/internal/recurring"
)

type Handler struct {
	svc *recurring.Service
	log zerolog.Logger
}

func NewHandler(svc *recurring.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/materialize", h.materialize)
}

type materializeRequest struct {
	Month string `json:"month"`
}

func (h *Handler) materialize(w http.ResponseWriter, r *http.Request) {
	var req materializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target, err := ledger.ParsePartitionKey(req.Month)
	if err != nil {
		http.Error(w, "invalid month key", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Materialize(r.Context(), target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}
