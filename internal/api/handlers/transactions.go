package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkravets/hearthledger/internal/api/middleware"
	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/period"
	"github.com/dkravets/hearthledger/internal/mutation"
	"github.com/dkravets/hearthledger/internal/store"
)

// TransactionsHandler handles ledger entry endpoints.
type TransactionsHandler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(st store.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: st, log: log, now: time.Now}
}

// paycheckAnchor returns the household's period resolver and anchor date.
// Households that predate paycheck tracking anchor on their start date.
func paycheckAnchor(hh domain.Household) (period.Resolver, domain.DateKey) {
	anchor := hh.LastPaycheckDate
	if anchor.IsZero() {
		anchor = hh.StartDate
	}
	return period.New(hh.PayFrequency), anchor
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	txs := snap.Transactions
	if periodID := r.URL.Query().Get("period"); periodID != "" {
		filtered := make([]domain.Transaction, 0, len(txs))
		for _, tx := range txs {
			if tx.PayPeriodID == domain.PeriodID(periodID) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, txs)
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      float64 `json:"amount"`
		Merchant    string  `json:"merchant"`
		Category    string  `json:"category"`
		Date        string  `json:"date"`
		Status      string  `json:"status"`
		IsRecurring bool    `json:"is_recurring"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	date, err := domain.ParseDateKey(req.Date)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	status := domain.TransactionStatus(req.Status)
	if status == "" {
		status = domain.TxPendingReview
	}
	if status != domain.TxVerified && status != domain.TxPendingReview {
		middleware.WriteError(w, http.StatusBadRequest, "status must be verified or pending_review")
		return
	}

	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	resolver, anchor := paycheckAnchor(snap.Household)
	tx := domain.Transaction{
		ID:          uuid.New().String(),
		Amount:      req.Amount,
		Merchant:    req.Merchant,
		Category:    req.Category,
		Date:        date,
		Status:      status,
		PayPeriodID: resolver.Resolve(date, anchor),
		IsRecurring: req.IsRecurring,
		CreatedBy:   middleware.MemberFromContext(ctx),
		CreatedAt:   h.now(),
	}

	if err := h.store.Apply(ctx, []mutation.Mutation{mutation.Put(domain.ColTransactions, tx.ID, tx)}); err != nil {
		h.log.Error().Err(err).Msg("Failed to store transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	h.log.Info().
		Str("transaction_id", tx.ID).
		Str("period", string(tx.PayPeriodID)).
		Float64("amount", tx.Amount).
		Msg("Transaction created")

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// CorrectTransaction handles PUT /api/transactions/{id}
//
// A date edit re-derives the pay period id, so the entry moves between
// periods with its date and bucket aggregation stays consistent.
func (h *TransactionsHandler) CorrectTransaction(w http.ResponseWriter, r *http.Request, transactionID string) {
	var req struct {
		Amount   *float64 `json:"amount"`
		Merchant *string  `json:"merchant"`
		Category *string  `json:"category"`
		Date     *string  `json:"date"`
		Status   *string  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to correct transaction")
		return
	}
	tx, ok := snap.TransactionByID(transactionID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
			return
		}
		tx.Amount = *req.Amount
	}
	if req.Merchant != nil {
		tx.Merchant = *req.Merchant
	}
	if req.Category != nil {
		tx.Category = *req.Category
		tx.AutoCategorized = false
	}
	if req.Status != nil {
		status := domain.TransactionStatus(*req.Status)
		if status != domain.TxVerified && status != domain.TxPendingReview {
			middleware.WriteError(w, http.StatusBadRequest, "status must be verified or pending_review")
			return
		}
		tx.Status = status
	}
	if req.Date != nil {
		date, err := domain.ParseDateKey(*req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		tx.Date = date
		resolver, anchor := paycheckAnchor(snap.Household)
		tx.PayPeriodID = resolver.Resolve(date, anchor)
	}

	if err := h.store.Apply(ctx, []mutation.Mutation{mutation.Put(domain.ColTransactions, tx.ID, tx)}); err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to store correction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to correct transaction")
		return
	}

	h.log.Info().
		Str("transaction_id", tx.ID).
		Str("period", string(tx.PayPeriodID)).
		Msg("Transaction corrected")

	middleware.WriteJSON(w, http.StatusOK, tx)
}
