package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkravets/hearthledger/internal/api/middleware"
	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/spend"
	"github.com/dkravets/hearthledger/internal/store"
)

// DashboardHandler serves the aggregated household view.
type DashboardHandler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(st store.Store, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{store: st, log: log, now: time.Now}
}

// bucketView is one budget bucket with its derived spend totals.
type bucketView struct {
	Bucket    domain.BudgetBucket `json:"bucket"`
	Spent     float64             `json:"spent"`
	Verified  float64             `json:"verified"`
	Pending   float64             `json:"pending"`
	Remaining float64             `json:"remaining"`
}

// GetDashboard handles GET /api/dashboard
//
// An optional date query parameter pins the reference date; the default is
// today. Every figure is derived on read: bucket spend from tagged
// transactions, safe-to-spend from checking balances minus unpaid bills.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	refDate := domain.NewDateKey(h.now())
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := domain.ParseDateKey(q)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		refDate = parsed
	}

	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}

	resolver, anchor := paycheckAnchor(snap.Household)
	periodID := resolver.Resolve(refDate, anchor)
	start, end, boundsErr := resolver.Bounds(periodID)

	totals := spend.Aggregate(snap.Buckets, snap.Transactions, periodID)
	buckets := make([]bucketView, 0, len(snap.Buckets))
	for _, b := range snap.Buckets {
		t := totals[b.ID]
		buckets = append(buckets, bucketView{
			Bucket:    b,
			Spent:     t.Spent(),
			Verified:  t.Verified,
			Pending:   t.Pending,
			Remaining: b.Limit - t.Spent(),
		})
	}

	sts := spend.SafeToSpend(snap.Accounts, snap.CalendarItems, resolver, periodID)

	resp := map[string]interface{}{
		"date":          refDate,
		"period_id":     periodID,
		"buckets":       buckets,
		"safe_to_spend": sts,
		"points":        snap.Household.Points,
	}
	if boundsErr == nil {
		resp["period_start"] = start
		resp["period_end"] = end
	}
	if snap.FreezeBank != nil {
		resp["freeze_tokens"] = snap.FreezeBank.Tokens
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
