// Package spend derives per-bucket spend and the household safe-to-spend
// figure. Nothing here is stored: bucket "spent" values are recomputed from
// tagged transactions on every call.
package spend

import (
	"github.com/dkravets/hearthledger/internal/domain"
)

// Totals is the split spend of one bucket within one pay period.
type Totals struct {
	Verified float64 `json:"verified"`
	Pending  float64 `json:"pending"`
}

// Spent is everything charged against the bucket this period, regardless
// of review status.
func (t Totals) Spent() float64 { return t.Verified + t.Pending }

// Aggregate sums transaction amounts per bucket for one pay period, split
// by review status. A transaction counts toward a bucket when its category
// equals the bucket name and its pay period id equals periodID.
//
// Transactions with no pay period id are skipped: they are legacy records
// and belong to the migration runner, not to display math. Single pass over
// buckets then transactions, so O(buckets + transactions).
func Aggregate(buckets []domain.BudgetBucket, transactions []domain.Transaction, periodID domain.PeriodID) map[string]Totals {
	byCategory := make(map[string]string, len(buckets))
	out := make(map[string]Totals, len(buckets))
	for _, b := range buckets {
		byCategory[b.Name] = b.ID
		out[b.ID] = Totals{}
	}

	for _, tx := range transactions {
		if tx.PayPeriodID == domain.PeriodUnassigned || tx.PayPeriodID != periodID {
			continue
		}
		bucketID, ok := byCategory[tx.Category]
		if !ok {
			continue
		}
		t := out[bucketID]
		switch tx.Status {
		case domain.TxVerified:
			t.Verified += tx.Amount
		case domain.TxPendingReview:
			t.Pending += tx.Amount
		}
		out[bucketID] = t
	}
	return out
}
