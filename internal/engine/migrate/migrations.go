package migrate

import (
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/period"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// resolverFor builds the period resolver from the household pay schedule.
// Households that predate paycheck tracking anchor on their start date.
func resolverFor(snap *domain.Snapshot) (period.Resolver, domain.DateKey) {
	anchor := snap.Household.LastPaycheckDate
	if anchor.IsZero() {
		anchor = snap.Household.StartDate
	}
	return period.New(snap.Household.PayFrequency), anchor
}

// backfillPayPeriods tags historical transactions and buckets that were
// created before period tracking existed. Untagged transactions are
// invisible to the spend aggregator, so this runs before any bucket math
// can be trusted.
func backfillPayPeriods() Migration {
	needsTx := func(tx domain.Transaction) bool { return tx.PayPeriodID == domain.PeriodUnassigned }
	needsBucket := func(b domain.BudgetBucket) bool { return b.CurrentPeriodID == domain.PeriodUnassigned }

	return Migration{
		Name: "backfill-pay-periods",
		Needs: func(snap *domain.Snapshot) bool {
			_, anchor := resolverFor(snap)
			if anchor.IsZero() {
				return false // nothing to anchor on yet
			}
			for _, tx := range snap.Transactions {
				if needsTx(tx) {
					return true
				}
			}
			for _, b := range snap.Buckets {
				if needsBucket(b) {
					return true
				}
			}
			return false
		},
		Apply: func(snap *domain.Snapshot, now time.Time) []mutation.Mutation {
			r, anchor := resolverFor(snap)
			if anchor.IsZero() {
				return nil
			}
			var muts []mutation.Mutation
			for _, tx := range snap.Transactions {
				if !needsTx(tx) {
					continue
				}
				if id := r.Resolve(tx.Date, anchor); id != domain.PeriodUnassigned {
					tx.PayPeriodID = id
					muts = append(muts, mutation.Put(domain.ColTransactions, tx.ID, tx))
				}
			}
			for _, b := range snap.Buckets {
				if !needsBucket(b) {
					continue
				}
				date := b.LastResetDate
				if date.IsZero() {
					date = domain.NewDateKey(now)
				}
				if id := r.Resolve(date, anchor); id != domain.PeriodUnassigned {
					b.CurrentPeriodID = id
					muts = append(muts, mutation.Put(domain.ColBuckets, b.ID, b))
				}
			}
			return muts
		},
	}
}

// monthKeyed reports the legacy YYYY-MM period id shape.
func monthKeyed(id domain.PeriodID) bool {
	if len(id) != 7 {
		return false
	}
	_, err := time.Parse("2006-01", string(id))
	return err == nil
}

// paycheckKeyedPeriods rewrites legacy month-keyed period ids to
// paycheck-keyed ones, re-deriving each id from the record's own date.
func paycheckKeyedPeriods() Migration {
	return Migration{
		Name: "paycheck-keyed-periods",
		Needs: func(snap *domain.Snapshot) bool {
			for _, tx := range snap.Transactions {
				if monthKeyed(tx.PayPeriodID) {
					return true
				}
			}
			for _, b := range snap.Buckets {
				if monthKeyed(b.CurrentPeriodID) {
					return true
				}
			}
			return false
		},
		Apply: func(snap *domain.Snapshot, now time.Time) []mutation.Mutation {
			r, anchor := resolverFor(snap)
			var muts []mutation.Mutation
			for _, tx := range snap.Transactions {
				if !monthKeyed(tx.PayPeriodID) {
					continue
				}
				tx.PayPeriodID = r.Resolve(tx.Date, anchor)
				muts = append(muts, mutation.Put(domain.ColTransactions, tx.ID, tx))
			}
			for _, b := range snap.Buckets {
				if !monthKeyed(b.CurrentPeriodID) {
					continue
				}
				date := b.LastResetDate
				if date.IsZero() {
					date = domain.NewDateKey(now)
				}
				b.CurrentPeriodID = r.Resolve(date, anchor)
				muts = append(muts, mutation.Put(domain.ColBuckets, b.ID, b))
			}
			return muts
		},
	}
}

// freezeBankV2 upgrades the legacy freeze record (a bare counter and a
// last-use date) to the token/history schema. The legacy balance carries
// over capped at the new maximum; the upgrade itself is the first history
// entry.
func freezeBankV2() Migration {
	return Migration{
		Name: "freeze-bank-v2",
		Needs: func(snap *domain.Snapshot) bool {
			return snap.FreezeBank == nil
		},
		Apply: func(snap *domain.Snapshot, now time.Time) []mutation.Mutation {
			tokens := 0
			if snap.LegacyFreeze != nil {
				tokens = snap.LegacyFreeze.Freezes
			}
			if tokens > domain.DefaultMaxTokens {
				tokens = domain.DefaultMaxTokens
			}
			if tokens < 0 {
				tokens = 0
			}
			bank := domain.FreezeBank{
				Tokens:    tokens,
				MaxTokens: domain.DefaultMaxTokens,
				History: []domain.FreezeEvent{{
					ID:     "migration-freeze-bank-v2",
					Kind:   domain.FreezeGrant,
					Tokens: tokens,
					At:     now,
				}},
			}
			return []mutation.Mutation{mutation.Put(domain.ColFreezeBank, domain.ColFreezeBank, bank)}
		},
	}
}
