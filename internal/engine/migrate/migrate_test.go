package migrate

import (
	"testing"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

// applyMuts folds put mutations back into the snapshot so tests can check
// the needs-after-apply contract without a store.
func applyMuts(snap *domain.Snapshot, muts []mutation.Mutation) {
	for _, m := range muts {
		if m.Kind != mutation.KindPut {
			continue
		}
		switch m.Collection {
		case domain.ColTransactions:
			tx := m.Doc.(domain.Transaction)
			for i := range snap.Transactions {
				if snap.Transactions[i].ID == m.ID {
					snap.Transactions[i] = tx
				}
			}
		case domain.ColBuckets:
			b := m.Doc.(domain.BudgetBucket)
			for i := range snap.Buckets {
				if snap.Buckets[i].ID == m.ID {
					snap.Buckets[i] = b
				}
			}
		case domain.ColFreezeBank:
			bank := m.Doc.(domain.FreezeBank)
			snap.FreezeBank = &bank
		}
	}
}

func monthlyHousehold() domain.Household {
	return domain.Household{
		ID:               "house-1",
		LastPaycheckDate: "2024-06-01",
		PayFrequency:     domain.PayMonthly,
	}
}

func TestBackfillPayPeriods_TagsByDate(t *testing.T) {
	snap := &domain.Snapshot{
		Household: monthlyHousehold(),
		Transactions: []domain.Transaction{
			{ID: "t1", Date: "2024-06-10"},
			{ID: "t2", Date: "2024-05-20", PayPeriodID: "2024-05-01"},
		},
		Buckets: []domain.BudgetBucket{
			{ID: "b1", LastResetDate: "2024-06-01"},
		},
	}
	m := backfillPayPeriods()
	if !m.Needs(snap) {
		t.Fatal("untagged records should need the backfill")
	}

	muts := m.Apply(snap, at("2024-06-15 09:00"))
	if len(muts) != 2 {
		t.Fatalf("want 2 mutations (t1 and b1), got %d", len(muts))
	}
	applyMuts(snap, muts)

	tx, _ := snap.TransactionByID("t1")
	if tx.PayPeriodID != "2024-06-01" {
		t.Errorf("t1 period = %q, want 2024-06-01", tx.PayPeriodID)
	}
	tx2, _ := snap.TransactionByID("t2")
	if tx2.PayPeriodID != "2024-05-01" {
		t.Errorf("already-tagged t2 changed: %q", tx2.PayPeriodID)
	}
	if snap.Buckets[0].CurrentPeriodID != "2024-06-01" {
		t.Errorf("bucket period = %q, want 2024-06-01", snap.Buckets[0].CurrentPeriodID)
	}
	if m.Needs(snap) {
		t.Error("backfill still needed after apply")
	}
}

func TestBackfillPayPeriods_NoAnchor(t *testing.T) {
	snap := &domain.Snapshot{
		Household:    domain.Household{ID: "house-1"},
		Transactions: []domain.Transaction{{ID: "t1", Date: "2024-06-10"}},
	}
	if backfillPayPeriods().Needs(snap) {
		t.Error("a household with no paycheck or start date has nothing to anchor on")
	}
}

func TestPaycheckKeyedPeriods_RewritesMonthIDs(t *testing.T) {
	snap := &domain.Snapshot{
		Household: monthlyHousehold(),
		Transactions: []domain.Transaction{
			{ID: "t1", Date: "2024-06-10", PayPeriodID: "2024-06"},
			{ID: "t2", Date: "2024-06-12", PayPeriodID: "2024-06-01"},
		},
		Buckets: []domain.BudgetBucket{
			{ID: "b1", CurrentPeriodID: "2024-05", LastResetDate: "2024-05-03"},
		},
	}
	m := paycheckKeyedPeriods()
	if !m.Needs(snap) {
		t.Fatal("month-keyed ids should need the rewrite")
	}

	muts := m.Apply(snap, at("2024-06-15 09:00"))
	applyMuts(snap, muts)

	tx, _ := snap.TransactionByID("t1")
	if tx.PayPeriodID != "2024-06-01" {
		t.Errorf("t1 period = %q, want paycheck-keyed 2024-06-01", tx.PayPeriodID)
	}
	tx2, _ := snap.TransactionByID("t2")
	if tx2.PayPeriodID != "2024-06-01" {
		t.Errorf("paycheck-keyed t2 changed: %q", tx2.PayPeriodID)
	}
	if snap.Buckets[0].CurrentPeriodID != "2024-05-01" {
		t.Errorf("bucket period = %q, want 2024-05-01", snap.Buckets[0].CurrentPeriodID)
	}
	if m.Needs(snap) {
		t.Error("rewrite still needed after apply")
	}
}

func TestFreezeBankV2_CarriesLegacyBalance(t *testing.T) {
	tests := []struct {
		name       string
		legacy     *domain.LegacyFreezeBank
		wantTokens int
	}{
		{"no legacy record", nil, 0},
		{"balance carries over", &domain.LegacyFreezeBank{Freezes: 2}, 2},
		{"balance capped at max", &domain.LegacyFreezeBank{Freezes: 7}, domain.DefaultMaxTokens},
		{"negative balance clamped", &domain.LegacyFreezeBank{Freezes: -1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &domain.Snapshot{Household: monthlyHousehold(), LegacyFreeze: tt.legacy}
			m := freezeBankV2()
			if !m.Needs(snap) {
				t.Fatal("missing bank should need the upgrade")
			}
			applyMuts(snap, m.Apply(snap, at("2024-06-15 09:00")))

			if snap.FreezeBank == nil {
				t.Fatal("no bank created")
			}
			if snap.FreezeBank.Tokens != tt.wantTokens {
				t.Errorf("tokens = %d, want %d", snap.FreezeBank.Tokens, tt.wantTokens)
			}
			if snap.FreezeBank.MaxTokens != domain.DefaultMaxTokens {
				t.Errorf("max = %d, want %d", snap.FreezeBank.MaxTokens, domain.DefaultMaxTokens)
			}
			if len(snap.FreezeBank.History) != 1 {
				t.Errorf("history entries = %d, want the upgrade entry only", len(snap.FreezeBank.History))
			}
			if m.Needs(snap) {
				t.Error("upgrade still needed after apply")
			}
		})
	}
}

// A second runner pass over migrated state must apply nothing.
func TestRun_Converges(t *testing.T) {
	snap := &domain.Snapshot{
		Household: monthlyHousehold(),
		Transactions: []domain.Transaction{
			{ID: "t1", Date: "2024-06-10"},
			{ID: "t2", Date: "2024-05-20", PayPeriodID: "2024-05"},
		},
		LegacyFreeze: &domain.LegacyFreezeBank{Freezes: 1},
	}
	now := at("2024-06-15 09:00")

	first := Run(snap, now)
	if len(first.Applied) != 3 {
		t.Fatalf("first pass applied %v, want all three", first.Applied)
	}
	applyMuts(snap, first.Mutations)

	second := Run(snap, now)
	if len(second.Applied) != 0 {
		t.Errorf("second pass applied %v, want none", second.Applied)
	}
	if len(second.Skipped) != 3 {
		t.Errorf("second pass skipped %v, want all three", second.Skipped)
	}
}
