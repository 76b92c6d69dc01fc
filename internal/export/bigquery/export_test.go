package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dkravets/hearthledger/internal/domain"
)

func TestTransactionRows(t *testing.T) {
	snap := &domain.Snapshot{
		Household: domain.Household{ID: "house-1"},
		Transactions: []domain.Transaction{
			{ID: "t1", Amount: 42.5, Merchant: "Corner Shop", Category: "Groceries",
				Date: "2024-06-10", Status: domain.TxVerified, PayPeriodID: "2024-06-01",
				CreatedAt: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)},
			{ID: "t2", Amount: 5, Date: "not-a-date"},
		},
	}

	rows := TransactionRows(snap)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (bad date skipped)", len(rows))
	}
	row := rows[0]
	if row.TransactionID != "t1" || row.HouseholdID != "house-1" {
		t.Errorf("ids = %s/%s", row.TransactionID, row.HouseholdID)
	}
	if row.TxDate != (civil.Date{Year: 2024, Month: 6, Day: 10}) {
		t.Errorf("date = %v", row.TxDate)
	}
	if !row.CreatedTS.Valid {
		t.Error("created_ts should be set")
	}
}

func TestTransactionsSince(t *testing.T) {
	snap := &domain.Snapshot{
		Transactions: []domain.Transaction{
			{ID: "old", Date: "2024-06-01"},
			{ID: "cutoff", Date: "2024-06-10"},
			{ID: "new", Date: "2024-06-11"},
		},
	}

	got := TransactionsSince(snap, civil.Date{Year: 2024, Month: 6, Day: 10})
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "new" {
		t.Errorf("filtered = %+v, want only the entry after the cutoff", got.Transactions)
	}
	if len(snap.Transactions) != 3 {
		t.Error("filtering mutated the source snapshot")
	}
}

func TestCompletionRows_ReplaysPointsAndStreak(t *testing.T) {
	snap := &domain.Snapshot{
		Household: domain.Household{ID: "house-1"},
		Habits: []domain.Habit{
			{ID: "h1", Name: "Dishes", Type: domain.HabitPositive,
				ScoringType: domain.ScoringThreshold, Period: domain.PeriodDaily,
				BasePoints: 10, TargetCount: 1,
				CompletedDates: []domain.DateKey{"2024-06-12", "2024-06-11", "2024-06-10"}},
		},
	}

	rows := CompletionRows(snap)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	// Rows follow CompletedDates order: most recent first. The third day of
	// the run earned 15 at streak 3; the first earned 10 at streak 1.
	if rows[0].Points != 15 || rows[0].Streak != 3 {
		t.Errorf("latest day: points=%d streak=%d, want 15/3", rows[0].Points, rows[0].Streak)
	}
	if rows[2].Points != 10 || rows[2].Streak != 1 {
		t.Errorf("first day: points=%d streak=%d, want 10/1", rows[2].Points, rows[2].Streak)
	}
}
