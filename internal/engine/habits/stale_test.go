package habits

import (
	"testing"

	"github.com/dkravets/hearthledger/internal/domain"
)

func TestIsStale(t *testing.T) {
	now := at("2024-06-12 10:00") // Wednesday

	tests := []struct {
		name    string
		period  domain.HabitPeriod
		updated string
		want    bool
	}{
		{"daily updated today", domain.PeriodDaily, "2024-06-12 01:00", false},
		{"daily updated yesterday", domain.PeriodDaily, "2024-06-11 23:59", true},
		{"weekly updated monday", domain.PeriodWeekly, "2024-06-10 08:00", false},
		{"weekly updated last week", domain.PeriodWeekly, "2024-06-09 23:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := dailyThreshold()
			h.Period = tt.period
			h.LastUpdated = at(tt.updated)
			if got := IsStale(h, now); got != tt.want {
				t.Errorf("IsStale = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("never touched is fresh", func(t *testing.T) {
		if IsStale(dailyThreshold(), now) {
			t.Error("zero LastUpdated must not read as stale")
		}
	})
}

func TestSweepStale(t *testing.T) {
	now := at("2024-06-10 00:05")

	fresh := dailyThreshold()
	fresh.ID = "fresh"
	fresh.Count = 1
	fresh.LastUpdated = at("2024-06-10 00:01")

	stale := dailyThreshold()
	stale.ID = "stale"
	stale.Count = 2
	stale.TotalCount = 8
	stale.LastUpdated = at("2024-06-09 22:00")

	staleAtZero := dailyThreshold()
	staleAtZero.ID = "stale-zero"
	staleAtZero.LastUpdated = at("2024-06-09 22:00")

	corrupt := dailyThreshold()
	corrupt.ID = "corrupt"
	corrupt.Count = 3
	corrupt.CompletedDates = []domain.DateKey{"not-a-date"}
	corrupt.LastUpdated = at("2024-06-01 10:00")

	res := SweepStale([]domain.Habit{fresh, stale, staleAtZero, corrupt}, now)

	if len(res.Reset) != 1 || res.Reset[0] != "stale" {
		t.Errorf("reset ids = %v, want [stale]", res.Reset)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "corrupt" {
		t.Errorf("skipped ids = %v, want [corrupt]", res.Skipped)
	}
	if len(res.Mutations) != 1 {
		t.Fatalf("want exactly one mutation, got %d", len(res.Mutations))
	}
	swept := res.Mutations[0].Doc.(domain.Habit)
	if swept.Count != 0 || swept.TotalCount != 8 {
		t.Errorf("sweep must zero the counter and keep totals: %+v", swept)
	}
}

// Repeated sweeps for the same boundary must be safe: the second run finds
// nothing left to reset.
func TestSweepStale_Idempotent(t *testing.T) {
	now := at("2024-06-10 00:05")
	stale := dailyThreshold()
	stale.ID = "s"
	stale.Count = 2
	stale.LastUpdated = at("2024-06-09 22:00")

	first := SweepStale([]domain.Habit{stale}, now)
	if len(first.Mutations) != 1 {
		t.Fatalf("first sweep should reset, got %d mutations", len(first.Mutations))
	}
	after := first.Mutations[0].Doc.(domain.Habit)

	second := SweepStale([]domain.Habit{after}, now)
	if len(second.Mutations) != 0 {
		t.Errorf("second sweep should be a no-op, got %v", second.Mutations)
	}
}
