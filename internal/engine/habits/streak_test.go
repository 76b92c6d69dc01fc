package habits

import (
	"math/rand"
	"testing"

	"github.com/dkravets/hearthledger/internal/domain"
)

func TestMultiplier(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0}, {1, 1.0}, {2, 1.0},
		{3, 1.5}, {4, 1.5}, {6, 1.5},
		{7, 2.0}, {8, 2.0}, {100, 2.0},
	}
	for _, tt := range tests {
		if got := Multiplier(tt.streak); got != tt.want {
			t.Errorf("Multiplier(%d) = %v, want %v", tt.streak, got, tt.want)
		}
	}
}

func TestCalculateStreak(t *testing.T) {
	tests := []struct {
		name   string
		dates  []domain.DateKey
		period domain.HabitPeriod
		want   int
	}{
		{
			name: "empty set", dates: nil, period: domain.PeriodDaily, want: 0,
		},
		{
			name:   "single completion",
			dates:  []domain.DateKey{"2024-06-10"},
			period: domain.PeriodDaily,
			want:   1,
		},
		{
			name:   "three consecutive days",
			dates:  []domain.DateKey{"2024-06-10", "2024-06-09", "2024-06-08"},
			period: domain.PeriodDaily,
			want:   3,
		},
		{
			name:   "gap breaks the run",
			dates:  []domain.DateKey{"2024-06-10", "2024-06-09", "2024-06-06", "2024-06-05"},
			period: domain.PeriodDaily,
			want:   2,
		},
		{
			name:   "unsorted input is sorted first",
			dates:  []domain.DateKey{"2024-06-08", "2024-06-10", "2024-06-09"},
			period: domain.PeriodDaily,
			want:   3,
		},
		{
			name:   "duplicates collapse",
			dates:  []domain.DateKey{"2024-06-10", "2024-06-10", "2024-06-09"},
			period: domain.PeriodDaily,
			want:   2,
		},
		{
			name:   "weekly tolerates seven day gaps",
			dates:  []domain.DateKey{"2024-06-17", "2024-06-10", "2024-06-03"},
			period: domain.PeriodWeekly,
			want:   3,
		},
		{
			name:   "weekly eight day gap breaks",
			dates:  []domain.DateKey{"2024-06-18", "2024-06-10"},
			period: domain.PeriodWeekly,
			want:   1,
		},
		{
			name:   "unparsable dates are ignored",
			dates:  []domain.DateKey{"2024-06-10", "garbage", "2024-06-09"},
			period: domain.PeriodDaily,
			want:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateStreak(tt.dates, tt.period); got != tt.want {
				t.Errorf("CalculateStreak(%v) = %d, want %d", tt.dates, got, tt.want)
			}
		})
	}
}

// A gapless run of any length must come back as its exact length,
// regardless of input order.
func TestCalculateStreak_ContiguousProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := domain.DateKey("2024-01-01")

	for i := 0; i < 50; i++ {
		n := 1 + rng.Intn(40)
		dates := make([]domain.DateKey, 0, n)
		for j := 0; j < n; j++ {
			dates = append(dates, start.AddDays(j))
		}
		rng.Shuffle(len(dates), func(a, b int) { dates[a], dates[b] = dates[b], dates[a] })

		if got := CalculateStreak(dates, domain.PeriodDaily); got != n {
			t.Fatalf("run of %d days: streak = %d", n, got)
		}
	}
}
