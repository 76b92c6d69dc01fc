package challenge

import (
	"testing"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
)

func habitWithDates(id string, dates ...domain.DateKey) domain.Habit {
	return domain.Habit{
		ID:             id,
		Type:           domain.HabitPositive,
		ScoringType:    domain.ScoringThreshold,
		Period:         domain.PeriodDaily,
		BasePoints:     10,
		TargetCount:    1,
		CompletedDates: dates,
	}
}

func TestProgress_CountTarget(t *testing.T) {
	c := domain.Challenge{
		ID:          "c1",
		TargetType:  domain.TargetCount,
		TargetValue: 10,
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-30",
		HabitIDs:    []string{"h1", "h2"},
	}
	linked := []domain.Habit{
		habitWithDates("h1", "2024-06-10", "2024-06-09", "2024-05-30"), // one outside window
		habitWithDates("h2", "2024-06-15"),
		habitWithDates("h3", "2024-06-16"), // not linked
	}

	got := Progress(c, linked, time.Now())
	if got.CurrentValue != 3 {
		t.Errorf("current value = %d, want 3", got.CurrentValue)
	}
	if got.ProgressPercent != 30 {
		t.Errorf("percent = %v, want 30", got.ProgressPercent)
	}
}

func TestProgress_PointsTarget(t *testing.T) {
	c := domain.Challenge{
		ID:          "c1",
		TargetType:  domain.TargetPoints,
		TargetValue: 100,
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-30",
		HabitIDs:    []string{"h1"},
	}
	// Three consecutive completions: awards replay as 10, 10, 15.
	linked := []domain.Habit{habitWithDates("h1", "2024-06-12", "2024-06-11", "2024-06-10")}

	got := Progress(c, linked, time.Now())
	if got.CurrentValue != 35 {
		t.Errorf("current value = %d, want 35", got.CurrentValue)
	}
	if got.ProgressPercent != 35 {
		t.Errorf("percent = %v, want 35", got.ProgressPercent)
	}
}

func TestProgress_ClampsAtHundred(t *testing.T) {
	c := domain.Challenge{
		TargetType: domain.TargetCount, TargetValue: 2,
		StartDate: "2024-06-01", EndDate: "2024-06-30",
		HabitIDs: []string{"h1"},
	}
	linked := []domain.Habit{habitWithDates("h1", "2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13")}

	got := Progress(c, linked, time.Now())
	if got.ProgressPercent != 100 {
		t.Errorf("percent = %v, want clamped 100", got.ProgressPercent)
	}
	if got.CurrentValue != 4 {
		t.Errorf("current value = %d, want 4", got.CurrentValue)
	}
}

func TestProgress_ZeroTarget(t *testing.T) {
	c := domain.Challenge{TargetType: domain.TargetCount, StartDate: "2024-06-01", EndDate: "2024-06-30", HabitIDs: []string{"h1"}}
	got := Progress(c, []domain.Habit{habitWithDates("h1", "2024-06-10")}, time.Now())
	if got.ProgressPercent != 0 {
		t.Errorf("zero target should report 0%%, got %v", got.ProgressPercent)
	}
}
