package habits

import (
	"testing"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

func TestReset_ReversesExactAward(t *testing.T) {
	// 4-day streak, today completed: the award was 15 (1.5x).
	h := dailyThreshold()
	day := at("2024-06-01 08:00")
	for i := 0; i < 4; i++ {
		res, _ := Toggle(h, nil, DirUp, day.AddDate(0, 0, i), hh, "m1", "")
		h = res.Habit
	}

	now := day.AddDate(0, 0, 3)
	res, err := Reset(h, nil, now, hh)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res.PointsDelta != -15 {
		t.Errorf("reset delta = %d, want -15", res.PointsDelta)
	}
	if res.Habit.Count != 0 || res.Habit.HasCompleted("2024-06-04") {
		t.Errorf("reset should remove today's completion: %+v", res.Habit)
	}
	if res.Habit.StreakDays != 3 {
		t.Errorf("streak after reset = %d, want 3", res.Habit.StreakDays)
	}
}

func TestReset_UsesSubmissionAuditWhenPresent(t *testing.T) {
	h := dailyThreshold()
	h.ScoringType = domain.ScoringIncremental
	now := at("2024-06-10 09:00")

	addRes, _ := AddSubmission(h, 2, now, hh, "m1", "sub-1")
	h = addRes.Habit

	subs := []domain.HabitSubmission{addRes.Submission}
	res, err := Reset(h, subs, now, hh)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res.PointsDelta != -addRes.Submission.PointsEarned {
		t.Errorf("reset delta = %d, want -%d from the audit record", res.PointsDelta, addRes.Submission.PointsEarned)
	}

	deleted := false
	for _, m := range res.Mutations {
		if m.Kind == mutation.KindDelete && m.Collection == domain.ColSubmissions && m.ID == "sub-1" {
			deleted = true
		}
	}
	if !deleted {
		t.Error("reset should delete the period's audit submissions")
	}
}

// Scenario from the engine contract: a habit stale since yesterday with
// count already 0 resets as a no-op except for the freshness timestamp.
func TestReset_StaleAtZeroTouchesOnlyTimestamp(t *testing.T) {
	h := dailyThreshold()
	h.Count = 0
	h.TotalCount = 9
	h.StreakDays = 2
	h.CompletedDates = []domain.DateKey{"2024-06-09", "2024-06-08"}
	h.LastUpdated = at("2024-06-09 20:00")

	now := at("2024-06-10 08:00")
	res, err := Reset(h, nil, now, hh)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res.PointsDelta != 0 {
		t.Errorf("stale reset must not move points: delta = %d", res.PointsDelta)
	}
	got := res.Habit
	if got.TotalCount != 9 || got.StreakDays != 2 || len(got.CompletedDates) != 2 {
		t.Errorf("stale reset changed state beyond the timestamp: %+v", got)
	}
	if !got.LastUpdated.Equal(now) {
		t.Errorf("timestamp not refreshed: %v", got.LastUpdated)
	}
	for _, m := range res.Mutations {
		if m.Kind == mutation.KindIncrement {
			t.Errorf("stale reset emitted a counter increment: %+v", m)
		}
	}
}

func TestReset_IncrementalReversesAllUnits(t *testing.T) {
	h := dailyThreshold()
	h.ScoringType = domain.ScoringIncremental
	now := at("2024-06-10 10:00")

	for i := 0; i < 3; i++ {
		res, _ := Toggle(h, nil, DirUp, now, hh, "m1", "")
		h = res.Habit
	}

	res, err := Reset(h, nil, now, hh)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res.PointsDelta != -30 {
		t.Errorf("reset delta = %d, want -30 for three units at 1.0x", res.PointsDelta)
	}
	if res.Habit.TotalCount != 0 || res.Habit.Count != 0 {
		t.Errorf("counts after reset: %+v", res.Habit)
	}
}
