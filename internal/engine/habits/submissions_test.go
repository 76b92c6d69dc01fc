package habits

import (
	"errors"
	"testing"

	"github.com/dkravets/hearthledger/internal/domain"
)

func TestAddSubmission_AwardsPerUnit(t *testing.T) {
	h := dailyThreshold()
	h.ScoringType = domain.ScoringIncremental
	now := at("2024-06-10 09:00")

	res, err := AddSubmission(h, 3, now, hh, "m1", "sub-1")
	if err != nil {
		t.Fatalf("AddSubmission: %v", err)
	}
	if res.PointsDelta != 30 {
		t.Errorf("delta = %d, want 30 (3 units at 1.0x)", res.PointsDelta)
	}
	if res.Submission.PointsEarned != 30 || res.Submission.Count != 3 {
		t.Errorf("submission: %+v", res.Submission)
	}
	if res.Habit.Count != 3 || res.Habit.TotalCount != 3 {
		t.Errorf("habit counts: %+v", res.Habit)
	}
}

func TestAddSubmission_RejectsNonPositiveCount(t *testing.T) {
	if _, err := AddSubmission(dailyThreshold(), 0, at("2024-06-10 09:00"), hh, "m1", "s"); err == nil {
		t.Error("count 0 should be rejected")
	}
}

func TestRemoveSubmission_ReversesRecordedPoints(t *testing.T) {
	h := dailyThreshold()
	h.ScoringType = domain.ScoringIncremental
	now := at("2024-06-10 09:00")

	added, _ := AddSubmission(h, 2, now, hh, "m1", "sub-1")

	res, err := RemoveSubmission(added.Habit, added.Submission, nil, now, hh)
	if err != nil {
		t.Fatalf("RemoveSubmission: %v", err)
	}
	if res.PointsDelta != -20 {
		t.Errorf("delta = %d, want -20 (exactly what was recorded)", res.PointsDelta)
	}
	if res.Habit.Count != 0 || res.Habit.HasCompleted("2024-06-10") {
		t.Errorf("habit after removal: %+v", res.Habit)
	}
}

func TestRemoveSubmission_KeepsDateWhenOtherSubmissionsRemain(t *testing.T) {
	h := dailyThreshold()
	h.ScoringType = domain.ScoringIncremental
	now := at("2024-06-10 09:00")

	first, _ := AddSubmission(h, 1, now, hh, "m1", "sub-1")
	second, _ := AddSubmission(first.Habit, 1, now, hh, "m1", "sub-2")

	remaining := []domain.HabitSubmission{first.Submission, second.Submission}
	res, err := RemoveSubmission(second.Habit, second.Submission, remaining, now, hh)
	if err != nil {
		t.Fatalf("RemoveSubmission: %v", err)
	}
	if !res.Habit.HasCompleted("2024-06-10") {
		t.Error("date should stay completed while another submission covers it")
	}
	if res.Habit.Count != 1 {
		t.Errorf("count = %d, want 1", res.Habit.Count)
	}
}

func TestRemoveSubmission_HistoricalLeavesCounterAlone(t *testing.T) {
	h := dailyThreshold()
	h.ScoringType = domain.ScoringIncremental
	h.Count = 1
	h.TotalCount = 5
	h.CompletedDates = []domain.DateKey{"2024-06-10", "2024-06-03"}
	h.StreakDays = 1

	old := domain.HabitSubmission{ID: "old", HabitID: h.ID, Date: "2024-06-03", Count: 1, PointsEarned: 10}
	res, err := RemoveSubmission(h, old, nil, at("2024-06-10 12:00"), hh)
	if err != nil {
		t.Fatalf("RemoveSubmission: %v", err)
	}
	if res.Habit.Count != 1 {
		t.Errorf("current-period counter moved on a historical removal: %d", res.Habit.Count)
	}
	if res.Habit.TotalCount != 4 {
		t.Errorf("total = %d, want 4", res.Habit.TotalCount)
	}
	if res.Habit.HasCompleted("2024-06-03") {
		t.Error("historical date should be removed")
	}
}

func TestRemoveSubmission_WrongHabit(t *testing.T) {
	sub := domain.HabitSubmission{ID: "s", HabitID: "other"}
	_, err := RemoveSubmission(dailyThreshold(), sub, nil, at("2024-06-10 12:00"), hh)
	if !errors.Is(err, ErrSubmissionMismatch) {
		t.Errorf("want ErrSubmissionMismatch, got %v", err)
	}
}
