package habits

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// ErrSubmissionMismatch is returned when a submission does not belong to
// the habit it is being removed from.
var ErrSubmissionMismatch = errors.New("submission does not belong to habit")

// SubmissionResult is the outcome of logging or removing one audit-tracked
// habit entry.
type SubmissionResult struct {
	Habit       domain.Habit
	Submission  domain.HabitSubmission
	PointsDelta int
	Mutations   []mutation.Mutation
}

// AddSubmission logs count units against an incremental habit in one audit
// record. The award is computed once at the post-insert streak and stored
// on the submission, so a later edit or delete reverses exactly this
// amount.
func AddSubmission(h domain.Habit, count int, now time.Time, householdID, memberID, submissionID string) (SubmissionResult, error) {
	if err := CheckIntegrity(h); err != nil {
		return SubmissionResult{}, fmt.Errorf("submit habit %s: %w", h.ID, err)
	}
	if count <= 0 {
		return SubmissionResult{}, fmt.Errorf("submit habit %s: count must be positive, got %d", h.ID, count)
	}

	if IsStale(h, now) {
		h.Count = 0
	}

	today := domain.NewDateKey(now)
	h.Count += count
	h.TotalCount += count
	h.CompletedDates = withDate(h.CompletedDates, today)
	h.StreakDays = CalculateStreak(h.CompletedDates, h.Period)
	h.LastUpdated = now

	delta := award(h, h.StreakDays) * count
	sub := domain.HabitSubmission{
		ID:           submissionID,
		HabitID:      h.ID,
		Date:         today,
		Timestamp:    now,
		Count:        count,
		PointsEarned: delta,
		StreakAt:     h.StreakDays,
		MultiplierAt: Multiplier(h.StreakDays),
		MemberID:     memberID,
	}

	muts := []mutation.Mutation{
		mutation.Put(domain.ColHabits, h.ID, h),
		mutation.Put(domain.ColSubmissions, sub.ID, sub),
	}
	muts = append(muts, pointMutations(householdID, today, delta, now)...)

	return SubmissionResult{Habit: h, Submission: sub, PointsDelta: delta, Mutations: muts}, nil
}

// RemoveSubmission deletes one audit entry and reverses exactly the points
// it recorded. remaining must be the habit's other submissions, used to
// decide whether the submission's date still counts as completed.
func RemoveSubmission(h domain.Habit, sub domain.HabitSubmission, remaining []domain.HabitSubmission, now time.Time, householdID string) (SubmissionResult, error) {
	if sub.HabitID != h.ID {
		return SubmissionResult{}, fmt.Errorf("remove submission %s: %w", sub.ID, ErrSubmissionMismatch)
	}
	if err := CheckIntegrity(h); err != nil {
		return SubmissionResult{}, fmt.Errorf("remove submission %s: %w", sub.ID, err)
	}

	delta := -sub.PointsEarned

	// The counter only tracks the current period; historical removals
	// leave it alone.
	start := domain.NewDateKey(PeriodStart(h.Period, now))
	if !sub.Date.Before(start) {
		h.Count -= sub.Count
		if h.Count < 0 {
			h.Count = 0
		}
	}
	h.TotalCount -= sub.Count
	if h.TotalCount < 0 {
		h.TotalCount = 0
	}

	stillCompleted := false
	for _, other := range remaining {
		if other.ID != sub.ID && other.HabitID == h.ID && other.Date == sub.Date {
			stillCompleted = true
			break
		}
	}
	if !stillCompleted {
		h.CompletedDates = withoutDate(h.CompletedDates, sub.Date)
	}
	h.StreakDays = CalculateStreak(h.CompletedDates, h.Period)
	h.LastUpdated = now

	muts := []mutation.Mutation{
		mutation.Put(domain.ColHabits, h.ID, h),
		mutation.Delete(domain.ColSubmissions, sub.ID),
	}
	muts = append(muts, pointMutations(householdID, sub.Date, delta, now)...)

	return SubmissionResult{Habit: h, Submission: sub, PointsDelta: delta, Mutations: muts}, nil
}
