package habits

import (
	"fmt"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// ResetResult is the outcome of an explicit, user-initiated reset.
type ResetResult struct {
	Habit       domain.Habit
	PointsDelta int
	Mutations   []mutation.Mutation
}

// Reset wipes the habit's progress for the current period: the period's
// completion date is removed, the streak is recomputed from the remaining
// set, and exactly the points that completion contributed are reversed:
// from the audit submissions when they exist, otherwise recomputed at the
// streak the award was made at. A stale habit already sitting at count=0
// resets as a no-op apart from the freshness timestamp.
func Reset(h domain.Habit, subs []domain.HabitSubmission, now time.Time, householdID string) (ResetResult, error) {
	if err := CheckIntegrity(h); err != nil {
		return ResetResult{}, fmt.Errorf("reset habit %s: %w", h.ID, err)
	}

	date, completed := completionInPeriod(h, now)
	if !completed {
		// Nothing earned this period: only the freshness timestamp moves.
		h.Count = 0
		h.LastUpdated = now
		return ResetResult{
			Habit:     h,
			Mutations: []mutation.Mutation{mutation.Put(domain.ColHabits, h.ID, h)},
		}, nil
	}

	delta := 0
	var subMuts []mutation.Mutation
	var periodSubs []domain.HabitSubmission
	for _, s := range subs {
		if s.HabitID == h.ID && s.Date == date {
			periodSubs = append(periodSubs, s)
		}
	}
	if len(periodSubs) > 0 {
		// The audit trail knows exactly what was awarded.
		for _, s := range periodSubs {
			delta -= s.PointsEarned
			subMuts = append(subMuts, mutation.Delete(domain.ColSubmissions, s.ID))
		}
	} else {
		// Recompute at the streak the award was made at: the completion
		// set still contains the date being removed.
		per := award(h, CalculateStreak(h.CompletedDates, h.Period))
		units := 1
		if h.ScoringType == domain.ScoringIncremental && h.Count > 1 {
			units = h.Count
		}
		delta = -per * units
	}

	progress := h.Count
	h.Count = 0
	h.TotalCount -= progress
	if h.TotalCount < 0 {
		h.TotalCount = 0
	}
	h.CompletedDates = withoutDate(h.CompletedDates, date)
	h.StreakDays = CalculateStreak(h.CompletedDates, h.Period)
	h.LastUpdated = now

	muts := []mutation.Mutation{mutation.Put(domain.ColHabits, h.ID, h)}
	muts = append(muts, subMuts...)
	muts = append(muts, pointMutations(householdID, date, delta, now)...)

	return ResetResult{Habit: h, PointsDelta: delta, Mutations: muts}, nil
}
