package habits

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// Direction is the user's toggle gesture.
type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
)

// ErrUnknownDirection is returned for a toggle that is neither up nor down.
var ErrUnknownDirection = errors.New("unknown toggle direction")

// ToggleResult is everything one toggle changed. Habit is the updated copy;
// Mutations carries the habit write, the submission audit record when
// requested, and the household counter increments, to be applied as one
// atomic unit.
type ToggleResult struct {
	Habit       domain.Habit
	PointsDelta int
	Completed   bool // the toggle brought a threshold habit to its target
	NoOp        bool
	Mutations   []mutation.Mutation
}

// Toggle advances the per-habit state machine by one up or down gesture.
//
// Up on a fresh or partial habit advances the counter; a threshold habit
// awards once when count first reaches the target, an incremental habit
// awards per unit. Down decrements and reverses the most recent award. A
// stale habit is first treated as fresh on up (counter zeroed, no
// clawback) and hard-reset with no point change on down.
//
// submissionID, when non-empty, records a HabitSubmission audit row for
// any point-bearing toggle so the exact award can be reversed later. A
// reversing down toggle retires the period's audit row in the same batch:
// it reverses the row's recorded award and deletes it, so the completion
// history and the audit trail always replay to the same totals.
func Toggle(h domain.Habit, subs []domain.HabitSubmission, dir Direction, now time.Time, householdID, memberID, submissionID string) (ToggleResult, error) {
	if dir != DirUp && dir != DirDown {
		return ToggleResult{}, fmt.Errorf("toggle habit %s: %w: %q", h.ID, ErrUnknownDirection, dir)
	}
	if err := CheckIntegrity(h); err != nil {
		return ToggleResult{}, fmt.Errorf("toggle habit %s: %w", h.ID, err)
	}

	today := domain.NewDateKey(now)

	if IsStale(h, now) {
		if dir == DirDown {
			// Stale down: zero the counter, keep every point already
			// earned. Deliberate product behavior, not a bug.
			h.Count = 0
			h.LastUpdated = now
			return ToggleResult{
				Habit:     h,
				Mutations: []mutation.Mutation{mutation.Put(domain.ColHabits, h.ID, h)},
			}, nil
		}
		// Stale up: the old period's progress is gone; start fresh.
		h.Count = 0
	}

	if dir == DirUp {
		return toggleUp(h, today, now, householdID, memberID, submissionID), nil
	}
	return toggleDown(h, subs, today, now, householdID), nil
}

func toggleUp(h domain.Habit, today domain.DateKey, now time.Time, householdID, memberID, submissionID string) ToggleResult {
	target := h.TargetCount
	if target <= 0 {
		target = 1
	}

	if h.ScoringType == domain.ScoringThreshold && h.Count >= target {
		return ToggleResult{Habit: h, NoOp: true}
	}

	h.Count++
	h.TotalCount++
	h.LastUpdated = now

	var delta int
	completed := false
	switch h.ScoringType {
	case domain.ScoringIncremental:
		h.CompletedDates = withDate(h.CompletedDates, today)
		h.StreakDays = CalculateStreak(h.CompletedDates, h.Period)
		delta = award(h, h.StreakDays)
	default: // threshold
		if h.Count == target {
			h.CompletedDates = withDate(h.CompletedDates, today)
			h.StreakDays = CalculateStreak(h.CompletedDates, h.Period)
			delta = award(h, h.StreakDays)
			completed = true
		}
	}

	muts := []mutation.Mutation{mutation.Put(domain.ColHabits, h.ID, h)}
	if delta != 0 && submissionID != "" {
		muts = append(muts, mutation.Put(domain.ColSubmissions, submissionID, domain.HabitSubmission{
			ID:           submissionID,
			HabitID:      h.ID,
			Date:         today,
			Timestamp:    now,
			Count:        1,
			PointsEarned: delta,
			StreakAt:     h.StreakDays,
			MultiplierAt: Multiplier(h.StreakDays),
			MemberID:     memberID,
		}))
	}
	muts = append(muts, pointMutations(householdID, today, delta, now)...)

	return ToggleResult{Habit: h, PointsDelta: delta, Completed: completed, Mutations: muts}
}

func toggleDown(h domain.Habit, subs []domain.HabitSubmission, today domain.DateKey, now time.Time, householdID string) ToggleResult {
	if h.Count == 0 {
		return ToggleResult{Habit: h, NoOp: true}
	}

	target := h.TargetCount
	if target <= 0 {
		target = 1
	}

	// For weekly habits this period's completion may be dated earlier in
	// the week; that is the date a down toggle removes.
	removeDate := today
	if d, ok := completionInPeriod(h, now); ok {
		removeDate = d
	}

	var delta int
	switch h.ScoringType {
	case domain.ScoringIncremental:
		// Reverse the most recent per-unit award. The streak still
		// includes this period's date, so this recomputes exactly what
		// the unit earned.
		delta = -award(h, CalculateStreak(h.CompletedDates, h.Period))
		h.Count--
		h.TotalCount--
		if h.Count == 0 {
			h.CompletedDates = withoutDate(h.CompletedDates, removeDate)
			h.StreakDays = CalculateStreak(h.CompletedDates, h.Period)
		}
	default: // threshold
		wasCompleted := h.Count >= target
		h.Count--
		h.TotalCount--
		if wasCompleted && h.Count < target {
			// Dropping back below target undoes the single award this
			// period, computed at the streak that included its date.
			delta = -award(h, CalculateStreak(h.CompletedDates, h.Period))
			h.CompletedDates = withoutDate(h.CompletedDates, removeDate)
			h.StreakDays = CalculateStreak(h.CompletedDates, h.Period)
		}
	}
	if h.TotalCount < 0 {
		h.TotalCount = 0
	}
	h.LastUpdated = now

	var subMuts []mutation.Mutation
	if delta != 0 {
		// When the award left an audit row, reverse exactly what it
		// recorded and retire it, so reconciliation cannot replay the
		// reversed points back into the cache.
		if s, ok := latestSubmission(subs, h.ID, removeDate); ok {
			delta = -s.PointsEarned
			subMuts = append(subMuts, mutation.Delete(domain.ColSubmissions, s.ID))
		}
	}

	muts := []mutation.Mutation{mutation.Put(domain.ColHabits, h.ID, h)}
	muts = append(muts, subMuts...)
	muts = append(muts, pointMutations(householdID, removeDate, delta, now)...)

	return ToggleResult{Habit: h, PointsDelta: delta, Mutations: muts}
}

// latestSubmission returns the most recent audit row for the habit on the
// given date, if one exists.
func latestSubmission(subs []domain.HabitSubmission, habitID string, date domain.DateKey) (domain.HabitSubmission, bool) {
	var best domain.HabitSubmission
	found := false
	for _, s := range subs {
		if s.HabitID != habitID || s.Date != date {
			continue
		}
		if !found || best.Timestamp.Before(s.Timestamp) {
			best = s
			found = true
		}
	}
	return best, found
}

// completionInPeriod returns the completion date recorded inside the
// habit's current period, if any.
func completionInPeriod(h domain.Habit, now time.Time) (domain.DateKey, bool) {
	start := domain.NewDateKey(PeriodStart(h.Period, now))
	today := domain.NewDateKey(now)
	for _, d := range h.CompletedDates {
		if !d.Before(start) && !today.Before(d) {
			return d, true
		}
	}
	return "", false
}

// pointMutations translates a point delta into household counter
// increments. The total always moves; the daily and weekly counters move
// only when the completion date falls in the current day or week.
func pointMutations(householdID string, date domain.DateKey, delta int, now time.Time) []mutation.Mutation {
	if delta == 0 {
		return nil
	}
	muts := []mutation.Mutation{
		mutation.Increment(domain.ColHouseholds, householdID, domain.FieldPointsTotal, delta),
	}
	if date == domain.NewDateKey(now) {
		muts = append(muts, mutation.Increment(domain.ColHouseholds, householdID, domain.FieldPointsDaily, delta))
	}
	if t, err := date.Time(); err == nil && domain.SameWeek(t, now) {
		muts = append(muts, mutation.Increment(domain.ColHouseholds, householdID, domain.FieldPointsWeekly, delta))
	}
	return muts
}
