package domain

import "time"

// HabitType marks whether completing the habit is desirable (positive) or a
// lapse being logged (negative). Negative habits subtract points.
type HabitType string

const (
	HabitPositive HabitType = "positive"
	HabitNegative HabitType = "negative"
)

// ScoringType controls when points are awarded.
type ScoringType string

const (
	// ScoringThreshold awards once per period, when count first reaches
	// TargetCount.
	ScoringThreshold ScoringType = "threshold"
	// ScoringIncremental awards per unit logged.
	ScoringIncremental ScoringType = "incremental"
)

// HabitPeriod is the cadence a habit resets on.
type HabitPeriod string

const (
	PeriodDaily  HabitPeriod = "daily"
	PeriodWeekly HabitPeriod = "weekly"
)

// Days returns the period length in days, the maximum gap between
// completions that still counts as a contiguous streak.
func (p HabitPeriod) Days() int {
	if p == PeriodWeekly {
		return 7
	}
	return 1
}

// Habit is one tracked behavior. CompletedDates is held in descending order
// (most recent first). StreakDays is always a pure function of
// CompletedDates; it is recomputed from the full set, never nudged in place.
type Habit struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Type        HabitType   `json:"type"`
	ScoringType ScoringType `json:"scoring_type"`
	Period      HabitPeriod `json:"period"`
	BasePoints  int         `json:"base_points"`
	TargetCount int         `json:"target_count"`

	Count          int       `json:"count"`
	TotalCount     int       `json:"total_count"`
	CompletedDates []DateKey `json:"completed_dates"`
	StreakDays     int       `json:"streak_days"`
	LastUpdated    time.Time `json:"last_updated"`
}

// HasCompleted reports whether the given date is in the completion set.
func (h Habit) HasCompleted(date DateKey) bool {
	for _, d := range h.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

// HabitSubmission is the fine-grained audit record for habits that accept
// multiple log entries per period. Removing a submission must reverse
// exactly PointsEarned, never a recomputed guess.
type HabitSubmission struct {
	ID           string    `json:"id"`
	HabitID      string    `json:"habit_id"`
	Date         DateKey   `json:"date"`
	Timestamp    time.Time `json:"timestamp"`
	Count        int       `json:"count"`
	PointsEarned int       `json:"points_earned"`
	StreakAt     int       `json:"streak_at"`
	MultiplierAt float64   `json:"multiplier_at"`
	MemberID     string    `json:"member_id,omitempty"`
}

// HouseholdPoints is the cached point counters. It is a derived cache of
// the completion history across all habits and is overwritten whenever
// reconciliation finds a disagreement.
type HouseholdPoints struct {
	Daily           int     `json:"daily"`
	Weekly          int     `json:"weekly"`
	Total           int     `json:"total"`
	LastDailyReset  DateKey `json:"last_daily_reset"`
	LastWeeklyReset DateKey `json:"last_weekly_reset"`
}

// Counter field names targeted by atomic increment mutations.
const (
	FieldPointsDaily  = "points.daily"
	FieldPointsWeekly = "points.weekly"
	FieldPointsTotal  = "points.total"
)
