package domain

// ChallengeTargetType selects which habit metric a challenge accumulates.
type ChallengeTargetType string

const (
	TargetCount  ChallengeTargetType = "count"
	TargetPoints ChallengeTargetType = "points"
)

// Challenge is a time-boxed goal summed over linked habits.
type Challenge struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	TargetType  ChallengeTargetType `json:"target_type"`
	TargetValue int                 `json:"target_value"`
	StartDate   DateKey             `json:"start_date"`
	EndDate     DateKey             `json:"end_date"`
	HabitIDs    []string            `json:"habit_ids"`
}

// ChallengeProgress is the derived standing of a challenge.
type ChallengeProgress struct {
	CurrentValue    int     `json:"current_value"`
	ProgressPercent float64 `json:"progress_percent"`
}
