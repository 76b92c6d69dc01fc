package domain

// PayFrequency is how often the household is paid. It drives pay-period
// resolution together with the last known paycheck date.
type PayFrequency string

const (
	PayMonthly     PayFrequency = "monthly"
	PaySemimonthly PayFrequency = "semimonthly"
	PayBiweekly    PayFrequency = "biweekly"
	PayWeekly      PayFrequency = "weekly"
)

// Household is the settings record every engine operation keys off.
type Household struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	StartDate        DateKey         `json:"start_date"`
	LastPaycheckDate DateKey         `json:"last_paycheck_date"`
	PayFrequency     PayFrequency    `json:"pay_frequency"`
	Points           HouseholdPoints `json:"points"`
}

// Snapshot is an immutable view of one household's documents, read in a
// single pass from the store. Engine functions take a snapshot (or a slice
// of it) plus an explicit "now" and return mutations; they never read
// ambient state or a wall clock.
type Snapshot struct {
	Household     Household
	Accounts      []Account
	Buckets       []BudgetBucket
	Transactions  []Transaction
	CalendarItems []CalendarItem
	Habits        []Habit
	Submissions   []HabitSubmission
	FreezeBank    *FreezeBank
	LegacyFreeze  *LegacyFreezeBank
	Challenges    []Challenge
}

// HabitByID returns the habit with the given id, or false when the snapshot
// does not contain it.
func (s *Snapshot) HabitByID(id string) (Habit, bool) {
	for _, h := range s.Habits {
		if h.ID == id {
			return h, true
		}
	}
	return Habit{}, false
}

// TransactionByID returns the transaction with the given id.
func (s *Snapshot) TransactionByID(id string) (Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// SubmissionsFor returns the audit submissions of one habit on one date.
func (s *Snapshot) SubmissionsFor(habitID string, date DateKey) []HabitSubmission {
	var out []HabitSubmission
	for _, sub := range s.Submissions {
		if sub.HabitID == habitID && sub.Date == date {
			out = append(out, sub)
		}
	}
	return out
}

// Collection names used by mutations and the stores.
const (
	ColHouseholds   = "households"
	ColAccounts     = "accounts"
	ColBuckets      = "buckets"
	ColTransactions = "transactions"
	ColCalendar     = "calendar_items"
	ColHabits       = "habits"
	ColSubmissions  = "habit_submissions"
	ColFreezeBank   = "freeze_bank"
	ColChallenges   = "challenges"

	// ColLegacyFreeze is the pre-token freeze record, kept readable so the
	// freeze-bank upgrade can migrate it.
	ColLegacyFreeze = "streak_freezes"
)
