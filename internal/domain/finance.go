package domain

import "time"

// PeriodID identifies a pay period by the date (YYYY-MM-DD) of the paycheck
// that opened it.
type PeriodID string

// PeriodUnassigned marks records that predate pay-period tracking.
const PeriodUnassigned PeriodID = ""

// AccountType distinguishes the account kinds known to the ledger.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCredit   AccountType = "credit"
)

// Account is a household money account. Balance is signed and only ever
// moved by ledger-affecting operations, never by the scoring engine.
type Account struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         AccountType `json:"type"`
	Balance      float64     `json:"balance"`
	MonthlyGoal  *float64    `json:"monthly_goal,omitempty"`
	DisplayOrder int         `json:"display_order"`
}

// BudgetBucket is a named spending category with a per-period limit. Spent
// amounts are never stored on the bucket; they are derived from tagged
// transactions every time.
type BudgetBucket struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Limit           float64  `json:"limit"`
	IsVariable      bool     `json:"is_variable"`
	IsCore          bool     `json:"is_core"`
	CurrentPeriodID PeriodID `json:"current_period_id"`
	LastResetDate   DateKey  `json:"last_reset_date"`
}

// TransactionStatus is the review state of a captured transaction.
type TransactionStatus string

const (
	TxVerified      TransactionStatus = "verified"
	TxPendingReview TransactionStatus = "pending_review"
)

// Transaction is one ledger entry. Amount is a positive magnitude; the
// category links it to a bucket by name. Verified transactions are immutable
// except for correction edits, which re-derive PayPeriodID from the date.
type Transaction struct {
	ID              string            `json:"id"`
	Amount          float64           `json:"amount"`
	Merchant        string            `json:"merchant"`
	Category        string            `json:"category"`
	Date            DateKey           `json:"date"`
	Status          TransactionStatus `json:"status"`
	PayPeriodID     PeriodID          `json:"pay_period_id"`
	IsRecurring     bool              `json:"is_recurring"`
	AutoCategorized bool              `json:"auto_categorized"`
	CreatedBy       string            `json:"created_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
