package bigquery

import (
	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// TransactionRow is one ledger entry flattened for the warehouse.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	HouseholdID   string `bigquery:"household_id"`   // REQUIRED

	Merchant    string  `bigquery:"merchant"`      // NULLABLE
	Category    string  `bigquery:"category"`      // NULLABLE
	Amount      float64 `bigquery:"amount"`        // REQUIRED
	Status      string  `bigquery:"status"`        // NULLABLE
	PayPeriodID string  `bigquery:"pay_period_id"` // NULLABLE

	TxDate    civil.Date             `bigquery:"tx_date"`    // DATE, REQUIRED
	CreatedTS bigquery.NullTimestamp `bigquery:"created_ts"` // TIMESTAMP, NULLABLE
}

// CompletionRow is one habit completion with the points it earned, replayed
// from the completion history at export time.
type CompletionRow struct {
	HabitID     string `bigquery:"habit_id"`     // REQUIRED
	HouseholdID string `bigquery:"household_id"` // REQUIRED

	HabitName string     `bigquery:"habit_name"` // NULLABLE
	HabitType string     `bigquery:"habit_type"` // NULLABLE
	Date      civil.Date `bigquery:"date"`       // DATE, REQUIRED
	Points    int64      `bigquery:"points"`     // INTEGER, NULLABLE
	Streak    int64      `bigquery:"streak"`     // INTEGER, NULLABLE
}
