// Package bigquery flattens a household snapshot into warehouse rows for
// the analytics surface: spend history and habit completions.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/habits"
)

const (
	transactionsTable = "transactions"
	completionsTable  = "habit_completions"
)

// Exporter writes snapshot rows into a BigQuery dataset.
type Exporter struct {
	client  *bigquery.Client
	dataset string
}

// NewExporter creates an exporter bound to one project and dataset.
func NewExporter(ctx context.Context, projectID, dataset string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: creating client: %w", err)
	}
	return &Exporter{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (e *Exporter) Close() error {
	return e.client.Close()
}

// ExportTransactions inserts one row per ledger entry.
func (e *Exporter) ExportTransactions(ctx context.Context, snap *domain.Snapshot) (int, error) {
	rows := TransactionRows(snap)
	if len(rows) == 0 {
		return 0, nil
	}
	inserter := e.client.Dataset(e.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("ExportTransactions: inserting rows: %w", err)
	}
	return len(rows), nil
}

// ExportCompletions inserts one row per habit completion date.
func (e *Exporter) ExportCompletions(ctx context.Context, snap *domain.Snapshot) (int, error) {
	rows := CompletionRows(snap)
	if len(rows) == 0 {
		return 0, nil
	}
	inserter := e.client.Dataset(e.dataset).Table(completionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("ExportCompletions: inserting rows: %w", err)
	}
	return len(rows), nil
}

// LastExportedDate returns the most recent transaction date already in the
// warehouse, so incremental runs only insert newer rows. ok is false when
// the table is empty.
func (e *Exporter) LastExportedDate(ctx context.Context) (last civil.Date, ok bool, err error) {
	q := e.client.Query(fmt.Sprintf(
		"SELECT MAX(tx_date) AS last FROM `%s.%s`", e.dataset, transactionsTable))
	it, err := q.Read(ctx)
	if err != nil {
		return civil.Date{}, false, fmt.Errorf("LastExportedDate: reading query: %w", err)
	}

	var row struct {
		Last bigquery.NullDate `bigquery:"last"`
	}
	switch err := it.Next(&row); err {
	case nil:
	case iterator.Done:
		return civil.Date{}, false, nil
	default:
		return civil.Date{}, false, fmt.Errorf("LastExportedDate: scanning row: %w", err)
	}
	if !row.Last.Valid {
		return civil.Date{}, false, nil
	}
	return row.Last.Date, true, nil
}

// TransactionsSince drops every ledger entry dated on or before the cutoff,
// leaving the rest of the snapshot untouched.
func TransactionsSince(snap *domain.Snapshot, cutoff civil.Date) *domain.Snapshot {
	after := domain.DateKey(cutoff.String())
	filtered := *snap
	filtered.Transactions = nil
	for _, tx := range snap.Transactions {
		if after.Before(tx.Date) {
			filtered.Transactions = append(filtered.Transactions, tx)
		}
	}
	return &filtered
}

// TransactionRows flattens the snapshot's ledger entries.
func TransactionRows(snap *domain.Snapshot) []*TransactionRow {
	var rows []*TransactionRow
	for _, tx := range snap.Transactions {
		t, err := tx.Date.Time()
		if err != nil {
			continue
		}
		row := &TransactionRow{
			TransactionID: tx.ID,
			HouseholdID:   snap.Household.ID,
			Merchant:      tx.Merchant,
			Category:      tx.Category,
			Amount:        tx.Amount,
			Status:        string(tx.Status),
			PayPeriodID:   string(tx.PayPeriodID),
			TxDate:        civil.DateOf(t),
		}
		if !tx.CreatedAt.IsZero() {
			row.CreatedTS = bigquery.NullTimestamp{Timestamp: tx.CreatedAt.UTC(), Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

// CompletionRows flattens every habit's completion history. Points and
// streak are replayed per date from the same function the scoring engine
// uses, so exported figures always agree with what was awarded.
func CompletionRows(snap *domain.Snapshot) []*CompletionRow {
	var rows []*CompletionRow
	for _, h := range snap.Habits {
		for _, d := range h.CompletedDates {
			t, err := d.Time()
			if err != nil {
				continue
			}
			rows = append(rows, &CompletionRow{
				HabitID:     h.ID,
				HouseholdID: snap.Household.ID,
				HabitName:   h.Name,
				HabitType:   string(h.Type),
				Date:        civil.DateOf(t),
				Points:      int64(habits.PointsForDate(h, d)),
				Streak:      int64(streakAt(h, d)),
			})
		}
	}
	return rows
}

// streakAt replays the streak as of the given completion date.
func streakAt(h domain.Habit, date domain.DateKey) int {
	var prefix []domain.DateKey
	for _, d := range h.CompletedDates {
		if !date.Before(d) {
			prefix = append(prefix, d)
		}
	}
	return habits.CalculateStreak(prefix, h.Period)
}
