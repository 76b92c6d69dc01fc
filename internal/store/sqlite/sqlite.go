// Package sqlite is the durable document store. Documents are JSON rows
// keyed by (collection, id); every Apply runs in one transaction, so the
// all-or-nothing contract comes straight from sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
	"github.com/dkravets/hearthledger/internal/store"
)

const schemaVersion = 1

// Store persists one household's documents in a local sqlite file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and brings the schema up to
// date.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	const bootstrapSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  version INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_migrations (id, version) VALUES (1, 1);

CREATE TABLE IF NOT EXISTS documents (
  collection TEXT NOT NULL,
  id         TEXT NOT NULL,
  data       TEXT NOT NULL,
  PRIMARY KEY (collection, id)
);
`
	if _, err := db.ExecContext(ctx, bootstrapSchema); err != nil {
		return fmt.Errorf("run sqlite migrations: %w", err)
	}

	var currentVersion int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE id = 1").Scan(&currentVersion); err != nil {
		return fmt.Errorf("read sqlite schema version: %w", err)
	}
	if currentVersion > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, schemaVersion)
	}
	return nil
}

// Snapshot reads every document in one query and unmarshals it into the
// typed snapshot.
func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT collection, id, data FROM documents ORDER BY collection, id")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	snap := &domain.Snapshot{}
	for rows.Next() {
		var collection, id string
		var data []byte
		if err := rows.Scan(&collection, &id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if err := decodeInto(snap, collection, data); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
	}
	return snap, rows.Err()
}

func decodeInto(snap *domain.Snapshot, collection string, data []byte) error {
	switch collection {
	case domain.ColHouseholds:
		return json.Unmarshal(data, &snap.Household)
	case domain.ColAccounts:
		var a domain.Account
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		snap.Accounts = append(snap.Accounts, a)
	case domain.ColBuckets:
		var b domain.BudgetBucket
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		snap.Buckets = append(snap.Buckets, b)
	case domain.ColTransactions:
		var t domain.Transaction
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		snap.Transactions = append(snap.Transactions, t)
	case domain.ColCalendar:
		var c domain.CalendarItem
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		snap.CalendarItems = append(snap.CalendarItems, c)
	case domain.ColHabits:
		var h domain.Habit
		if err := json.Unmarshal(data, &h); err != nil {
			return err
		}
		snap.Habits = append(snap.Habits, h)
	case domain.ColSubmissions:
		var sub domain.HabitSubmission
		if err := json.Unmarshal(data, &sub); err != nil {
			return err
		}
		snap.Submissions = append(snap.Submissions, sub)
	case domain.ColChallenges:
		var c domain.Challenge
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		snap.Challenges = append(snap.Challenges, c)
	case domain.ColFreezeBank:
		var bank domain.FreezeBank
		if err := json.Unmarshal(data, &bank); err != nil {
			return err
		}
		snap.FreezeBank = &bank
	case domain.ColLegacyFreeze:
		var legacy domain.LegacyFreezeBank
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		snap.LegacyFreeze = &legacy
	default:
		return store.ErrUnknownCollection
	}
	return nil
}

// Apply runs the mutation list inside one transaction.
func (s *Store) Apply(ctx context.Context, muts []mutation.Mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin apply: %w", err)
	}
	defer tx.Rollback()

	for _, m := range muts {
		if err := applyOne(ctx, tx, m); err != nil {
			return fmt.Errorf("apply %s: %w", m, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply: %w", err)
	}
	return nil
}

func applyOne(ctx context.Context, tx *sql.Tx, m mutation.Mutation) error {
	switch m.Kind {
	case mutation.KindPut:
		data, err := json.Marshal(m.Doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`,
			m.Collection, m.ID, string(data))
		return err

	case mutation.KindDelete:
		_, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE collection = ? AND id = ?", m.Collection, m.ID)
		return err

	case mutation.KindIncrement:
		return incrementCounter(ctx, tx, m)
	}
	return fmt.Errorf("unknown mutation kind %q", m.Kind)
}

// incrementCounter bumps a counter inside the document's JSON. The
// read-modify-write stays atomic because it runs inside the Apply
// transaction.
func incrementCounter(ctx context.Context, tx *sql.Tx, m mutation.Mutation) error {
	if m.Collection != domain.ColHouseholds {
		return store.ErrUnknownCollection
	}

	var data []byte
	err := tx.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?", m.Collection, m.ID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrDocumentNotFound
	}
	if err != nil {
		return err
	}

	var hh domain.Household
	if err := json.Unmarshal(data, &hh); err != nil {
		return fmt.Errorf("decode household: %w", err)
	}
	switch m.Field {
	case domain.FieldPointsDaily:
		hh.Points.Daily += m.Delta
	case domain.FieldPointsWeekly:
		hh.Points.Weekly += m.Delta
	case domain.FieldPointsTotal:
		hh.Points.Total += m.Delta
	default:
		return store.ErrUnknownField
	}

	updated, err := json.Marshal(hh)
	if err != nil {
		return fmt.Errorf("encode household: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE documents SET data = ? WHERE collection = ? AND id = ?",
		string(updated), m.Collection, m.ID)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)
