package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
	"github.com/dkravets/hearthledger/internal/store"
)

func open(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestApply_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s := open(t, path)
	hh := domain.Household{ID: "house-1", Name: "Test", PayFrequency: domain.PayMonthly}
	habit := domain.Habit{
		ID: "h1", Name: "Dishes", Type: domain.HabitPositive,
		ScoringType: domain.ScoringThreshold, Period: domain.PeriodDaily,
		BasePoints: 10, TargetCount: 1,
		CompletedDates: []domain.DateKey{"2024-06-12"},
	}
	muts := []mutation.Mutation{
		mutation.Put(domain.ColHouseholds, hh.ID, hh),
		mutation.Put(domain.ColHabits, habit.ID, habit),
		mutation.Increment(domain.ColHouseholds, hh.ID, domain.FieldPointsTotal, 10),
	}
	if err := s.Apply(ctx, muts); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s = open(t, path)
	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Household.Points.Total != 10 {
		t.Errorf("total = %d, want 10", snap.Household.Points.Total)
	}
	got, ok := snap.HabitByID("h1")
	if !ok {
		t.Fatal("habit not persisted")
	}
	if len(got.CompletedDates) != 1 || got.CompletedDates[0] != "2024-06-12" {
		t.Errorf("completed dates = %v", got.CompletedDates)
	}
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "ledger.db"))
	ctx := context.Background()

	hh := domain.Household{ID: "house-1"}
	if err := s.Apply(ctx, []mutation.Mutation{mutation.Put(domain.ColHouseholds, hh.ID, hh)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	muts := []mutation.Mutation{
		mutation.Increment(domain.ColHouseholds, "house-1", domain.FieldPointsTotal, 10),
		mutation.Increment(domain.ColHouseholds, "no-such-house", domain.FieldPointsTotal, 10),
	}
	if err := s.Apply(ctx, muts); !errors.Is(err, store.ErrDocumentNotFound) {
		t.Fatalf("err = %v, want ErrDocumentNotFound", err)
	}

	snap, _ := s.Snapshot(ctx)
	if snap.Household.Points.Total != 0 {
		t.Errorf("rolled-back batch left a partial write: total = %d", snap.Household.Points.Total)
	}
}

func TestApply_UnknownCounterField(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "ledger.db"))
	ctx := context.Background()

	hh := domain.Household{ID: "house-1"}
	if err := s.Apply(ctx, []mutation.Mutation{mutation.Put(domain.ColHouseholds, hh.ID, hh)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := s.Apply(ctx, []mutation.Mutation{
		mutation.Increment(domain.ColHouseholds, "house-1", "points.lifetime", 1),
	})
	if !errors.Is(err, store.ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestSnapshot_ReadsLegacyFreezeRecord(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "ledger.db"))
	ctx := context.Background()

	legacy := domain.LegacyFreezeBank{Freezes: 2, LastFreezeDate: "2024-05-01"}
	if err := s.Apply(ctx, []mutation.Mutation{
		mutation.Put(domain.ColLegacyFreeze, domain.ColLegacyFreeze, legacy),
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.LegacyFreeze == nil || snap.LegacyFreeze.Freezes != 2 {
		t.Errorf("legacy freeze = %+v, want 2 freezes", snap.LegacyFreeze)
	}
}
