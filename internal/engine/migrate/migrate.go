// Package migrate holds the one-shot, idempotent upgrades that bring
// historical records onto the current schemas. Every migration is a pure
// predicate plus an apply step; apply emits mutations and never touches
// anything the predicate did not flag, so a retry after a partial failure
// only redoes the remaining work.
package migrate

import (
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// Migration is one upgrade: Needs reports whether any record still has the
// old shape, Apply produces the mutations that fix exactly those records.
// After Apply's mutations are persisted, Needs must return false.
type Migration struct {
	Name  string
	Needs func(snap *domain.Snapshot) bool
	Apply func(snap *domain.Snapshot, now time.Time) []mutation.Mutation
}

// All returns the registered migrations in the order they must run.
func All() []Migration {
	return []Migration{
		backfillPayPeriods(),
		paycheckKeyedPeriods(),
		freezeBankV2(),
	}
}

// Result summarizes one runner pass.
type Result struct {
	Applied   []string
	Skipped   []string
	Mutations []mutation.Mutation
}

// Run evaluates every migration against the snapshot and collects the
// mutations of those still needed. Already-migrated state is skipped, so
// repeated runs converge to a pass that applies nothing.
func Run(snap *domain.Snapshot, now time.Time) Result {
	var res Result
	for _, m := range All() {
		if !m.Needs(snap) {
			res.Skipped = append(res.Skipped, m.Name)
			continue
		}
		res.Applied = append(res.Applied, m.Name)
		res.Mutations = append(res.Mutations, m.Apply(snap, now)...)
	}
	return res
}
