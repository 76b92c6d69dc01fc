// Package inmemory is the mutex-guarded reference store. It backs the unit
// tests and the single-process deployments; the sqlite store is the
// durable equivalent with the same semantics.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
	"github.com/dkravets/hearthledger/internal/store"
)

// Store holds one household's documents in typed maps.
type Store struct {
	mu sync.RWMutex

	household    *domain.Household
	accounts     map[string]domain.Account
	buckets      map[string]domain.BudgetBucket
	transactions map[string]domain.Transaction
	calendar     map[string]domain.CalendarItem
	habits       map[string]domain.Habit
	submissions  map[string]domain.HabitSubmission
	challenges   map[string]domain.Challenge
	freezeBank   *domain.FreezeBank
	legacyFreeze *domain.LegacyFreezeBank
}

// New returns an empty store. Seed it by applying put mutations, the
// household document included.
func New() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		buckets:      make(map[string]domain.BudgetBucket),
		transactions: make(map[string]domain.Transaction),
		calendar:     make(map[string]domain.CalendarItem),
		habits:       make(map[string]domain.Habit),
		submissions:  make(map[string]domain.HabitSubmission),
		challenges:   make(map[string]domain.Challenge),
	}
}

// Seed applies the snapshot wholesale. Test helper shape: it replaces the
// store contents rather than merging.
func (s *Store) Seed(snap *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hh := snap.Household
	s.household = &hh
	s.accounts = make(map[string]domain.Account, len(snap.Accounts))
	for _, a := range snap.Accounts {
		s.accounts[a.ID] = a
	}
	s.buckets = make(map[string]domain.BudgetBucket, len(snap.Buckets))
	for _, b := range snap.Buckets {
		s.buckets[b.ID] = b
	}
	s.transactions = make(map[string]domain.Transaction, len(snap.Transactions))
	for _, t := range snap.Transactions {
		s.transactions[t.ID] = t
	}
	s.calendar = make(map[string]domain.CalendarItem, len(snap.CalendarItems))
	for _, c := range snap.CalendarItems {
		s.calendar[c.ID] = c
	}
	s.habits = make(map[string]domain.Habit, len(snap.Habits))
	for _, h := range snap.Habits {
		s.habits[h.ID] = h
	}
	s.submissions = make(map[string]domain.HabitSubmission, len(snap.Submissions))
	for _, sub := range snap.Submissions {
		s.submissions[sub.ID] = sub
	}
	s.challenges = make(map[string]domain.Challenge, len(snap.Challenges))
	for _, c := range snap.Challenges {
		s.challenges[c.ID] = c
	}
	if snap.FreezeBank != nil {
		bank := *snap.FreezeBank
		s.freezeBank = &bank
	}
	if snap.LegacyFreeze != nil {
		legacy := *snap.LegacyFreeze
		s.legacyFreeze = &legacy
	}
}

// Snapshot copies every document out under the read lock. Slices are
// rebuilt and sorted by id so snapshots are deterministic.
func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &domain.Snapshot{
		Accounts:      sortedValues(s.accounts, func(a domain.Account) string { return a.ID }),
		Buckets:       sortedValues(s.buckets, func(b domain.BudgetBucket) string { return b.ID }),
		Transactions:  sortedValues(s.transactions, func(t domain.Transaction) string { return t.ID }),
		CalendarItems: sortedValues(s.calendar, func(c domain.CalendarItem) string { return c.ID }),
		Habits:        sortedValues(s.habits, func(h domain.Habit) string { return h.ID }),
		Submissions:   sortedValues(s.submissions, func(sub domain.HabitSubmission) string { return sub.ID }),
		Challenges:    sortedValues(s.challenges, func(c domain.Challenge) string { return c.ID }),
	}
	if s.household != nil {
		snap.Household = *s.household
	}
	if s.freezeBank != nil {
		bank := *s.freezeBank
		bank.History = append([]domain.FreezeEvent(nil), s.freezeBank.History...)
		snap.FreezeBank = &bank
	}
	if s.legacyFreeze != nil {
		legacy := *s.legacyFreeze
		snap.LegacyFreeze = &legacy
	}
	for i, h := range snap.Habits {
		snap.Habits[i].CompletedDates = append([]domain.DateKey(nil), h.CompletedDates...)
	}
	return snap, nil
}

func sortedValues[T any](m map[string]T, id func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

// Apply validates the whole list first, then commits under the write lock.
// A mutation that would fail leaves the store untouched.
func (s *Store) Apply(ctx context.Context, muts []mutation.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range muts {
		if err := s.check(m); err != nil {
			return fmt.Errorf("apply %s: %w", m, err)
		}
	}
	for _, m := range muts {
		s.commit(m)
	}
	return nil
}

func (s *Store) check(m mutation.Mutation) error {
	switch m.Kind {
	case mutation.KindPut:
		return s.checkPut(m)
	case mutation.KindDelete:
		switch m.Collection {
		case domain.ColAccounts, domain.ColBuckets, domain.ColTransactions,
			domain.ColCalendar, domain.ColHabits, domain.ColSubmissions,
			domain.ColChallenges:
			return nil
		case domain.ColFreezeBank, domain.ColLegacyFreeze, domain.ColHouseholds:
			return nil
		}
		return store.ErrUnknownCollection
	case mutation.KindIncrement:
		if m.Collection != domain.ColHouseholds {
			return store.ErrUnknownCollection
		}
		if s.household == nil || s.household.ID != m.ID {
			return store.ErrDocumentNotFound
		}
		switch m.Field {
		case domain.FieldPointsDaily, domain.FieldPointsWeekly, domain.FieldPointsTotal:
			return nil
		}
		return store.ErrUnknownField
	}
	return fmt.Errorf("unknown mutation kind %q", m.Kind)
}

func (s *Store) checkPut(m mutation.Mutation) error {
	ok := false
	switch m.Collection {
	case domain.ColHouseholds:
		_, ok = m.Doc.(domain.Household)
	case domain.ColAccounts:
		_, ok = m.Doc.(domain.Account)
	case domain.ColBuckets:
		_, ok = m.Doc.(domain.BudgetBucket)
	case domain.ColTransactions:
		_, ok = m.Doc.(domain.Transaction)
	case domain.ColCalendar:
		_, ok = m.Doc.(domain.CalendarItem)
	case domain.ColHabits:
		_, ok = m.Doc.(domain.Habit)
	case domain.ColSubmissions:
		_, ok = m.Doc.(domain.HabitSubmission)
	case domain.ColChallenges:
		_, ok = m.Doc.(domain.Challenge)
	case domain.ColFreezeBank:
		_, ok = m.Doc.(domain.FreezeBank)
	case domain.ColLegacyFreeze:
		_, ok = m.Doc.(domain.LegacyFreezeBank)
	default:
		return store.ErrUnknownCollection
	}
	if !ok {
		return fmt.Errorf("document type %T does not belong in %s", m.Doc, m.Collection)
	}
	return nil
}

func (s *Store) commit(m mutation.Mutation) {
	switch m.Kind {
	case mutation.KindPut:
		switch m.Collection {
		case domain.ColHouseholds:
			hh := m.Doc.(domain.Household)
			s.household = &hh
		case domain.ColAccounts:
			s.accounts[m.ID] = m.Doc.(domain.Account)
		case domain.ColBuckets:
			s.buckets[m.ID] = m.Doc.(domain.BudgetBucket)
		case domain.ColTransactions:
			s.transactions[m.ID] = m.Doc.(domain.Transaction)
		case domain.ColCalendar:
			s.calendar[m.ID] = m.Doc.(domain.CalendarItem)
		case domain.ColHabits:
			s.habits[m.ID] = m.Doc.(domain.Habit)
		case domain.ColSubmissions:
			s.submissions[m.ID] = m.Doc.(domain.HabitSubmission)
		case domain.ColChallenges:
			s.challenges[m.ID] = m.Doc.(domain.Challenge)
		case domain.ColFreezeBank:
			bank := m.Doc.(domain.FreezeBank)
			s.freezeBank = &bank
		case domain.ColLegacyFreeze:
			legacy := m.Doc.(domain.LegacyFreezeBank)
			s.legacyFreeze = &legacy
		}
	case mutation.KindDelete:
		switch m.Collection {
		case domain.ColAccounts:
			delete(s.accounts, m.ID)
		case domain.ColBuckets:
			delete(s.buckets, m.ID)
		case domain.ColTransactions:
			delete(s.transactions, m.ID)
		case domain.ColCalendar:
			delete(s.calendar, m.ID)
		case domain.ColHabits:
			delete(s.habits, m.ID)
		case domain.ColSubmissions:
			delete(s.submissions, m.ID)
		case domain.ColChallenges:
			delete(s.challenges, m.ID)
		case domain.ColFreezeBank:
			s.freezeBank = nil
		case domain.ColLegacyFreeze:
			s.legacyFreeze = nil
		case domain.ColHouseholds:
			s.household = nil
		}
	case mutation.KindIncrement:
		switch m.Field {
		case domain.FieldPointsDaily:
			s.household.Points.Daily += m.Delta
		case domain.FieldPointsWeekly:
			s.household.Points.Weekly += m.Delta
		case domain.FieldPointsTotal:
			s.household.Points.Total += m.Delta
		}
	}
}

// Close is a no-op; the store lives and dies with the process.
func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
