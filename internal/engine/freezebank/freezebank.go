// Package freezebank manages streak-insurance tokens: validating and
// applying token use against a habit's completion history, and the monthly
// rollover that grants new tokens. Tokens preserve streak continuity; they
// never award points.
package freezebank

import (
	"fmt"
	"sort"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/habits"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// monthlyGrant is the number of tokens added at each rollover, on top of at
// most one carried-over token.
const monthlyGrant = 2

// Decision is the outcome of a token-use check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func deny(reason string) Decision { return Decision{Reason: reason} }

// CanUseToken decides whether a token may patch targetDate on the habit.
// A token may only fill a missed *past* date, at most once per date, and
// only where it preserves the current streak: the date must sit within one
// period length of today or of a completion in the contiguous run ending
// at the latest completion. Runs that are already broken off from the
// current streak cannot be patched.
func CanUseToken(h domain.Habit, targetDate domain.DateKey, tokens int, now time.Time) Decision {
	if tokens <= 0 {
		return deny("no tokens available")
	}
	if _, err := targetDate.Time(); err != nil {
		return deny("invalid date")
	}
	today := domain.NewDateKey(now)
	if !targetDate.Before(today) {
		return deny("only past dates can be patched")
	}
	if h.HasCompleted(targetDate) {
		return deny("date already completed")
	}

	maxGap := h.Period.Days()
	if domain.DaysBetween(targetDate, today) <= maxGap {
		return Decision{Allowed: true}
	}
	for _, d := range currentRun(h.CompletedDates, maxGap) {
		gap := domain.DaysBetween(targetDate, d)
		if gap < 0 {
			gap = -gap
		}
		if gap <= maxGap {
			return Decision{Allowed: true}
		}
	}
	return deny("date is outside the current streak window")
}

// currentRun returns the contiguous completion run ending at the latest
// date, under the same gap rule the streak calculation uses.
func currentRun(dates []domain.DateKey, maxGap int) []domain.DateKey {
	sorted := make([]domain.DateKey, 0, len(dates))
	for _, d := range dates {
		if _, err := d.Time(); err == nil {
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[j].Before(sorted[i]) })

	run := make([]domain.DateKey, 0, len(sorted))
	for i, d := range sorted {
		if i > 0 && domain.DaysBetween(d, sorted[i-1]) > maxGap {
			break
		}
		run = append(run, d)
	}
	return run
}

// ApplyResult is everything one token use changed.
type ApplyResult struct {
	Habit     domain.Habit
	Bank      domain.FreezeBank
	Mutations []mutation.Mutation
}

// ApplyToken consumes one token to mark targetDate completed. The streak is
// recomputed from the patched set and one history entry is appended; no
// points move.
func ApplyToken(h domain.Habit, bank domain.FreezeBank, targetDate domain.DateKey, now time.Time, memberID, eventID string) (ApplyResult, error) {
	if d := CanUseToken(h, targetDate, bank.Tokens, now); !d.Allowed {
		return ApplyResult{}, fmt.Errorf("apply token to habit %s on %s: %s", h.ID, targetDate, d.Reason)
	}

	h.CompletedDates = insertDate(h.CompletedDates, targetDate)
	h.StreakDays = habits.CalculateStreak(h.CompletedDates, h.Period)
	h.LastUpdated = now

	bank.Tokens--
	bank.History = append(bank.History, domain.FreezeEvent{
		ID:       eventID,
		Kind:     domain.FreezeUse,
		HabitID:  h.ID,
		Date:     targetDate,
		Tokens:   bank.Tokens,
		At:       now,
		MemberID: memberID,
	})

	return ApplyResult{
		Habit: h,
		Bank:  bank,
		Mutations: []mutation.Mutation{
			mutation.Put(domain.ColHabits, h.ID, h),
			mutation.Put(domain.ColFreezeBank, domain.ColFreezeBank, bank),
		},
	}, nil
}

// Rollover runs the once-a-month token grant. At most one unused token
// carries over, the monthly grant is added, and the balance is capped at
// MaxTokens. Re-invocation within the same calendar month is a no-op, so
// duplicate scheduler triggers are harmless.
func Rollover(bank domain.FreezeBank, now time.Time, eventID string) (domain.FreezeBank, []mutation.Mutation) {
	month := domain.MonthKey(now)
	if bank.LastRolloverMonth == month {
		return bank, nil
	}
	if bank.MaxTokens <= 0 {
		bank.MaxTokens = domain.DefaultMaxTokens
	}

	carry := bank.Tokens
	if carry > 1 {
		carry = 1
	}
	tokens := carry + monthlyGrant
	if tokens > bank.MaxTokens {
		tokens = bank.MaxTokens
	}

	bank.Tokens = tokens
	bank.LastRolloverMonth = month
	bank.History = append(bank.History, domain.FreezeEvent{
		ID:     eventID,
		Kind:   domain.FreezeGrant,
		Tokens: tokens,
		At:     now,
	})

	return bank, []mutation.Mutation{mutation.Put(domain.ColFreezeBank, domain.ColFreezeBank, bank)}
}

func insertDate(dates []domain.DateKey, date domain.DateKey) []domain.DateKey {
	out := make([]domain.DateKey, 0, len(dates)+1)
	inserted := false
	for _, d := range dates {
		if !inserted && d.Before(date) {
			out = append(out, date)
			inserted = true
		}
		out = append(out, d)
	}
	if !inserted {
		out = append(out, date)
	}
	return out
}
