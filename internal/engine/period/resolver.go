// Package period maps calendar dates to pay-period identifiers. A period id
// is the date of the paycheck that opened it, so "2024-06-01" names the span
// from that paycheck up to (but excluding) the next one.
package period

import (
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
)

// maxSteps bounds the resolver walk to roughly two hundred years of weekly
// periods, so a corrupt date can never loop forever.
const maxSteps = 200 * 53

// Resolver resolves dates against a household pay schedule. The zero value
// resolves with a monthly frequency.
type Resolver struct {
	Frequency domain.PayFrequency
}

// New returns a resolver for the given frequency, defaulting to monthly
// when the household has never chosen one.
func New(freq domain.PayFrequency) Resolver {
	if freq == "" {
		freq = domain.PayMonthly
	}
	return Resolver{Frequency: freq}
}

// Resolve returns the id of the pay period containing date, anchored at the
// household's last known paycheck date. An unset anchor (or an unparsable
// input) yields PeriodUnassigned: the record predates tracking. Pure
// function, no I/O, same inputs always give the same id.
func (r Resolver) Resolve(date, lastPaycheck domain.DateKey) domain.PeriodID {
	if lastPaycheck.IsZero() || date.IsZero() {
		return domain.PeriodUnassigned
	}
	anchor, err := lastPaycheck.Time()
	if err != nil {
		return domain.PeriodUnassigned
	}
	if _, err := date.Time(); err != nil {
		return domain.PeriodUnassigned
	}

	cur := anchor
	if !date.Before(domain.NewDateKey(cur)) {
		// Walk forward while the next paycheck still precedes or lands
		// on the date.
		for i := 0; i < maxSteps; i++ {
			next := r.next(cur)
			if date.Before(domain.NewDateKey(next)) {
				return domain.PeriodID(domain.NewDateKey(cur))
			}
			cur = next
		}
		return domain.PeriodUnassigned
	}

	// Date precedes the anchor paycheck: walk backward.
	for i := 0; i < maxSteps; i++ {
		cur = r.prev(cur)
		if !date.Before(domain.NewDateKey(cur)) {
			return domain.PeriodID(domain.NewDateKey(cur))
		}
	}
	return domain.PeriodUnassigned
}

// Bounds returns the half-open [start, end) date range of a period. The end
// is the date of the following paycheck.
func (r Resolver) Bounds(id domain.PeriodID) (start, end domain.DateKey, err error) {
	t, err := domain.DateKey(id).Time()
	if err != nil {
		return "", "", err
	}
	return domain.NewDateKey(t), domain.NewDateKey(r.next(t)), nil
}

// Contains reports whether date falls inside the period.
func (r Resolver) Contains(date domain.DateKey, id domain.PeriodID) bool {
	start, end, err := r.Bounds(id)
	if err != nil {
		return false
	}
	return !date.Before(start) && date.Before(end)
}

func (r Resolver) next(t time.Time) time.Time {
	switch r.Frequency {
	case domain.PayWeekly:
		return t.AddDate(0, 0, 7)
	case domain.PayBiweekly:
		return t.AddDate(0, 0, 14)
	case domain.PaySemimonthly:
		return semimonthlyStep(t, 1)
	default:
		return monthlyStep(t, 1)
	}
}

func (r Resolver) prev(t time.Time) time.Time {
	switch r.Frequency {
	case domain.PayWeekly:
		return t.AddDate(0, 0, -7)
	case domain.PayBiweekly:
		return t.AddDate(0, 0, -14)
	case domain.PaySemimonthly:
		return semimonthlyStep(t, -1)
	default:
		return monthlyStep(t, -1)
	}
}

// monthlyStep moves to the adjacent monthly payday, keeping the payday's
// day of month and clamping to shorter months. A payday on the last day of
// its month is a month-end payday, so a Jan 31 anchor steps through Feb 29
// to Mar 31 rather than normalizing onto invented dates.
func monthlyStep(t time.Time, dir int) time.Time {
	day := t.Day()
	if day == lastDayOf(t.Year(), t.Month()) {
		day = 31
	}
	n := time.Date(t.Year(), t.Month()+time.Month(dir), 1, 0, 0, 0, 0, time.UTC)
	return clampedDate(n.Year(), n.Month(), day)
}

// semimonthlyStep moves to the adjacent semimonthly payday. Paydays fall on
// the anchor day and its opposite half of the month (day and day±15),
// clamped to the month's last day.
func semimonthlyStep(t time.Time, dir int) time.Time {
	day := t.Day()
	var low, high int
	if day <= 15 {
		low, high = day, day+15
	} else {
		low, high = day-15, day
	}
	if dir > 0 {
		if day == low {
			return clampedDate(t.Year(), t.Month(), high)
		}
		n := t.AddDate(0, 1, 0)
		return clampedDate(n.Year(), n.Month(), low)
	}
	if day == high {
		return clampedDate(t.Year(), t.Month(), low)
	}
	p := t.AddDate(0, -1, 0)
	return clampedDate(p.Year(), p.Month(), high)
}

func clampedDate(year int, month time.Month, day int) time.Time {
	if last := lastDayOf(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func lastDayOf(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
