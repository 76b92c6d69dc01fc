package spend

import (
	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/calendar"
	"github.com/dkravets/hearthledger/internal/engine/period"
)

// Breakdown is the safe-to-spend figure together with its inputs, so the
// caller can display exactly what the engine computed.
type Breakdown struct {
	CheckingTotal float64 `json:"checking_total"`
	UpcomingBills float64 `json:"upcoming_bills"`
	SafeToSpend   float64 `json:"safe_to_spend"`
}

// SafeToSpend computes the single spendable-today figure. The formula is
// fixed and is the whole contract:
//
//	safeToSpend = sum(checking account balances)
//	            - sum(unpaid expense instances due within the current period)
//
// Unspent bucket headroom is deliberately NOT subtracted: headroom stays
// available until it is actually committed. Recurring calendar templates
// never count directly; only their expanded instances do, with paid and
// tombstoned occurrences removed.
func SafeToSpend(accounts []domain.Account, items []domain.CalendarItem, resolver period.Resolver, periodID domain.PeriodID) Breakdown {
	var b Breakdown

	for _, a := range accounts {
		if a.Type == domain.AccountChecking {
			b.CheckingTotal += a.Balance
		}
	}

	start, end, err := resolver.Bounds(periodID)
	if err == nil {
		for _, inst := range calendar.Expand(items, start, end) {
			if inst.Type == domain.CalendarExpense && !inst.IsPaid {
				b.UpcomingBills += inst.Amount
			}
		}
	}

	b.SafeToSpend = b.CheckingTotal - b.UpcomingBills
	return b
}
