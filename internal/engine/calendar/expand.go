// Package calendar expands recurring calendar templates into dated
// instances and manages per-occurrence overrides. Templates are immutable
// under expansion: paying or deleting one occurrence only ever creates an
// override record keyed by (template id, date).
package calendar

import (
	"sort"

	"github.com/dkravets/hearthledger/internal/domain"
)

// maxOccurrences caps expansion of a single template inside one window, so
// a malformed rule cannot spin.
const maxOccurrences = 1000

// Expand returns every calendar instance due in the half-open window
// [from, to): concrete items as-is, plus one virtual instance per template
// occurrence, with overrides folded in (a paid override marks the instance
// paid, a tombstoned override removes it).
func Expand(items []domain.CalendarItem, from, to domain.DateKey) []domain.Instance {
	overrides := make(map[domain.InstanceKey]domain.CalendarItem)
	var templates, concrete []domain.CalendarItem

	for _, it := range items {
		switch {
		case it.ParentRecurringID != "":
			overrides[domain.InstanceKey{TemplateID: it.ParentRecurringID, Date: it.Date}] = it
		case it.IsTemplate():
			templates = append(templates, it)
		default:
			concrete = append(concrete, it)
		}
	}

	var out []domain.Instance

	for _, it := range concrete {
		if inWindow(it.Date, from, to) {
			out = append(out, domain.Instance{
				ID:     it.ID,
				Key:    domain.InstanceKey{Date: it.Date},
				Title:  it.Title,
				Amount: it.Amount,
				Date:   it.Date,
				Type:   it.Type,
				IsPaid: it.IsPaid,
			})
		}
	}

	for _, tpl := range templates {
		for _, date := range occurrences(tpl, from, to) {
			key := domain.InstanceKey{TemplateID: tpl.ID, Date: date}
			inst := domain.Instance{
				Key:    key,
				Title:  tpl.Title,
				Amount: tpl.Amount,
				Date:   date,
				Type:   tpl.Type,
			}
			if ov, ok := overrides[key]; ok {
				if ov.Tombstoned {
					continue
				}
				inst.ID = ov.ID
				inst.IsPaid = ov.IsPaid
				if ov.Amount != 0 {
					inst.Amount = ov.Amount
				}
			}
			out = append(out, inst)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// occurrences lists the template's occurrence dates inside [from, to).
func occurrences(tpl domain.CalendarItem, from, to domain.DateKey) []domain.DateKey {
	start, err := tpl.Date.Time()
	if err != nil {
		return nil
	}
	var dates []domain.DateKey
	cur := start
	for i := 0; i < maxOccurrences; i++ {
		key := domain.NewDateKey(cur)
		if !key.Before(to) {
			break
		}
		if !key.Before(from) {
			dates = append(dates, key)
		}
		switch tpl.Recurrence {
		case domain.RecurWeekly:
			cur = cur.AddDate(0, 0, 7)
		case domain.RecurBiweekly:
			cur = cur.AddDate(0, 0, 14)
		case domain.RecurMonthly:
			cur = cur.AddDate(0, 1, 0)
		default:
			return dates
		}
	}
	return dates
}

func inWindow(d, from, to domain.DateKey) bool {
	return !d.Before(from) && d.Before(to)
}

// NewPaidOverride builds the concrete record that marks one template
// occurrence as paid. The caller supplies the new record's id.
func NewPaidOverride(tpl domain.CalendarItem, date domain.DateKey, id string) domain.CalendarItem {
	return domain.CalendarItem{
		ID:                id,
		Title:             tpl.Title,
		Amount:            tpl.Amount,
		Date:              date,
		Type:              tpl.Type,
		IsPaid:            true,
		ParentRecurringID: tpl.ID,
	}
}

// NewTombstone builds the concrete record that deletes one template
// occurrence without touching the template.
func NewTombstone(tpl domain.CalendarItem, date domain.DateKey, id string) domain.CalendarItem {
	return domain.CalendarItem{
		ID:                id,
		Title:             tpl.Title,
		Date:              date,
		Type:              tpl.Type,
		ParentRecurringID: tpl.ID,
		Tombstoned:        true,
	}
}
