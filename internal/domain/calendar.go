package domain

// CalendarItemType separates money coming in from money going out.
type CalendarItemType string

const (
	CalendarIncome  CalendarItemType = "income"
	CalendarExpense CalendarItemType = "expense"
)

// Recurrence is the repeat rule on a calendar template.
type Recurrence string

const (
	RecurNone     Recurrence = ""
	RecurWeekly   Recurrence = "weekly"
	RecurBiweekly Recurrence = "biweekly"
	RecurMonthly  Recurrence = "monthly"
)

// CalendarItem is either a concrete dated item, a recurring template
// (Recurrence set), or an override instance generated from a template
// (ParentRecurringID set). Paying or tombstoning one occurrence of a
// template never mutates the template; it creates an override record.
type CalendarItem struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Amount            float64          `json:"amount"`
	Date              DateKey          `json:"date"`
	Type              CalendarItemType `json:"type"`
	IsPaid            bool             `json:"is_paid"`
	Recurrence        Recurrence       `json:"recurrence,omitempty"`
	ParentRecurringID string           `json:"parent_recurring_id,omitempty"`
	Tombstoned        bool             `json:"tombstoned,omitempty"`
}

// IsTemplate reports whether the item is a recurring template rather than a
// concrete occurrence.
func (c CalendarItem) IsTemplate() bool {
	return c.Recurrence != RecurNone && c.ParentRecurringID == ""
}

// InstanceKey is the composite identity of one occurrence of a recurring
// template: the template id plus the occurrence date. A typed key, so no
// string concatenation or parsing is ever involved.
type InstanceKey struct {
	TemplateID string  `json:"template_id"`
	Date       DateKey `json:"date"`
}

// Instance is one expanded calendar occurrence: either a concrete item
// (Key.TemplateID empty, ID set) or a virtual/overridden occurrence of a
// template.
type Instance struct {
	ID     string           `json:"id,omitempty"`
	Key    InstanceKey      `json:"key"`
	Title  string           `json:"title"`
	Amount float64          `json:"amount"`
	Date   DateKey          `json:"date"`
	Type   CalendarItemType `json:"type"`
	IsPaid bool             `json:"is_paid"`
}
