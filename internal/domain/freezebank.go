package domain

import "time"

// FreezeEventKind classifies freeze bank ledger entries.
type FreezeEventKind string

const (
	FreezeGrant FreezeEventKind = "grant"
	FreezeUse   FreezeEventKind = "use"
)

// FreezeEvent is one entry in the freeze bank's append-only history.
type FreezeEvent struct {
	ID       string          `json:"id"`
	Kind     FreezeEventKind `json:"kind"`
	HabitID  string          `json:"habit_id,omitempty"`
	Date     DateKey         `json:"date,omitempty"`
	Tokens   int             `json:"tokens"`
	At       time.Time       `json:"at"`
	MemberID string          `json:"member_id,omitempty"`
}

// FreezeBank holds the household's streak-insurance tokens. Tokens never
// exceed MaxTokens after a rollover; History is only ever appended to.
type FreezeBank struct {
	Tokens            int           `json:"tokens"`
	MaxTokens         int           `json:"max_tokens"`
	LastRolloverMonth string        `json:"last_rollover_month"`
	History           []FreezeEvent `json:"history"`
}

// DefaultMaxTokens is the cap applied when a bank record carries none.
const DefaultMaxTokens = 3

// LegacyFreezeBank is the pre-token record shape kept only so the migration
// can read it. Freezes was both the balance and the monthly grant marker.
type LegacyFreezeBank struct {
	Freezes        int     `json:"freezes"`
	LastFreezeDate DateKey `json:"last_freeze_date"`
}
