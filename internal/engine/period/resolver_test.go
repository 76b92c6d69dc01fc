package period

import (
	"testing"

	"github.com/dkravets/hearthledger/internal/domain"
)

func TestResolve_Monthly(t *testing.T) {
	r := New(domain.PayMonthly)

	tests := []struct {
		name         string
		date         domain.DateKey
		lastPaycheck domain.DateKey
		want         domain.PeriodID
	}{
		{
			name:         "date inside the anchor period",
			date:         "2024-06-15",
			lastPaycheck: "2024-06-01",
			want:         "2024-06-01",
		},
		{
			name:         "date on the anchor paycheck day",
			date:         "2024-06-01",
			lastPaycheck: "2024-06-01",
			want:         "2024-06-01",
		},
		{
			name:         "date after the next paycheck",
			date:         "2024-07-10",
			lastPaycheck: "2024-06-01",
			want:         "2024-07-01",
		},
		{
			name:         "date several periods ahead",
			date:         "2024-10-02",
			lastPaycheck: "2024-06-01",
			want:         "2024-10-01",
		},
		{
			name:         "date before the anchor walks back",
			date:         "2024-04-20",
			lastPaycheck: "2024-06-01",
			want:         "2024-04-01",
		},
		{
			name:         "month-end anchor opens the short-month period at its end",
			date:         "2024-03-01",
			lastPaycheck: "2024-01-31",
			want:         "2024-02-29",
		},
		{
			name:         "month-end anchor keeps its own period through February",
			date:         "2024-02-10",
			lastPaycheck: "2024-01-31",
			want:         "2024-01-31",
		},
		{
			name:         "month-end anchor walks back onto clamped month ends",
			date:         "2023-12-15",
			lastPaycheck: "2024-01-31",
			want:         "2023-11-30",
		},
		{
			name:         "unset anchor is pre-tracking",
			date:         "2024-06-15",
			lastPaycheck: "",
			want:         domain.PeriodUnassigned,
		},
		{
			name:         "garbage anchor is pre-tracking",
			date:         "2024-06-15",
			lastPaycheck: "not-a-date",
			want:         domain.PeriodUnassigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.date, tt.lastPaycheck)
			if got != tt.want {
				t.Errorf("Resolve(%s, %s) = %q, want %q", tt.date, tt.lastPaycheck, got, tt.want)
			}
		})
	}
}

func TestResolve_Biweekly(t *testing.T) {
	r := New(domain.PayBiweekly)

	// Anchor on a Friday; periods open every 14 days.
	if got := r.Resolve("2024-06-13", "2024-06-07"); got != "2024-06-07" {
		t.Errorf("inside anchor period: got %q", got)
	}
	if got := r.Resolve("2024-06-21", "2024-06-07"); got != "2024-06-21" {
		t.Errorf("on next paycheck day: got %q", got)
	}
	if got := r.Resolve("2024-05-30", "2024-06-07"); got != "2024-05-24" {
		t.Errorf("one period back: got %q", got)
	}
}

func TestResolve_Semimonthly(t *testing.T) {
	r := New(domain.PaySemimonthly)

	// Anchored on the 1st: paydays on the 1st and 16th.
	if got := r.Resolve("2024-06-10", "2024-06-01"); got != "2024-06-01" {
		t.Errorf("first half: got %q", got)
	}
	if got := r.Resolve("2024-06-20", "2024-06-01"); got != "2024-06-16" {
		t.Errorf("second half: got %q", got)
	}
	if got := r.Resolve("2024-07-02", "2024-06-01"); got != "2024-07-01" {
		t.Errorf("next month: got %q", got)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := New(domain.PayBiweekly)
	first := r.Resolve("2025-03-03", "2024-01-05")
	for i := 0; i < 10; i++ {
		if got := r.Resolve("2025-03-03", "2024-01-05"); got != first {
			t.Fatalf("Resolve not deterministic: %q then %q", first, got)
		}
	}
}

func TestBounds(t *testing.T) {
	r := New(domain.PayMonthly)
	start, end, err := r.Bounds("2024-06-01")
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if start != "2024-06-01" || end != "2024-07-01" {
		t.Errorf("Bounds = [%s, %s), want [2024-06-01, 2024-07-01)", start, end)
	}

	if !r.Contains("2024-06-30", "2024-06-01") {
		t.Error("expected 2024-06-30 inside 2024-06-01 period")
	}
	if r.Contains("2024-07-01", "2024-06-01") {
		t.Error("period end is exclusive")
	}
}

func TestNewDefaultsToMonthly(t *testing.T) {
	r := New("")
	if r.Frequency != domain.PayMonthly {
		t.Errorf("default frequency = %q, want monthly", r.Frequency)
	}
}
