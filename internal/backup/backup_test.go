package backup

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)
	got := ObjectName("house-1", now)
	want := "backups/house-1/2024-06-12T09-30-00Z.json"
	if got != want {
		t.Errorf("object name = %q, want %q", got, want)
	}
}

func TestWriteSnapshot_RoundTrips(t *testing.T) {
	snap := &domain.Snapshot{
		Household: domain.Household{ID: "house-1", Name: "Test"},
		Habits: []domain.Habit{
			{ID: "h1", Name: "Dishes", CompletedDates: []domain.DateKey{"2024-06-12"}},
		},
	}

	var buf bytes.Buffer
	if err := writeSnapshot(&buf, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "\"house-1\"") {
		t.Error("household id missing from backup")
	}

	var decoded domain.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Household.ID != "house-1" || len(decoded.Habits) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}
