package schedule

import (
	"strings"
	"testing"
	"time"
)

func TestUpcoming_OneOccurrencePerWeek(t *testing.T) {
	s := mustWeekly(t, "Stefan H.", 6, 16, 0, 18, 0)
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) // Monday

	occs, err := Upcoming([]Session{s}, time.UTC, now, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}

	first := time.Date(2026, 8, 29, 16, 0, 0, 0, time.UTC)
	if !occs[0].Start.Equal(first) {
		t.Fatalf("expected first occurrence %s, got %s", first.Format(time.RFC3339), occs[0].Start.Format(time.RFC3339))
	}
	if got := occs[1].Start.Sub(occs[0].Start); got != 7*24*time.Hour {
		t.Fatalf("expected occurrences 7 days apart, got %s", got)
	}
	if occs[0].DurationMinutes != 120 {
		t.Fatalf("expected 120 minute duration, got %d", occs[0].DurationMinutes)
	}
}

func TestUpcoming_InterleavesSessions(t *testing.T) {
	table := []Session{
		mustWeekly(t, "Stefan H.", 6, 16, 0, 18, 0),
		mustWeekly(t, "Steven Borrie", 7, 9, 30, 10, 30),
	}
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	occs, err := Upcoming(table, time.UTC, now, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(occs) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(occs))
	}
	for i := 1; i < len(occs); i++ {
		if occs[i].Start.Before(occs[i-1].Start) {
			t.Fatalf("occurrences out of order at %d: %s before %s",
				i, occs[i].Start.Format(time.RFC3339), occs[i-1].Start.Format(time.RFC3339))
		}
	}
	// Saturday then Sunday within each week.
	if occs[0].Session.Host != "Stefan H." || occs[1].Session.Host != "Steven Borrie" {
		t.Fatalf("expected Saturday/Sunday interleaving, got %q then %q",
			occs[0].Session.Host, occs[1].Session.Host)
	}
}

func TestICS_WeeklyRule(t *testing.T) {
	table := []Session{
		mustWeekly(t, "Stefan H.", 6, 16, 0, 18, 0),
	}
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	body, err := ICS(table, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"RRULE:FREQ=WEEKLY;BYDAY=SA",
		"Pairing session with Stefan H.",
		"DTSTART:20260829T160000Z",
		"DTEND:20260829T180000Z",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("serialized calendar missing %q:\n%s", want, body)
		}
	}
}
