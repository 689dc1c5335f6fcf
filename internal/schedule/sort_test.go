package schedule

import "testing"

func occAt(host string, weekday, hour, minute int) Occurrence {
	return Occurrence{
		Session:     Session{Host: host},
		Weekday:     weekday,
		StartHour:   hour,
		StartMinute: minute,
	}
}

func TestSort_ByWeekdayThenStart(t *testing.T) {
	occs := []Occurrence{
		occAt("late sunday", 7, 16, 0),
		occAt("early sunday", 7, 9, 30),
		occAt("saturday", 6, 16, 0),
	}
	Sort(occs)

	want := []string{"saturday", "early sunday", "late sunday"}
	for i, host := range want {
		if occs[i].Session.Host != host {
			t.Fatalf("position %d: expected %q, got %q", i, host, occs[i].Session.Host)
		}
	}
}

func TestSort_StableOnTies(t *testing.T) {
	// Identical (weekday, start) must preserve table order.
	occs := []Occurrence{
		occAt("first", 6, 16, 0),
		occAt("second", 6, 16, 0),
		occAt("third", 6, 16, 0),
	}
	Sort(occs)

	want := []string{"first", "second", "third"}
	for i, host := range want {
		if occs[i].Session.Host != host {
			t.Fatalf("position %d: expected %q, got %q", i, host, occs[i].Session.Host)
		}
	}
}
