package schedule

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// icalByDay maps ISO weekday 1..7 to RFC 5545 BYDAY codes.
var icalByDay = [...]string{1: "MO", 2: "TU", 3: "WE", 4: "TH", 5: "FR", 6: "SA", 7: "SU"}

// ICS serializes the session table as an iCalendar feed of weekly-recurring
// VEVENTs, so the schedule can be subscribed to from an ordinary calendar
// client. Each event is anchored at the session's next occurrence relative to
// now and carries a FREQ=WEEKLY rule; instants are emitted in UTC and the
// subscriber's client does its own zone conversion.
func ICS(sessions []Session, now time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	for i, s := range sessions {
		srcNow := now.In(s.Source)
		day, err := NextOccurrence(s.Weekday, srcNow)
		if err != nil {
			return "", fmt.Errorf("ics export: %w", err)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(),
			s.StartMinutes/60, s.StartMinutes%60, 0, 0, s.Source)
		end := time.Date(day.Year(), day.Month(), day.Day(),
			s.EndMinutes/60, s.EndMinutes%60, 0, 0, s.Source)

		uid := fmt.Sprintf("paircal-%d-%s", i, start.UTC().Format("20060102T150405Z"))
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(start.UTC())
		ev.SetEndAt(end.UTC())
		ev.SetSummary(fmt.Sprintf("Pairing session with %s", s.Host))
		ev.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", icalByDay[s.Weekday]))
	}

	return cal.Serialize(), nil
}
