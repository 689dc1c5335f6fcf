package schedule

import (
	"fmt"
	"time"
)

// ISOWeekday returns t's weekday using the ISO convention (1=Monday ..
// 7=Sunday). Go's time.Weekday numbers Sunday as 0.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// NextOccurrence returns midnight of the soonest date on or after ref whose
// ISO weekday equals weekday, in ref's location. If ref already falls on that
// weekday the reference date itself is returned, so a session stays visible
// on the day it runs.
//
// Date stepping goes through time.AddDate so month/year boundaries and any
// zone oddities are handled by the calendar, not by modular day arithmetic.
// A weekday outside 1..7 is a programming-contract violation: it is reported
// as an error up front rather than looping forever looking for a match.
func NextOccurrence(weekday int, ref time.Time) (time.Time, error) {
	if weekday < 1 || weekday > 7 {
		return time.Time{}, fmt.Errorf("next occurrence: weekday %d outside 1..7", weekday)
	}

	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	for i := 0; i < 7; i++ {
		if ISOWeekday(day) == weekday {
			return day, nil
		}
		day = day.AddDate(0, 0, 1)
	}
	// Unreachable: every 7 consecutive dates cover all weekdays.
	return time.Time{}, fmt.Errorf("next occurrence: no date matching weekday %d within 7 days of %s", weekday, ref.Format(time.RFC3339))
}
