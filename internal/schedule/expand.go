package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// rruleWeekdays maps ISO weekday 1..7 to rrule's Monday-based constants.
var rruleWeekdays = [...]rrule.Weekday{
	1: rrule.MO,
	2: rrule.TU,
	3: rrule.WE,
	4: rrule.TH,
	5: rrule.FR,
	6: rrule.SA,
	7: rrule.SU,
}

// Upcoming expands every session into its concrete calendar occurrences over
// the next `weeks` weeks from now, expressed in the target zone. Each session
// contributes one occurrence per week via a weekly recurrence rule anchored
// at its next start instant.
//
// The result is ordered by start instant; occurrences from different sessions
// interleave.
func Upcoming(sessions []Session, target *time.Location, now time.Time, weeks int) ([]Occurrence, error) {
	if weeks <= 0 {
		weeks = 1
	}
	rangeEnd := now.AddDate(0, 0, 7*weeks)

	out := make([]Occurrence, 0, len(sessions)*weeks)
	for _, s := range sessions {
		occs, err := upcomingForSession(s, target, now, rangeEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, occs...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func upcomingForSession(s Session, target *time.Location, now, rangeEnd time.Time) ([]Occurrence, error) {
	srcNow := now.In(s.Source)
	day, err := NextOccurrence(s.Weekday, srcNow)
	if err != nil {
		return nil, fmt.Errorf("expand session for %q: %w", s.Host, err)
	}
	dtstart := time.Date(day.Year(), day.Month(), day.Day(),
		s.StartMinutes/60, s.StartMinutes%60, 0, 0, s.Source)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Byweekday: []rrule.Weekday{rruleWeekdays[s.Weekday]},
	})
	if err != nil {
		return nil, fmt.Errorf("expand session for %q: %w", s.Host, err)
	}

	// Between operates in dtstart's zone; align the window accordingly.
	starts := r.Between(dtstart, rangeEnd.In(s.Source), true)

	dur := time.Duration(s.DurationMinutes()) * time.Minute
	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		localStart := start.In(target)
		localEnd := start.Add(dur).In(target)
		out = append(out, Occurrence{
			Session:         s,
			Weekday:         ISOWeekday(localStart),
			StartHour:       localStart.Hour(),
			StartMinute:     localStart.Minute(),
			EndHour:         localEnd.Hour(),
			EndMinute:       localEnd.Minute(),
			Start:           localStart,
			End:             localEnd,
			DurationMinutes: s.DurationMinutes(),
		})
	}
	return out, nil
}
