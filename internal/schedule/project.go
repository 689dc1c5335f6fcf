package schedule

import (
	"fmt"
	"time"
)

// Occurrence is one session projected into a target zone. Occurrences are
// rebuilt from scratch on every recomputation and never cached across
// timezone changes; the projection is cheap enough to rerun wholesale.
type Occurrence struct {
	Session Session

	// Weekday is the ISO weekday of the occurrence's start in the target
	// zone. It can differ from Session.Weekday: a late-night session in one
	// zone lands on the next day elsewhere.
	Weekday int

	// StartHour/StartMinute and EndHour/EndMinute are wall-clock values in
	// the target zone.
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int

	// Start and End are the concrete instants of the next occurrence,
	// expressed in the target zone.
	Start time.Time
	End   time.Time

	// DurationMinutes is the source-zone elapsed duration. It is carried
	// through rather than recomputed from target wall-clock values, which
	// would be off by the transition amount when a DST change falls inside
	// the session.
	DurationMinutes int
}

// StartMinutesOfDay returns the occurrence's start as minutes since midnight
// in the target zone.
func (o Occurrence) StartMinutesOfDay() int {
	return o.StartHour*60 + o.StartMinute
}

// DayLabel returns the English day name of the occurrence in the target zone.
func (o Occurrence) DayLabel() string {
	return o.Start.Weekday().String()
}

// TimeLabel returns the occurrence's start clock in the target zone as HH:MM.
func (o Occurrence) TimeLabel() string {
	return o.Start.Format("15:04")
}

// Project resolves session's next concrete occurrence relative to now and
// re-expresses it in target. The conversion is a timezone re-interpretation
// of absolute instants, so the offset in effect at each specific instant
// (DST included) is what determines the target wall-clock values.
//
// Project is pure: same session, target, and now always yield the same
// Occurrence, and nothing about now is retained between calls.
func Project(session Session, target *time.Location, now time.Time) (Occurrence, error) {
	srcNow := now.In(session.Source)

	day, err := NextOccurrence(session.Weekday, srcNow)
	if err != nil {
		return Occurrence{}, fmt.Errorf("project session for %q: %w", session.Host, err)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(),
		session.StartMinutes/60, session.StartMinutes%60, 0, 0, session.Source)
	end := time.Date(day.Year(), day.Month(), day.Day(),
		session.EndMinutes/60, session.EndMinutes%60, 0, 0, session.Source)

	localStart := start.In(target)
	localEnd := end.In(target)

	return Occurrence{
		Session:         session,
		Weekday:         ISOWeekday(localStart),
		StartHour:       localStart.Hour(),
		StartMinute:     localStart.Minute(),
		EndHour:         localEnd.Hour(),
		EndMinute:       localEnd.Minute(),
		Start:           localStart,
		End:             localEnd,
		DurationMinutes: session.DurationMinutes(),
	}, nil
}

// ProjectAll projects every session into target and returns the occurrences
// in stable (weekday, start clock) order. This is the full recomputation a
// timezone change triggers.
func ProjectAll(sessions []Session, target *time.Location, now time.Time) ([]Occurrence, error) {
	out := make([]Occurrence, 0, len(sessions))
	for _, s := range sessions {
		occ, err := Project(s, target, now)
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	Sort(out)
	return out, nil
}
