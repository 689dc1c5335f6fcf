package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Session is the normalized form of one weekly-recurring availability window.
// Input data arrives in two encodings (a weekday plus clock times, or a pair
// of absolute timestamps in some reference week); both collapse into this
// single representation at construction time and nothing downstream ever
// branches on the original encoding.
type Session struct {
	// Host is the display name of the person offering the session.
	Host string

	// Weekday is the canonical ISO weekday in the source zone
	// (1=Monday .. 7=Sunday).
	Weekday int

	// StartMinutes / EndMinutes are minutes since midnight in the source
	// zone. EndMinutes is always strictly greater than StartMinutes and a
	// session never crosses midnight in its source zone.
	StartMinutes int
	EndMinutes   int

	// Source is the zone the canonical weekday/clock values are authored in.
	Source *time.Location
}

// ErrMalformedSession is wrapped by all session construction failures so
// callers can reject a whole table with a single errors.Is check.
var ErrMalformedSession = errors.New("malformed session")

// DurationMinutes returns the elapsed length of the session. This is derived
// from the source-zone clock values only; projections into other zones must
// use this value rather than subtracting target wall-clock times, which can
// differ across a DST transition.
func (s Session) DurationMinutes() int {
	return s.EndMinutes - s.StartMinutes
}

// NewWeeklySession builds a Session from the relative encoding: an ISO
// weekday plus start/end clock times, all interpreted in loc. A nil loc
// means UTC, which is what observed source data uses.
func NewWeeklySession(host string, weekday, startHour, startMinute, endHour, endMinute int, loc *time.Location) (Session, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := Session{
		Host:         host,
		Weekday:      weekday,
		StartMinutes: startHour*60 + startMinute,
		EndMinutes:   endHour*60 + endMinute,
		Source:       loc,
	}
	if err := s.validate(); err != nil {
		return Session{}, err
	}
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23 ||
		startMinute < 0 || startMinute > 59 || endMinute < 0 || endMinute > 59 {
		return Session{}, fmt.Errorf("%w: host %q: clock values out of range", ErrMalformedSession, host)
	}
	return s, nil
}

// NewInstantSession builds a Session from the absolute encoding: a from/to
// timestamp pair in a fixed reference week. The timestamps carry the source
// zone; only their weekday and clock components are retained.
func NewInstantSession(host string, from, to time.Time) (Session, error) {
	if from.IsZero() || to.IsZero() {
		return Session{}, fmt.Errorf("%w: host %q: zero timestamp", ErrMalformedSession, host)
	}
	loc := from.Location()
	to = to.In(loc)
	if from.Year() != to.Year() || from.YearDay() != to.YearDay() {
		return Session{}, fmt.Errorf("%w: host %q: session crosses a day boundary in its source zone", ErrMalformedSession, host)
	}
	s := Session{
		Host:         host,
		Weekday:      ISOWeekday(from),
		StartMinutes: from.Hour()*60 + from.Minute(),
		EndMinutes:   to.Hour()*60 + to.Minute(),
		Source:       loc,
	}
	if err := s.validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (s Session) validate() error {
	if strings.TrimSpace(s.Host) == "" {
		return fmt.Errorf("%w: empty host", ErrMalformedSession)
	}
	if s.Weekday < 1 || s.Weekday > 7 {
		return fmt.Errorf("%w: host %q: weekday %d outside 1..7", ErrMalformedSession, s.Host, s.Weekday)
	}
	if s.EndMinutes <= s.StartMinutes {
		return fmt.Errorf("%w: host %q: end %s is not after start %s", ErrMalformedSession,
			s.Host, clockString(s.EndMinutes), clockString(s.StartMinutes))
	}
	if s.EndMinutes > 24*60 {
		return fmt.Errorf("%w: host %q: session crosses midnight in its source zone", ErrMalformedSession, s.Host)
	}
	return nil
}

// ParseClock parses an "HH:MM" string into hour and minute components.
// Trailing seconds ("09:00:00") are tolerated and ignored.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		s = s[:5]
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hour, minute, nil
}

func clockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
