package schedule

import "fmt"

// FormatDuration renders a minute count as a human-readable label.
//
//	60        -> "1 hour"
//	45        -> "45 minutes"
//	120       -> "2 hours"
//	90        -> "1 hours 30 minutes"
//
// Only the exact one-hour case is singular; other hour counts use "hours"
// even for h=1 with a remainder. That mismatch is inherited display behavior
// and deliberately not corrected here.
func FormatDuration(minutes int) string {
	switch {
	case minutes == 60:
		return "1 hour"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	default:
		h := minutes / 60
		m := minutes % 60
		if m > 0 {
			return fmt.Sprintf("%d hours %d minutes", h, m)
		}
		return fmt.Sprintf("%d hours", h)
	}
}
