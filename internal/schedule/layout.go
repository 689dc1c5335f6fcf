package schedule

const minutesPerDay = 24 * 60

// Block is a fractional position on a 7-day by 1440-minute week grid.
// All fields are in [0, 1] relative to the grid's full width/height, except
// that Top+Height can exceed 1 for a session that crosses midnight in the
// target zone: such a session stays a single block in its start-day column
// and overflows past the bottom rather than being split across two columns.
type Block struct {
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Layout maps an occurrence to its week-grid block. Weekdays 1..7 map to
// columns 0..6.
func Layout(occ Occurrence) Block {
	return Block{
		Left:   float64(occ.Weekday-1) / 7,
		Width:  1.0 / 7,
		Top:    float64(occ.StartMinutesOfDay()) / minutesPerDay,
		Height: float64(occ.DurationMinutes) / minutesPerDay,
	}
}
