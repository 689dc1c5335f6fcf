package schedule

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLayout_SaturdayAfternoon(t *testing.T) {
	occ := Occurrence{
		Weekday:         6,
		StartHour:       16,
		StartMinute:     0,
		DurationMinutes: 120,
	}
	b := Layout(occ)

	if !almostEqual(b.Left, 5.0/7) {
		t.Fatalf("expected left 5/7, got %f", b.Left)
	}
	if !almostEqual(b.Width, 1.0/7) {
		t.Fatalf("expected width 1/7, got %f", b.Width)
	}
	if !almostEqual(b.Top, 960.0/1440) {
		t.Fatalf("expected top 960/1440, got %f", b.Top)
	}
	if !almostEqual(b.Height, 120.0/1440) {
		t.Fatalf("expected height 120/1440, got %f", b.Height)
	}
}

func TestLayout_MondayColumnZero(t *testing.T) {
	b := Layout(Occurrence{Weekday: 1, DurationMinutes: 60})
	if !almostEqual(b.Left, 0) {
		t.Fatalf("expected Monday at left 0, got %f", b.Left)
	}
}

func TestLayout_MidnightOverflowStaysSingleBlock(t *testing.T) {
	// A projected session starting 23:00 with two hours runs past the
	// bottom of its column; it is not split, so top+height exceeds 1.
	occ := Occurrence{
		Weekday:         3,
		StartHour:       23,
		StartMinute:     0,
		DurationMinutes: 120,
	}
	b := Layout(occ)

	if !almostEqual(b.Top, 1380.0/1440) {
		t.Fatalf("expected top 1380/1440, got %f", b.Top)
	}
	if b.Top+b.Height <= 1 {
		t.Fatalf("expected block to overflow its column, top+height = %f", b.Top+b.Height)
	}
	if !almostEqual(b.Width, 1.0/7) {
		t.Fatalf("expected a single column width, got %f", b.Width)
	}
}
