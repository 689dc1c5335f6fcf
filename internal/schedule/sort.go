package schedule

import "sort"

// Sort orders occurrences by (target weekday, target start clock) ascending.
// The sort is stable: occurrences with the same weekday and start keep the
// order of the underlying session table, which keeps rendered output
// deterministic.
func Sort(occs []Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		if occs[i].Weekday != occs[j].Weekday {
			return occs[i].Weekday < occs[j].Weekday
		}
		return occs[i].StartMinutesOfDay() < occs[j].StartMinutesOfDay()
	})
}
