package models

import (
	"slices"
	"time"
)

// Streak counts consecutive dream days ending at the most recent dream.
// Several dreams on the same day count once; a gap of more than one day
// ends the streak. It also returns the date of the earliest dream in the
// streak, or the zero time when dates is empty.
func Streak(dates []time.Time) (int, time.Time) {
	if len(dates) == 0 {
		return 0, time.Time{}
	}
	sorted := slices.Clone(dates)
	slices.SortFunc(sorted, func(a, b time.Time) int { return b.Compare(a) })

	streak := 1
	start := sorted[0]
	prev, _ := DayRange(sorted[0])
	for _, d := range sorted[1:] {
		cur, _ := DayRange(d)
		switch daysBetween(cur, prev) {
		case 0:
		case 1:
			streak++
			prev = cur
			start = d
		default:
			return streak, start
		}
	}
	return streak, start
}

// daysBetween counts calendar days from a to b, both at start of day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
