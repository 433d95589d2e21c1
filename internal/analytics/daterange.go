package analytics

import "time"

// ResolveRange translates a symbolic date-range code into the inclusive
// lower-bound instant for filtering, relative to now. It returns the zero
// time for "all", an empty code, or anything unrecognized, meaning
// unrestricted history. Deterministic given a fixed now, so callers inject
// the clock instead of reading it here.
func ResolveRange(code string, now time.Time) time.Time {
	switch code {
	case "30":
		return now.AddDate(0, 0, -30)
	case "90":
		return now.AddDate(0, 0, -90)
	case "180":
		return now.AddDate(0, 0, -180)
	case "ytd":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}
