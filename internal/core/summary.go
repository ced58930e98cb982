package core

import "math"

// Report is the aggregation result for one user and one period. It is the
// single payload shared between the aggregator and every formatter.
type Report struct {
	Period       Period
	TotalHours   float64
	StudiesCount int
	Participated bool
	Entries      []TimeEntry
}

// RoundHours rounds to one decimal place, half away from zero.
func RoundHours(h float64) float64 {
	return math.Round(h*10) / 10
}

// Summarize folds a period's entries into summary statistics.
//
// TotalHours is the rounded sum of the stored per-entry hours. StudiesCount
// counts distinct participant names across all entries with case-sensitive
// exact matching. Participated is true when any entry in the period carries
// the flag. Entries pass through unchanged (the repository already orders
// them by date ascending).
func Summarize(p Period, entries []TimeEntry) Report {
	var total float64
	distinct := make(map[string]struct{})
	participated := false

	for _, e := range entries {
		total += e.HoursWorked
		for _, s := range e.Studies {
			distinct[s.Participant] = struct{}{}
		}
		if e.Participated {
			participated = true
		}
	}

	return Report{
		Period:       p,
		TotalHours:   RoundHours(total),
		StudiesCount: len(distinct),
		Participated: participated,
		Entries:      entries,
	}
}
