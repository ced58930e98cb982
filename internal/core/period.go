package core

import (
	"errors"
	"time"
)

// Period buckets entries for aggregation: a specific month of a year, or a
// whole year when Month is zero.
type Period struct {
	Year  int
	Month int // 1-12, or 0 for the whole year
}

func MonthPeriod(year, month int) Period {
	return Period{Year: year, Month: month}
}

func YearPeriod(year int) Period {
	return Period{Year: year}
}

func (p Period) IsYearly() bool {
	return p.Month == 0
}

func (p Period) Validate() error {
	if p.Year < 1 {
		return errors.New("invalid year")
	}
	if p.Month < 0 || p.Month > 12 {
		return errors.New("invalid month")
	}
	return nil
}

// Range returns the inclusive date bounds for the period: first day at
// 00:00:00 through last day at 23:59:59. The filter applies to an entry's
// Date, not to TimeStarted.
func (p Period) Range() (start, end time.Time) {
	if p.IsYearly() {
		start = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(p.Year, time.December, 31, 23, 59, 59, 0, time.UTC)
		return start, end
	}
	start = time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	// Day zero of the next month is the last day of this month.
	last := time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC)
	end = time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, time.UTC)
	return start, end
}

// Label renders the period for report headers: "January 2006" for a month,
// "2006" for a whole year.
func (p Period) Label() string {
	if p.IsYearly() {
		return time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	}
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}
