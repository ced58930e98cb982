package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary holds the three aggregate figures recovered from a text report.
type Summary struct {
	TotalHours   float64
	StudiesCount int
	Participated bool
}

// ParseSummary reads the SUMMARY block back out of a text report. It is the
// inverse of the summary section Text writes and fails when any of the three
// labelled lines is missing or malformed.
func ParseSummary(text string) (Summary, error) {
	var (
		s     Summary
		found int
	)
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "Total Hours: "):
			v, err := strconv.ParseFloat(strings.TrimPrefix(line, "Total Hours: "), 64)
			if err != nil {
				return Summary{}, fmt.Errorf("parse total hours: %w", err)
			}
			s.TotalHours = v
			found++
		case strings.HasPrefix(line, "Bible Studies Conducted: "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "Bible Studies Conducted: "))
			if err != nil {
				return Summary{}, fmt.Errorf("parse studies count: %w", err)
			}
			s.StudiesCount = n
			found++
		case strings.HasPrefix(line, "Participated in Ministry: "):
			switch v := strings.TrimPrefix(line, "Participated in Ministry: "); v {
			case "Yes":
				s.Participated = true
			case "No":
				s.Participated = false
			default:
				return Summary{}, fmt.Errorf("parse participation: unexpected value %q", v)
			}
			found++
		}
	}
	if found != 3 {
		return Summary{}, fmt.Errorf("incomplete summary block: found %d of 3 lines", found)
	}
	return s, nil
}
