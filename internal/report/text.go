// Package report renders aggregated field service reports as plain text,
// PDF, and share links. All renderers are pure functions over core.Report.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fsreport/internal/core"
)

const ruleWidth = 50

// Text renders the downloadable plain-text report. The layout is a stable
// contract: tooling that parses these files depends on the exact labels and
// separators.
func Text(rep core.Report, userName string, now time.Time) string {
	var b strings.Builder

	rule := func(ch string) {
		b.WriteString(strings.Repeat(ch, ruleWidth))
		b.WriteString("\n")
	}

	b.WriteString("FIELD SERVICE REPORT\n")
	rule("=")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Name: %s\n", userName)
	fmt.Fprintf(&b, "%s: %s\n", periodLabel(rep.Period), rep.Period.Label())
	b.WriteString("\n")
	rule("=")
	b.WriteString("\n")

	b.WriteString("SUMMARY\n")
	rule("-")
	fmt.Fprintf(&b, "Total Hours: %s\n", FormatTotalHours(rep.TotalHours))
	fmt.Fprintf(&b, "Bible Studies Conducted: %d\n", rep.StudiesCount)
	fmt.Fprintf(&b, "Participated in Ministry: %s\n", yesNo(rep.Participated))
	b.WriteString("\n")
	rule("=")
	b.WriteString("\n")

	b.WriteString("DETAILED ENTRIES\n")
	rule("-")
	b.WriteString("\n")

	if len(rep.Entries) == 0 {
		b.WriteString("No entries recorded for this period\n\n")
	}
	for i, e := range rep.Entries {
		fmt.Fprintf(&b, "Entry %d\n", i+1)
		fmt.Fprintf(&b, "Date: %s\n", e.Date.Format("Monday, January 2, 2006"))
		fmt.Fprintf(&b, "Time: %s - %s\n", clock(e.TimeStarted), clock(e.TimeEnded))
		fmt.Fprintf(&b, "Hours: %s\n", FormatEntryHours(e.HoursWorked))
		if names := e.Participants(); len(names) > 0 {
			fmt.Fprintf(&b, "Studies: %s\n", strings.Join(names, ", "))
		}
		if e.Comments != "" {
			fmt.Fprintf(&b, "Comments: %s\n", e.Comments)
		}
		b.WriteString("\n")
	}

	rule("=")
	fmt.Fprintf(&b, "Generated on %s\n", Timestamp(now))

	return b.String()
}

func periodLabel(p core.Period) string {
	if p.Month == 0 {
		return "Year"
	}
	return "Month"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func clock(t time.Time) string {
	return t.Format("3:04 PM")
}

// FormatTotalHours prints the rounded monthly total the way the summary tiles
// show it: at most one decimal, trailing ".0" dropped.
func FormatTotalHours(h float64) string {
	return strconv.FormatFloat(core.RoundHours(h), 'f', -1, 64)
}

// FormatEntryHours always keeps one decimal.
func FormatEntryHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64)
}

// Timestamp renders the generation time, e.g. "March 5th, 2024 at 2:30 PM".
func Timestamp(now time.Time) string {
	return fmt.Sprintf("%s %s, %d at %s",
		now.Format("January"), ordinal(now.Day()), now.Year(), clock(now))
}

func ordinal(day int) string {
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(day) + suffix
}

// TextFilename names a text download, e.g. "field-service-report-2024-03.txt".
func TextFilename(p core.Period) string {
	return filename(p, "txt")
}

// PDFFilename names a PDF download.
func PDFFilename(p core.Period) string {
	return filename(p, "pdf")
}

func filename(p core.Period, ext string) string {
	if p.Month == 0 {
		return fmt.Sprintf("field-service-report-%d.%s", p.Year, ext)
	}
	return fmt.Sprintf("field-service-report-%d-%02d.%s", p.Year, p.Month, ext)
}
