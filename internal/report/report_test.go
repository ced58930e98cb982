package report

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"fsreport/internal/core"
)

func sampleReport() core.Report {
	d1 := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	entries := []core.TimeEntry{
		{
			ID:           "e-1",
			Date:         d1,
			TimeStarted:  d1.Add(8 * time.Hour),
			TimeEnded:    d1.Add(10*time.Hour + 30*time.Minute),
			HoursWorked:  2.5,
			Participated: true,
			Comments:     "Met at the park",
			Studies:      []core.Study{{Participant: "Alice"}},
		},
		{
			ID:          "e-2",
			Date:        d2,
			TimeStarted: d2.Add(14 * time.Hour),
			TimeEnded:   d2.Add(15 * time.Hour),
			HoursWorked: 1,
			Studies:     []core.Study{{Participant: "Alice"}, {Participant: "Bob"}},
		},
	}
	return core.Summarize(core.MonthPeriod(2024, 3), entries)
}

var generatedAt = time.Date(2024, 4, 1, 9, 5, 0, 0, time.UTC)

func TestTextLayout(t *testing.T) {
	got := Text(sampleReport(), "Ann Example", generatedAt)

	want := strings.Join([]string{
		"FIELD SERVICE REPORT",
		strings.Repeat("=", 50),
		"",
		"Name: Ann Example",
		"Month: March 2024",
		"",
		strings.Repeat("=", 50),
		"",
		"SUMMARY",
		strings.Repeat("-", 50),
		"Total Hours: 3.5",
		"Bible Studies Conducted: 2",
		"Participated in Ministry: Yes",
		"",
		strings.Repeat("=", 50),
		"",
		"DETAILED ENTRIES",
		strings.Repeat("-", 50),
		"",
		"Entry 1",
		"Date: Tuesday, March 5, 2024",
		"Time: 8:00 AM - 10:30 AM",
		"Hours: 2.5",
		"Studies: Alice",
		"Comments: Met at the park",
		"",
		"Entry 2",
		"Date: Wednesday, March 20, 2024",
		"Time: 2:00 PM - 3:00 PM",
		"Hours: 1.0",
		"Studies: Alice, Bob",
		"",
		strings.Repeat("=", 50),
		"Generated on April 1st, 2024 at 9:05 AM",
		"",
	}, "\n")

	if got != want {
		t.Errorf("text layout mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestTextEmptyPeriod(t *testing.T) {
	rep := core.Summarize(core.MonthPeriod(2024, 2), nil)
	got := Text(rep, "Ann", generatedAt)
	if !strings.Contains(got, "No entries recorded for this period\n") {
		t.Error("missing empty-period placeholder")
	}
	if !strings.Contains(got, "Total Hours: 0\n") {
		t.Error("empty period should report zero hours")
	}
}

func TestTextYearlyLabel(t *testing.T) {
	rep := core.Summarize(core.YearPeriod(2024), nil)
	got := Text(rep, "Ann", generatedAt)
	if !strings.Contains(got, "Year: 2024\n") {
		t.Errorf("yearly report should carry a Year line, got:\n%s", got)
	}
}

func TestFormatTotalHours(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{5.5, "5.5"},
		{2.25, "2.3"},
		{10.04, "10"},
	}
	for _, c := range cases {
		if got := FormatTotalHours(c.in); got != c.want {
			t.Errorf("FormatTotalHours(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTimestampOrdinals(t *testing.T) {
	cases := []struct {
		day  int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {31, "31st"},
	}
	for _, c := range cases {
		ts := Timestamp(time.Date(2024, 1, c.day, 12, 0, 0, 0, time.UTC))
		if !strings.Contains(ts, "January "+c.want+", 2024") {
			t.Errorf("day %d: got %q, want ordinal %q", c.day, ts, c.want)
		}
	}
}

func TestFilenames(t *testing.T) {
	if got := TextFilename(core.MonthPeriod(2024, 3)); got != "field-service-report-2024-03.txt" {
		t.Errorf("TextFilename = %q", got)
	}
	if got := PDFFilename(core.MonthPeriod(2024, 12)); got != "field-service-report-2024-12.pdf" {
		t.Errorf("PDFFilename = %q", got)
	}
	if got := TextFilename(core.YearPeriod(2024)); got != "field-service-report-2024.txt" {
		t.Errorf("yearly TextFilename = %q", got)
	}
}

func TestParseSummaryRoundTrip(t *testing.T) {
	rep := sampleReport()
	sum, err := ParseSummary(Text(rep, "Ann", generatedAt))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sum.TotalHours != rep.TotalHours {
		t.Errorf("TotalHours: got %v want %v", sum.TotalHours, rep.TotalHours)
	}
	if sum.StudiesCount != rep.StudiesCount {
		t.Errorf("StudiesCount: got %d want %d", sum.StudiesCount, rep.StudiesCount)
	}
	if sum.Participated != rep.Participated {
		t.Errorf("Participated: got %v want %v", sum.Participated, rep.Participated)
	}
}

func TestParseSummaryErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing lines", "Total Hours: 3.5\n"},
		{"bad hours", "Total Hours: lots\nBible Studies Conducted: 2\nParticipated in Ministry: Yes\n"},
		{"bad participation", "Total Hours: 3.5\nBible Studies Conducted: 2\nParticipated in Ministry: maybe\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseSummary(c.in); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestShareLink(t *testing.T) {
	rep := sampleReport()
	link := ShareLink(rep, "Ann", generatedAt)
	if !strings.HasPrefix(link, "https://wa.me/?text=") {
		t.Fatalf("unexpected prefix: %s", link)
	}
	if strings.ContainsAny(link, " \n") {
		t.Error("share link contains unescaped whitespace")
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(link, "https://wa.me/?text="))
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	if decoded != Text(rep, "Ann", generatedAt) {
		t.Error("decoded share text differs from the text report")
	}
}

func TestPDFRenders(t *testing.T) {
	out, err := PDF(sampleReport(), "Ann Example", generatedAt)
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF (starts with %q)", out[:min(8, len(out))])
	}
}

func TestPDFEmptyPeriod(t *testing.T) {
	rep := core.Summarize(core.MonthPeriod(2024, 2), nil)
	if _, err := PDF(rep, "Ann", generatedAt); err != nil {
		t.Fatalf("pdf for empty period: %v", err)
	}
}
