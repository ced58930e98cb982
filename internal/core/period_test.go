package core

import (
	"testing"
	"time"
)

func TestPeriodRangeMonth(t *testing.T) {
	cases := []struct {
		year, month int
		wantStart   time.Time
		wantEnd     time.Time
	}{
		{2024, 3, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
		{2024, 2, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)}, // leap year
		{2023, 2, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 2, 28, 23, 59, 59, 0, time.UTC)},
		{2024, 12, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)},
	}
	for i, tc := range cases {
		start, end := MonthPeriod(tc.year, tc.month).Range()
		if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
			t.Fatalf("case %d: got [%v, %v] want [%v, %v]", i, start, end, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestPeriodRangeYear(t *testing.T) {
	start, end := YearPeriod(2024).Range()
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("unexpected end: %v", end)
	}
}

func TestPeriodValidate(t *testing.T) {
	if err := MonthPeriod(2024, 3).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := YearPeriod(2024).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := MonthPeriod(2024, 13).Validate(); err == nil {
		t.Fatal("expected error for month 13")
	}
	if err := MonthPeriod(0, 1).Validate(); err == nil {
		t.Fatal("expected error for year 0")
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := MonthPeriod(2024, 3).Label(); got != "March 2024" {
		t.Fatalf("got %q", got)
	}
	if got := YearPeriod(2024).Label(); got != "2024" {
		t.Fatalf("got %q", got)
	}
}
