package http

import (
	"net/url"
	"testing"
	"time"
)

func TestParsePeriodParams(t *testing.T) {
	p := ParsePeriodParams(url.Values{"year": {"2024"}, "month": {"3"}})
	if p.Year != 2024 || p.Month != 3 {
		t.Fatalf("got %+v", p)
	}

	p = ParsePeriodParams(url.Values{"year": {"2024"}, "scope": {"year"}})
	if p.Year != 2024 || p.Month != 0 {
		t.Fatalf("yearly scope: got %+v", p)
	}

	now := time.Now()
	p = ParsePeriodParams(url.Values{})
	if p.Year != now.Year() || p.Month != int(now.Month()) {
		t.Fatalf("defaults: got %+v", p)
	}

	p = ParsePeriodParams(url.Values{"year": {"twenty"}, "month": {"x"}})
	if p.Year != now.Year() || p.Month != int(now.Month()) {
		t.Fatalf("garbage params should fall back to now: got %+v", p)
	}
}

func TestParseEntryForm(t *testing.T) {
	in, err := ParseEntryForm(url.Values{
		"date":         {"2024-03-05"},
		"time_started": {"08:00"},
		"time_ended":   {"10:30"},
		"participants": {" Alice ,\nBob,, "},
		"participated": {"on"},
		"comments":     {"  note  "},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !in.Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date: %v", in.Date)
	}
	if in.TimeStarted.Hour() != 8 || in.TimeStarted.Minute() != 0 {
		t.Errorf("start: %v", in.TimeStarted)
	}
	if in.TimeEnded.Hour() != 10 || in.TimeEnded.Minute() != 30 {
		t.Errorf("end: %v", in.TimeEnded)
	}
	if len(in.Participants) != 2 || in.Participants[0] != "Alice" || in.Participants[1] != "Bob" {
		t.Errorf("participants: %v", in.Participants)
	}
	if !in.Participated {
		t.Error("participated not parsed")
	}
	if in.Comments != "note" {
		t.Errorf("comments: %q", in.Comments)
	}
}

func TestParseEntryFormErrors(t *testing.T) {
	base := func() url.Values {
		return url.Values{
			"date":         {"2024-03-05"},
			"time_started": {"08:00"},
			"time_ended":   {"10:30"},
		}
	}
	cases := []struct {
		name   string
		mutate func(url.Values)
	}{
		{"missing date", func(f url.Values) { f.Del("date") }},
		{"wrong date layout", func(f url.Values) { f.Set("date", "05/03/2024") }},
		{"bad start", func(f url.Values) { f.Set("time_started", "late") }},
		{"bad end", func(f url.Values) { f.Set("time_ended", "25:99") }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			form := base()
			c.mutate(form)
			if _, err := ParseEntryForm(form); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestSplitParticipants(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Alice", []string{"Alice"}},
		{"Alice, Bob", []string{"Alice", "Bob"}},
		{"Alice\nBob\r\nCara", []string{"Alice", "Bob", "Cara"}},
		{" , ,, ", nil},
	}
	for _, c := range cases {
		got := SplitParticipants(c.in)
		if len(got) != len(c.want) {
			t.Errorf("SplitParticipants(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("SplitParticipants(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}
