// This file implements parsing and validation of request data: the entry
// form and the report period query parameters.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fsreport/internal/core"
	"fsreport/internal/services"
)

// ParsePeriodParams extracts the report period from query parameters.
// Defaults to the current month; scope=year selects the whole year.
func ParsePeriodParams(query url.Values) core.Period {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}

	if strings.TrimSpace(query.Get("scope")) == "year" {
		return core.YearPeriod(year)
	}
	return core.MonthPeriod(year, month)
}

// ParseEntryForm converts the submitted entry form into service input.
// Expected fields: date (2006-01-02), time_started and time_ended (15:04 on
// the entry date), participants (comma or newline separated), participated
// (checkbox), comments.
func ParseEntryForm(form url.Values) (services.EntryInput, error) {
	dateStr := strings.TrimSpace(form.Get("date"))
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return services.EntryInput{}, fmt.Errorf("invalid date %q", dateStr)
	}

	started, err := parseClockOn(date, form.Get("time_started"))
	if err != nil {
		return services.EntryInput{}, fmt.Errorf("invalid start time %q", form.Get("time_started"))
	}
	ended, err := parseClockOn(date, form.Get("time_ended"))
	if err != nil {
		return services.EntryInput{}, fmt.Errorf("invalid end time %q", form.Get("time_ended"))
	}

	return services.EntryInput{
		Date:         date,
		TimeStarted:  started,
		TimeEnded:    ended,
		Participants: SplitParticipants(form.Get("participants")),
		Participated: form.Get("participated") != "",
		Comments:     sanitizeInput(form.Get("comments")),
	}, nil
}

// parseClockOn combines a HH:MM clock value with the entry date.
func parseClockOn(date time.Time, value string) (time.Time, error) {
	clock, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location()), nil
}

// SplitParticipants breaks the participants field on commas and newlines.
// Blank pieces are dropped.
func SplitParticipants(raw string) []string {
	var out []string
	for _, piece := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		piece = sanitizeInput(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
