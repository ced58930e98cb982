package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Study is a named participant attached to a single entry.
	Study struct {
		ID          int64
		Participant string
	}

	// TimeEntry is one recorded ministry session. HoursWorked is computed
	// once at creation time and stored; reads never recompute it.
	TimeEntry struct {
		ID           string
		Date         time.Time
		TimeStarted  time.Time
		TimeEnded    time.Time
		HoursWorked  float64
		Participated bool
		Comments     string
		Studies      []Study
	}
)

var (
	ErrEndNotAfterStart = errors.New("end time must be after start time")
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrEmptyParticipant = errors.New("empty participant name")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEntryNotFound    = errors.New("entry not found or not authorized")
)

// Hours converts a start/end timestamp pair into worked hours.
// No rounding happens here; display rounding is deferred to the formatters.
func Hours(started, ended time.Time) float64 {
	return float64(ended.Sub(started)) / float64(time.Hour)
}

// ValidateTimes rejects entries whose end does not come strictly after the
// start. Callers must run this before computing hours or persisting.
func ValidateTimes(started, ended time.Time) error {
	if !ended.After(started) {
		return ErrEndNotAfterStart
	}
	return nil
}

func (e TimeEntry) Validate() error {
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if err := ValidateTimes(e.TimeStarted, e.TimeEnded); err != nil {
		return err
	}
	if len(e.Comments) > 500 {
		return errors.New("comments too long (max 500 characters)")
	}
	for _, s := range e.Studies {
		if strings.TrimSpace(s.Participant) == "" {
			return ErrEmptyParticipant
		}
		if len(s.Participant) > 100 {
			return errors.New("participant name too long (max 100 characters)")
		}
	}
	return nil
}

// Participants returns the entry's participant names in input order.
func (e TimeEntry) Participants() []string {
	if len(e.Studies) == 0 {
		return nil
	}
	out := make([]string, len(e.Studies))
	for i, s := range e.Studies {
		out[i] = s.Participant
	}
	return out
}
