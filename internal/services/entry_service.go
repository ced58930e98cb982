// Package services orchestrates entry operations across the repository and
// the AMQP event stream, and produces period reports.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fsreport/internal/auth"
	"fsreport/internal/core"
	"fsreport/internal/storage"

	"github.com/google/uuid"
)

// EntryStore is the repository surface the service needs.
type EntryStore interface {
	UpsertUser(ctx context.Context, subjectID, email, name string) (storage.User, error)
	CreateEntry(ctx context.Context, userID int64, e core.TimeEntry) error
	DeleteEntry(ctx context.Context, userID int64, entryID string) error
	ListEntries(ctx context.Context, userID int64, from, to time.Time) ([]core.TimeEntry, error)
}

// EventPublisher emits entry events for the backup worker. May be absent.
type EventPublisher interface {
	PublishEntrySync(ctx context.Context, entryID string) error
	PublishEntryDelete(ctx context.Context, entryID, date string) error
}

// EntryInput is the form payload for a new entry.
type EntryInput struct {
	Date         time.Time
	TimeStarted  time.Time
	TimeEnded    time.Time
	Participants []string
	Participated bool
	Comments     string
}

type EntryService struct {
	store     EntryStore
	publisher EventPublisher
}

func NewEntryService(store EntryStore, publisher EventPublisher) *EntryService {
	return &EntryService{store: store, publisher: publisher}
}

// ensureUser lazily creates the caller's user row on first use and refreshes
// name/email on every call. Fails before touching anything else when the
// caller is anonymous.
func (s *EntryService) ensureUser(ctx context.Context, ident auth.Identity) (storage.User, error) {
	if ident.SubjectID == "" {
		return storage.User{}, core.ErrNotAuthenticated
	}
	u, err := s.store.UpsertUser(ctx, ident.SubjectID, ident.Email, ident.Name)
	if err != nil {
		return storage.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return u, nil
}

// CreateEntry validates the input, derives the stored hours once, persists
// the entry with its studies, and emits a best-effort sync event.
func (s *EntryService) CreateEntry(ctx context.Context, ident auth.Identity, in EntryInput) (core.TimeEntry, error) {
	u, err := s.ensureUser(ctx, ident)
	if err != nil {
		return core.TimeEntry{}, err
	}

	// Reject bad time ranges before anything is persisted.
	if err := core.ValidateTimes(in.TimeStarted, in.TimeEnded); err != nil {
		return core.TimeEntry{}, err
	}

	var studies []core.Study
	for _, p := range in.Participants {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		studies = append(studies, core.Study{Participant: p})
	}

	entry := core.TimeEntry{
		ID:           uuid.NewString(),
		Date:         in.Date,
		TimeStarted:  in.TimeStarted,
		TimeEnded:    in.TimeEnded,
		HoursWorked:  core.Hours(in.TimeStarted, in.TimeEnded),
		Participated: in.Participated,
		Comments:     strings.TrimSpace(in.Comments),
		Studies:      studies,
	}
	if err := entry.Validate(); err != nil {
		return core.TimeEntry{}, err
	}

	if err := s.store.CreateEntry(ctx, u.ID, entry); err != nil {
		return core.TimeEntry{}, fmt.Errorf("save entry: %w", err)
	}

	// The entry is saved; a failed publish only delays the backup mirror.
	if s.publisher != nil {
		if err := s.publisher.PublishEntrySync(ctx, entry.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish entry sync message",
				"id", entry.ID, "error", err)
		}
	}

	return entry, nil
}

// DeleteEntry removes an entry owned by the caller. Missing and foreign
// entries fail identically with core.ErrEntryNotFound.
func (s *EntryService) DeleteEntry(ctx context.Context, ident auth.Identity, entryID string) error {
	u, err := s.ensureUser(ctx, ident)
	if err != nil {
		return err
	}

	if err := s.store.DeleteEntry(ctx, u.ID, entryID); err != nil {
		return err
	}

	if s.publisher != nil {
		date := time.Now().UTC().Format("2006-01-02")
		if err := s.publisher.PublishEntryDelete(ctx, entryID, date); err != nil {
			slog.ErrorContext(ctx, "Failed to publish entry delete message",
				"id", entryID, "error", err)
		}
	}

	return nil
}

// Report aggregates the caller's entries over a period. The whole request
// fails on any store error; partial results are never returned.
func (s *EntryService) Report(ctx context.Context, ident auth.Identity, p core.Period) (core.Report, error) {
	if err := p.Validate(); err != nil {
		return core.Report{}, err
	}

	u, err := s.ensureUser(ctx, ident)
	if err != nil {
		return core.Report{}, err
	}

	from, to := p.Range()
	entries, err := s.store.ListEntries(ctx, u.ID, from, to)
	if err != nil {
		return core.Report{}, fmt.Errorf("list entries for %s: %w", p.Label(), err)
	}

	return core.Summarize(p, entries), nil
}

// MonthlyReport aggregates one calendar month.
func (s *EntryService) MonthlyReport(ctx context.Context, ident auth.Identity, year, month int) (core.Report, error) {
	return s.Report(ctx, ident, core.MonthPeriod(year, month))
}

// YearlyReport aggregates a whole year.
func (s *EntryService) YearlyReport(ctx context.Context, ident auth.Identity, year int) (core.Report, error) {
	return s.Report(ctx, ident, core.YearPeriod(year))
}
