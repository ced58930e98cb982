package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fsreport/internal/core"

	_ "modernc.org/sqlite"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = time.RFC3339
)

// User is the application-side user row, keyed by the external identity
// provider's subject id.
type User struct {
	ID        int64
	SubjectID string
	Email     string
	Name      string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys must be on for study rows to cascade with their entry.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertUser creates the user row on first sign-in and refreshes the display
// name and email on every later call. Idempotent by subject id.
func (r *Repository) UpsertUser(ctx context.Context, subjectID, email, name string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (subject_id, email, name)
		VALUES (?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE users.email END,
			name  = CASE WHEN excluded.name  <> '' THEN excluded.name  ELSE users.name  END
		RETURNING id, subject_id, email, name`,
		subjectID, email, name)

	var u User
	if err := row.Scan(&u.ID, &u.SubjectID, &u.Email, &u.Name); err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// CreateEntry inserts the entry and its study rows in one transaction.
func (r *Repository) CreateEntry(ctx context.Context, userID int64, e core.TimeEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO time_entries (id, user_id, date, time_started, time_ended, hours_worked, participated, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID,
		e.Date.UTC().Format(dateFormat),
		e.TimeStarted.UTC().Format(timeFormat),
		e.TimeEnded.UTC().Format(timeFormat),
		e.HoursWorked, boolToInt(e.Participated), e.Comments)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	for _, s := range e.Studies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO studies (entry_id, participant) VALUES (?, ?)`,
			e.ID, s.Participant); err != nil {
			return fmt.Errorf("insert study: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved",
		"id", e.ID,
		"date", e.Date.UTC().Format(dateFormat),
		"hours", e.HoursWorked,
		"studies", len(e.Studies))

	return nil
}

// DeleteEntry removes an entry owned by userID. A missing entry and a foreign
// entry are indistinguishable: both return core.ErrEntryNotFound.
func (r *Repository) DeleteEntry(ctx context.Context, userID int64, entryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM time_entries WHERE id = ? AND user_id = ?`,
		entryID, userID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrEntryNotFound
	}

	slog.InfoContext(ctx, "Entry deleted", "id", entryID)
	return nil
}

// ListEntries returns the owner's entries with date in [from, to] inclusive,
// ordered by date ascending, each with its studies attached. Owner and date
// filters live in the same WHERE clause so cross-user reads cannot happen.
func (r *Repository) ListEntries(ctx context.Context, userID int64, from, to time.Time) ([]core.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, time_started, time_ended, hours_worked, participated, comments
		FROM time_entries
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC`,
		userID, from.UTC().Format(dateFormat), to.UTC().Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.TimeEntry
	index := make(map[string]int)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	if len(entries) == 0 {
		return entries, nil
	}

	srows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.entry_id, s.participant
		FROM studies s
		JOIN time_entries e ON e.id = s.entry_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date <= ?
		ORDER BY s.id ASC`,
		userID, from.UTC().Format(dateFormat), to.UTC().Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("query studies: %w", err)
	}
	defer srows.Close()

	for srows.Next() {
		var s core.Study
		var entryID string
		if err := srows.Scan(&s.ID, &entryID, &s.Participant); err != nil {
			return nil, fmt.Errorf("scan study: %w", err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].Studies = append(entries[i].Studies, s)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, fmt.Errorf("iterate studies: %w", err)
	}

	return entries, nil
}

// GetEntry fetches a single entry by id regardless of owner. Used by the
// backup worker, which operates on ids taken from trusted queue messages.
func (r *Repository) GetEntry(ctx context.Context, entryID string) (core.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, time_started, time_ended, hours_worked, participated, comments
		FROM time_entries WHERE id = ?`, entryID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.TimeEntry{}, core.ErrEntryNotFound
		}
		return core.TimeEntry{}, err
	}

	srows, err := r.db.QueryContext(ctx,
		`SELECT id, participant FROM studies WHERE entry_id = ? ORDER BY id ASC`, entryID)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("query studies: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var s core.Study
		if err := srows.Scan(&s.ID, &s.Participant); err != nil {
			return core.TimeEntry{}, fmt.Errorf("scan study: %w", err)
		}
		e.Studies = append(e.Studies, s)
	}
	if err := srows.Err(); err != nil {
		return core.TimeEntry{}, fmt.Errorf("iterate studies: %w", err)
	}

	return e, nil
}

// ListUnsyncedIDs returns ids of entries not yet mirrored to the backup,
// oldest first, limited to the worker's batch size.
func (r *Repository) ListUnsyncedIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM time_entries
		WHERE synced = 0
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unsynced entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan entry id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unsynced entries: %w", err)
	}
	return ids, nil
}

// MarkSynced records that the entry reached the backup mirror.
func (r *Repository) MarkSynced(ctx context.Context, entryID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET synced = 1, sync_error = 0 WHERE id = ?`, entryID); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	return nil
}

// MarkSyncError flags the entry so the periodic catch-up retries it.
func (r *Repository) MarkSyncError(ctx context.Context, entryID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET sync_error = 1 WHERE id = ?`, entryID); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "id", entryID)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (core.TimeEntry, error) {
	var (
		e            core.TimeEntry
		date         string
		started      string
		ended        string
		participated int
	)
	if err := row.Scan(&e.ID, &date, &started, &ended, &e.HoursWorked, &participated, &e.Comments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.TimeEntry{}, err
		}
		return core.TimeEntry{}, fmt.Errorf("scan entry: %w", err)
	}

	var err error
	if e.Date, err = time.ParseInLocation(dateFormat, date, time.UTC); err != nil {
		return core.TimeEntry{}, fmt.Errorf("parse entry date %q: %w", date, err)
	}
	if e.TimeStarted, err = time.Parse(timeFormat, started); err != nil {
		return core.TimeEntry{}, fmt.Errorf("parse entry start %q: %w", started, err)
	}
	if e.TimeEnded, err = time.Parse(timeFormat, ended); err != nil {
		return core.TimeEntry{}, fmt.Errorf("parse entry end %q: %w", ended, err)
	}
	e.Participated = participated != 0
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
