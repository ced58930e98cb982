package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fsreport/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testEntry(id string, day int, participants ...string) core.TimeEntry {
	date := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
	started := date.Add(8 * time.Hour)
	ended := date.Add(10*time.Hour + 30*time.Minute)
	studies := make([]core.Study, len(participants))
	for i, p := range participants {
		studies[i] = core.Study{Participant: p}
	}
	return core.TimeEntry{
		ID:          id,
		Date:        date,
		TimeStarted: started,
		TimeEnded:   ended,
		HoursWorked: core.Hours(started, ended),
		Studies:     studies,
	}
}

func TestUpsertUserIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u1, err := repo.UpsertUser(ctx, "subj-1", "a@example.com", "Ann")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	u2, err := repo.UpsertUser(ctx, "subj-1", "a@example.com", "Ann")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if u1.ID != u2.ID {
		t.Fatalf("upsert created a new row: %d vs %d", u1.ID, u2.ID)
	}

	// A changed display name is picked up, an empty one is kept.
	u3, err := repo.UpsertUser(ctx, "subj-1", "", "Annika")
	if err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if u3.Name != "Annika" || u3.Email != "a@example.com" {
		t.Fatalf("unexpected user after rename: %+v", u3)
	}
}

func TestCreateAndListEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.UpsertUser(ctx, "subj-1", "a@example.com", "Ann")
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	for i, e := range []core.TimeEntry{
		testEntry("e-20", 20, "Alice", "Bob"),
		testEntry("e-05", 5, "Alice"),
		testEntry("e-31", 31),
	} {
		if err := repo.CreateEntry(ctx, u.ID, e); err != nil {
			t.Fatalf("create entry %d: %v", i, err)
		}
	}

	from, to := core.MonthPeriod(2024, 3).Range()
	entries, err := repo.ListEntries(ctx, u.ID, from, to)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].ID != "e-05" || entries[1].ID != "e-20" || entries[2].ID != "e-31" {
		t.Fatalf("entries not ordered by date: %s %s %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}
	if got := entries[1].Participants(); len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Fatalf("unexpected participants: %v", got)
	}
	if entries[0].HoursWorked != 2.5 {
		t.Fatalf("hours not preserved: %v", entries[0].HoursWorked)
	}
}

func TestListEntriesScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner, _ := repo.UpsertUser(ctx, "subj-owner", "", "")
	other, _ := repo.UpsertUser(ctx, "subj-other", "", "")

	if err := repo.CreateEntry(ctx, owner.ID, testEntry("e-1", 5, "Alice")); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	from, to := core.MonthPeriod(2024, 3).Range()
	entries, err := repo.ListEntries(ctx, other.ID, from, to)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("cross-user leak: got %d entries", len(entries))
	}
}

func TestDeleteEntryOwnership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner, _ := repo.UpsertUser(ctx, "subj-owner", "", "")
	other, _ := repo.UpsertUser(ctx, "subj-other", "", "")

	if err := repo.CreateEntry(ctx, owner.ID, testEntry("e-1", 5, "Alice")); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	// Deleting someone else's entry and deleting a missing entry look the same.
	if err := repo.DeleteEntry(ctx, other.ID, "e-1"); !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrEntryNotFound", err)
	}
	if err := repo.DeleteEntry(ctx, owner.ID, "missing"); !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("missing delete: got %v, want ErrEntryNotFound", err)
	}

	// Store unchanged after the failed delete.
	from, to := core.MonthPeriod(2024, 3).Range()
	entries, err := repo.ListEntries(ctx, owner.ID, from, to)
	if err != nil || len(entries) != 1 {
		t.Fatalf("store changed after failed delete: %v, %d entries", err, len(entries))
	}

	if err := repo.DeleteEntry(ctx, owner.ID, "e-1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	entries, err = repo.ListEntries(ctx, owner.ID, from, to)
	if err != nil || len(entries) != 0 {
		t.Fatalf("entry not deleted: %v, %d entries", err, len(entries))
	}
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, _ := repo.UpsertUser(ctx, "subj-1", "", "")
	if err := repo.CreateEntry(ctx, u.ID, testEntry("e-1", 5)); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := repo.CreateEntry(ctx, u.ID, testEntry("e-2", 6)); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	ids, err := repo.ListUnsyncedIDs(ctx, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d unsynced, want 2", len(ids))
	}

	if err := repo.MarkSynced(ctx, "e-1"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	ids, err = repo.ListUnsyncedIDs(ctx, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(ids) != 1 || ids[0] != "e-2" {
		t.Fatalf("unexpected unsynced ids: %v", ids)
	}
}

func TestGetEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, _ := repo.UpsertUser(ctx, "subj-1", "", "")
	want := testEntry("e-1", 5, "Alice")
	if err := repo.CreateEntry(ctx, u.ID, want); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	got, err := repo.GetEntry(ctx, "e-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got.ID != want.ID || !got.Date.Equal(want.Date) || got.HoursWorked != want.HoursWorked {
		t.Fatalf("entry mismatch: got %+v", got)
	}
	if len(got.Studies) != 1 || got.Studies[0].Participant != "Alice" {
		t.Fatalf("studies mismatch: %+v", got.Studies)
	}

	if _, err := repo.GetEntry(ctx, "missing"); !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("missing entry: got %v", err)
	}
}
