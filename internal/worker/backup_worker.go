// Package worker mirrors time entries from SQLite into the configured backup
// (Google Sheets in production) by consuming AMQP events, with a periodic
// catch-up pass for entries whose events were lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fsreport/internal/amqp"
	"fsreport/internal/backup"
	"fsreport/internal/core"
)

// Store is the repository surface the worker needs.
type Store interface {
	GetEntry(ctx context.Context, entryID string) (core.TimeEntry, error)
	ListUnsyncedIDs(ctx context.Context, limit int) ([]string, error)
	MarkSynced(ctx context.Context, entryID string) error
	MarkSyncError(ctx context.Context, entryID string) error
}

// BackupWorker consumes entry events and keeps the backup mirror current.
type BackupWorker struct {
	store     Store
	appender  backup.EntryAppender
	remover   backup.EntryRemover
	batchSize int
}

func NewBackupWorker(store Store, appender backup.EntryAppender, remover backup.EntryRemover, batchSize int) *BackupWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &BackupWorker{
		store:     store,
		appender:  appender,
		remover:   remover,
		batchSize: batchSize,
	}
}

// HandleSyncMessage re-reads the entry and appends it to the backup. The
// message only carries the id so a stale payload can never overwrite newer
// row data.
func (w *BackupWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)
	return w.mirrorEntry(ctx, msg.ID)
}

// HandleDeleteMessage removes the backup row for a deleted entry. The local
// row is already gone, so the message itself carries what is needed.
func (w *BackupWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.EntryDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.remover == nil {
		slog.WarnContext(ctx, "No backup remover configured, skipping removal", "id", msg.ID)
		return nil
	}

	if err := w.remover.RemoveEntry(ctx, msg.ID); err != nil {
		return fmt.Errorf("remove entry from backup: %w", err)
	}
	return nil
}

// ProcessPending mirrors entries whose sync events were lost. Failures are
// logged per entry and never stop the batch.
func (w *BackupWorker) ProcessPending(ctx context.Context) error {
	return w.drainUnsynced(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger catch-up batch at boot to recover from
// worker downtime.
func (w *BackupWorker) StartupSyncCheck(ctx context.Context) error {
	return w.drainUnsynced(ctx, w.batchSize*5)
}

func (w *BackupWorker) drainUnsynced(ctx context.Context, limit int) error {
	ids, err := w.store.ListUnsyncedIDs(ctx, limit)
	if err != nil {
		return fmt.Errorf("list unsynced entries: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing unsynced entries", "count", len(ids))

	synced, failed := 0, 0
	for _, id := range ids {
		if err := w.mirrorEntry(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror entry", "id", id, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Catch-up pass completed",
		"total", len(ids), "synced", synced, "errors", failed)
	return nil
}

func (w *BackupWorker) mirrorEntry(ctx context.Context, entryID string) error {
	entry, err := w.store.GetEntry(ctx, entryID)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, entryID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entryID, "error", markErr)
		}
		return fmt.Errorf("load entry: %w", err)
	}

	ref, err := w.appender.AppendEntry(ctx, entry)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, entryID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entryID, "error", markErr)
		}
		return fmt.Errorf("append to backup: %w", err)
	}

	if err := w.store.MarkSynced(ctx, entryID); err != nil {
		// The mirror write worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark entry synced", "id", entryID, "error", err)
	}

	slog.InfoContext(ctx, "Entry mirrored", "id", entryID, "ref", ref)
	return nil
}
