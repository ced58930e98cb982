// Package backup defines the ports for the external entry mirror.
package backup

import (
	"context"

	"fsreport/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryAppender mirrors a created entry into the backup store.
	EntryAppender interface {
		AppendEntry(ctx context.Context, e core.TimeEntry) (rowRef string, err error)
	}

	// EntryRemover removes a deleted entry from the backup store by id.
	EntryRemover interface {
		RemoveEntry(ctx context.Context, entryID string) error
	}
)
