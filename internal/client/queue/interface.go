// Package queue is the durable outbound operation log. Every local
// mutation appends one entry; the sync engine drains entries in seq order
// and deletes them once the remote store confirms.
package queue

import (
	"context"

	"github.com/gateflow/gateflow/internal/model"
)

type Repository interface {
	// Append adds the entry and returns its assigned sequence number.
	Append(ctx context.Context, e model.QueueEntry) (int64, error)
	// All returns every entry, oldest first.
	All(ctx context.Context) ([]model.QueueEntry, error)
	// Update rewrites the retry bookkeeping of an existing entry.
	Update(ctx context.Context, e model.QueueEntry) error
	// Delete removes a confirmed entry.
	Delete(ctx context.Context, seq int64) error
	// ResetFailed clears the failed flag and retry count so the entries
	// rejoin the next drain. Returns how many were reset.
	ResetFailed(ctx context.Context) (int64, error)
	// Counts reports pending (not failed) and failed entry totals.
	Counts(ctx context.Context) (pending, failed int64, err error)
}
