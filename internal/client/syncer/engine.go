// Package syncer drains the durable operation queue against the remote
// store. One drain runs at a time, entries replay oldest first in small
// batches, and an entry that keeps failing is flagged rather than dropped
// so no local mutation is ever lost silently.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/gateflow/gateflow/internal/client/queue"
	"github.com/gateflow/gateflow/internal/client/remote"
	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/logging"
	"github.com/gateflow/gateflow/internal/model"
)

// SyncedMarker flips the cache's synced flag once an entity has no pending
// queue entries left. Satisfied by the cache repository.
type SyncedMarker interface {
	MarkSynced(ctx context.Context, id string, synced bool) error
}

// Options tune the engine. Zero values fall back to defaults.
type Options struct {
	BatchSize  int           // entries replayed per batch
	MaxRetries int           // drain failures before an entry is flagged
	Debounce   time.Duration // quiet period before an auto-drain fires

	// Online, when set, lets a drain bail out without dialing while
	// connectivity is known to be down. Nil means always attempt.
	Online func() bool
}

func (o *Options) withDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Debounce <= 0 {
		o.Debounce = 2 * time.Second
	}
}

type Engine struct {
	queue  queue.Repository
	store  remote.Store
	marker SyncedMarker
	logger logging.Logger
	opts   Options

	draining atomic.Bool

	mu       sync.Mutex
	timer    *time.Timer
	onChange []func(pending, failed int64)
}

func New(q queue.Repository, store remote.Store, marker SyncedMarker, logger logging.Logger, opts Options) *Engine {
	opts.withDefaults()
	return &Engine{
		queue:  q,
		store:  store,
		marker: marker,
		logger: logger,
		opts:   opts,
	}
}

// OnChange registers a callback invoked with fresh queue counts after every
// enqueue and drain. The UI uses it for pending/failed badges.
func (e *Engine) OnChange(fn func(pending, failed int64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = append(e.onChange, fn)
}

// Enqueue appends a mutation to the durable queue and schedules a
// debounced drain. It never talks to the network itself.
func (e *Engine) Enqueue(ctx context.Context, action model.Action, entityID string, rec model.VehicleRecord) error {
	var payload json.RawMessage
	if action != model.ActionDelete {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode queue payload: %w", err)
		}
		payload = b
	}

	_, err := e.queue.Append(ctx, model.QueueEntry{
		Action:     action,
		Table:      common.VehiclesTable,
		EntityID:   entityID,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	e.notify(ctx)
	e.ScheduleDrain(ctx)
	return nil
}

// ScheduleDrain arms (or re-arms) the debounce timer. A burst of local
// mutations produces one drain, not one per mutation.
func (e *Engine) ScheduleDrain(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.opts.Debounce, func() {
		if err := e.Drain(ctx); err != nil && e.logger != nil {
			e.logger.Warn(ctx, "scheduled drain failed", "error", err)
		}
	})
}

// Drain replays all pending entries in sequence order. It is single-flight:
// a call while another drain runs returns immediately with no error, as
// does a call while the Online predicate reports the network down.
//
// Entries for an identity whose earlier entry failed in this pass are
// skipped, preserving per-vehicle ordering. A remote-unavailable failure
// aborts the pass without penalizing the remaining entries.
func (e *Engine) Drain(ctx context.Context) error {
	if e.opts.Online != nil && !e.opts.Online() {
		return nil
	}
	if !e.draining.CompareAndSwap(false, true) {
		return nil
	}
	defer e.draining.Store(false)
	defer e.notify(ctx)

	entries, err := e.queue.All(ctx)
	if err != nil {
		return err
	}

	// Entities that still have entries after this pass, failed ones
	// included, must not be marked synced.
	remaining := make(map[string]int)
	for _, entry := range entries {
		remaining[entry.EntityID]++
	}

	blocked := make(map[string]bool)
	processed := 0

	for _, entry := range entries {
		if entry.Failed {
			// Later entries for this vehicle stay queued behind the failed
			// one so a RetryFailed cannot replay them out of enqueue order.
			blocked[entry.EntityID] = true
			continue
		}
		if blocked[entry.EntityID] {
			continue
		}
		if processed > 0 && processed%e.opts.BatchSize == 0 {
			// Give the remote store a breather between batches and bail
			// out early on shutdown.
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		processed++

		err := e.replay(ctx, entry)
		switch {
		case err == nil:
			if derr := e.queue.Delete(ctx, entry.Seq); derr != nil {
				return derr
			}
			remaining[entry.EntityID]--
			if remaining[entry.EntityID] == 0 && e.marker != nil {
				if merr := e.marker.MarkSynced(ctx, entry.EntityID, true); merr != nil && e.logger != nil {
					e.logger.Warn(ctx, "failed to mark entity synced", "entity", entry.EntityID, "error", merr)
				}
			}

		case errors.Is(err, common.ErrRemoteUnavailable):
			if e.logger != nil {
				e.logger.Info(ctx, "remote unavailable, drain paused",
					"seq", entry.Seq, "entity", entry.EntityID)
			}
			return nil

		default:
			entry.Retries++
			entry.LastError = err.Error()
			if entry.Retries >= e.opts.MaxRetries {
				entry.Failed = true
				if e.logger != nil {
					e.logger.Error(ctx, "queue entry exhausted retries",
						"seq", entry.Seq, "entity", entry.EntityID,
						"error", fmt.Errorf("%w: %s", common.ErrSyncExhausted, entry.LastError))
				}
			}
			if uerr := e.queue.Update(ctx, entry); uerr != nil {
				return uerr
			}
			// Later entries for this vehicle must wait for this one.
			blocked[entry.EntityID] = true
		}
	}
	return nil
}

// RetryFailed clears every failed flag and immediately drains again.
func (e *Engine) RetryFailed(ctx context.Context) error {
	n, err := e.queue.ResetFailed(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if e.logger != nil {
		e.logger.Info(ctx, "retrying failed queue entries", "count", n)
	}
	return e.Drain(ctx)
}

// Counts exposes the queue totals for status displays.
func (e *Engine) Counts(ctx context.Context) (pending, failed int64, err error) {
	return e.queue.Counts(ctx)
}

// Failed lists the flagged entries for the operator's review screen.
func (e *Engine) Failed(ctx context.Context) ([]model.QueueEntry, error) {
	all, err := e.queue.All(ctx)
	if err != nil {
		return nil, err
	}
	var failed []model.QueueEntry
	for _, entry := range all {
		if entry.Failed {
			failed = append(failed, entry)
		}
	}
	return failed, nil
}

// replay performs one remote mutation. Transient unavailability is retried
// in place with backoff; a replay that is redundant because a previous
// attempt already landed (insert of an existing row, delete of a missing
// one) counts as success.
func (e *Engine) replay(ctx context.Context, entry model.QueueEntry) error {
	var rec model.VehicleRecord
	if entry.Action != model.ActionDelete {
		if err := json.Unmarshal(entry.Payload, &rec); err != nil {
			return fmt.Errorf("failed to decode queue payload: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		switch entry.Action {
		case model.ActionInsert:
			err = e.store.Insert(ctx, rec)
			if errors.Is(err, common.ErrAlreadyExists) {
				err = nil
			}
		case model.ActionUpdate:
			err = e.store.Update(ctx, rec)
		case model.ActionUpsert:
			err = e.store.Upsert(ctx, rec)
		case model.ActionDelete:
			err = e.store.Delete(ctx, entry.EntityID)
			if errors.Is(err, common.ErrNotFound) {
				err = nil
			}
		default:
			return fmt.Errorf("unknown queue action %q", entry.Action)
		}

		if errors.Is(err, common.ErrRemoteUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (e *Engine) notify(ctx context.Context) {
	e.mu.Lock()
	fns := make([]func(int64, int64), len(e.onChange))
	copy(fns, e.onChange)
	e.mu.Unlock()

	if len(fns) == 0 {
		return
	}
	pending, failed, err := e.queue.Counts(ctx)
	if err != nil {
		return
	}
	for _, fn := range fns {
		fn(pending, failed)
	}
}
