// Package live subscribes to the server's change feed and folds remote
// mutations into the local cache, so stations see each other's updates
// without polling.
package live

import (
	"context"
	"errors"
	"time"

	"github.com/gateflow/gateflow/internal/client/cache"
	"github.com/gateflow/gateflow/internal/client/remote"
	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/logging"
	"github.com/gateflow/gateflow/internal/model"
)

type Listener struct {
	watcher remote.Watcher
	cache   cache.Repository
	logger  logging.Logger

	// onApply, when set, fires after every applied event. The UI refreshes
	// its list from the cache in response.
	onApply func(model.ChangeEvent)

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewListener(w remote.Watcher, c cache.Repository, logger logging.Logger) *Listener {
	return &Listener{
		watcher:    w,
		cache:      c,
		logger:     logger,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

func (l *Listener) OnApply(fn func(model.ChangeEvent)) {
	l.onApply = fn
}

// Run subscribes and keeps resubscribing with exponential backoff until ctx
// is cancelled. A stream that delivers at least one event resets the
// backoff.
func (l *Listener) Run(ctx context.Context) {
	backoff := l.minBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		ch, err := l.watcher.Watch(ctx)
		if err != nil {
			if l.logger != nil {
				l.logger.Warn(ctx, "change feed unavailable", "error", err, "retry_in", backoff)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, l.maxBackoff)
			continue
		}

		for ev := range ch {
			backoff = l.minBackoff
			if err := l.Apply(ctx, ev); err != nil && l.logger != nil {
				l.logger.Error(ctx, "failed to apply change event",
					"kind", ev.Kind, "id", ev.Record.ID, "error", err)
			}
		}
		// Stream dropped; loop resubscribes.
	}
}

// Apply folds one change event into the cache. An insert for an identity
// we already hold is ignored: it is the server echoing a local optimistic
// insert, and the cached copy may already carry newer unsynced work.
// Updates replace wholesale, the confirmed remote copy wins. Deletes of
// unknown records are no-ops.
func (l *Listener) Apply(ctx context.Context, ev model.ChangeEvent) error {
	id := model.NormalizeID(ev.Record.ID)
	if id == "" {
		return nil // malformed event, nothing to key on
	}
	ev.Record.ID = id

	var err error
	switch ev.Kind {
	case model.ChangeInsert:
		_, err = l.cache.GetByID(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		err = l.cache.Upsert(ctx, model.CacheEntry{Record: ev.Record, Synced: true})
	case model.ChangeUpdate:
		err = l.cache.Upsert(ctx, model.CacheEntry{Record: ev.Record, Synced: true})
	case model.ChangeDelete:
		err = l.cache.DeleteByID(ctx, id)
		if errors.Is(err, common.ErrNotFound) {
			err = nil
		}
	default:
		return nil
	}
	if err != nil {
		return err
	}

	if l.onApply != nil {
		l.onApply(ev)
	}
	return nil
}
