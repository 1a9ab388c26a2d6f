// Package vehicles is the client's entity repository: the one place that
// combines the local cache, the remote store, the connectivity monitor and
// the sync queue into optimistic offline-first CRUD. Stations never touch
// those collaborators directly.
package vehicles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gateflow/gateflow/internal/client/cache"
	"github.com/gateflow/gateflow/internal/client/remote"
	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/logging"
	"github.com/gateflow/gateflow/internal/model"
)

// ConnectivityChecker reports the last observed remote reachability.
// Satisfied by the netmon monitor.
type ConnectivityChecker interface {
	Online() bool
}

// Syncer is the slice of the sync engine the repository needs.
type Syncer interface {
	Enqueue(ctx context.Context, action model.Action, entityID string, rec model.VehicleRecord) error
}

type Repository struct {
	cache  cache.Repository
	store  remote.Store
	conn   ConnectivityChecker
	syncer Syncer
	logger logging.Logger
	nowFn  func() time.Time
}

func NewRepository(c cache.Repository, store remote.Store, conn ConnectivityChecker, s Syncer, logger logging.Logger) *Repository {
	return &Repository{
		cache:  c,
		store:  store,
		conn:   conn,
		syncer: s,
		logger: logger,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Add writes the record to the cache first and then either pushes it to the
// remote store or queues it, depending on connectivity. A synchronous
// remote rejection (duplicate id, validation) rolls the cache back and
// surfaces to the caller; remote unavailability never does.
func (r *Repository) Add(ctx context.Context, rec model.VehicleRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record id is required", common.ErrValidationRejected)
	}
	now := r.nowFn()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := r.cache.Upsert(ctx, model.CacheEntry{Record: rec, Synced: false}); err != nil {
		return err
	}

	if !r.conn.Online() {
		return r.syncer.Enqueue(ctx, model.ActionInsert, rec.ID, rec)
	}

	err := r.store.Insert(ctx, rec)
	switch {
	case err == nil:
		return r.cache.MarkSynced(ctx, rec.ID, true)
	case errors.Is(err, common.ErrRemoteUnavailable):
		if r.logger != nil {
			r.logger.Info(ctx, "remote unavailable, queueing insert", "id", rec.ID)
		}
		return r.syncer.Enqueue(ctx, model.ActionInsert, rec.ID, rec)
	default:
		if derr := r.cache.DeleteByID(ctx, rec.ID); derr != nil && r.logger != nil {
			r.logger.Error(ctx, "failed to roll back optimistic insert", "id", rec.ID, "error", derr)
		}
		return err
	}
}

// Update applies the patch to the cached record, appends the given audit
// logs, and propagates the new version remotely with the same
// online/offline branching as Add.
func (r *Repository) Update(ctx context.Context, id string, patch model.RecordPatch, logs ...model.LogEntry) (model.VehicleRecord, error) {
	prev, err := r.cache.GetByID(ctx, id)
	if err != nil {
		return model.VehicleRecord{}, err
	}

	rec := prev.Record
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	patch.Data.Apply(&rec.Data)
	for _, entry := range logs {
		rec = rec.AppendLog(entry)
	}
	rec.UpdatedAt = r.nowFn()

	if err := r.cache.Upsert(ctx, model.CacheEntry{Record: rec, Synced: false}); err != nil {
		return model.VehicleRecord{}, err
	}

	if !r.conn.Online() {
		return rec, r.syncer.Enqueue(ctx, model.ActionUpdate, id, rec)
	}

	err = r.store.Update(ctx, rec)
	switch {
	case err == nil:
		return rec, r.cache.MarkSynced(ctx, id, true)
	case errors.Is(err, common.ErrRemoteUnavailable):
		if r.logger != nil {
			r.logger.Info(ctx, "remote unavailable, queueing update", "id", id)
		}
		return rec, r.syncer.Enqueue(ctx, model.ActionUpdate, id, rec)
	case errors.Is(err, common.ErrNotFound):
		// The remote never saw this record, so replay it as an insert.
		return rec, r.syncer.Enqueue(ctx, model.ActionUpsert, id, rec)
	default:
		if uerr := r.cache.Upsert(ctx, prev); uerr != nil && r.logger != nil {
			r.logger.Error(ctx, "failed to roll back optimistic update", "id", id, "error", uerr)
		}
		return model.VehicleRecord{}, err
	}
}

// Delete removes the record locally and propagates the deletion.
func (r *Repository) Delete(ctx context.Context, id string) error {
	prev, err := r.cache.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.cache.DeleteByID(ctx, id); err != nil {
		return err
	}

	if !r.conn.Online() {
		return r.syncer.Enqueue(ctx, model.ActionDelete, id, model.VehicleRecord{})
	}

	err = r.store.Delete(ctx, id)
	switch {
	case err == nil, errors.Is(err, common.ErrNotFound):
		return nil
	case errors.Is(err, common.ErrRemoteUnavailable):
		return r.syncer.Enqueue(ctx, model.ActionDelete, id, model.VehicleRecord{})
	default:
		if uerr := r.cache.Upsert(ctx, prev); uerr != nil && r.logger != nil {
			r.logger.Error(ctx, "failed to roll back optimistic delete", "id", id, "error", uerr)
		}
		return err
	}
}

// GetByID reads from the cache only. The live listener and Refresh keep
// the cache current; a read never blocks on the network.
func (r *Repository) GetByID(ctx context.Context, id string) (model.VehicleRecord, error) {
	e, err := r.cache.GetByID(ctx, id)
	if err != nil {
		return model.VehicleRecord{}, err
	}
	return e.Record, nil
}

// List returns every cached record.
func (r *Repository) List(ctx context.Context) ([]model.VehicleRecord, error) {
	entries, err := r.cache.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]model.VehicleRecord, 0, len(entries))
	for _, e := range entries {
		recs = append(recs, e.Record)
	}
	return recs, nil
}

// Refresh replaces the cache with a fresh remote snapshot. Callers should
// only refresh when the queue is empty, otherwise unsynced local work
// would be overwritten.
func (r *Repository) Refresh(ctx context.Context) error {
	recs, err := r.store.SelectAll(ctx)
	if err != nil {
		return err
	}
	return r.cache.ReplaceAll(ctx, recs)
}
