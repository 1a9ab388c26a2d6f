// Package cache is the client's durable vehicle store. Reads always come
// from here; the remote store only ever refreshes it. Every entry carries a
// synced flag so the UI can show which records still await upload.
package cache

import (
	"context"

	"github.com/gateflow/gateflow/internal/model"
)

type Repository interface {
	// Upsert writes the record, replacing any previous version wholesale.
	Upsert(ctx context.Context, e model.CacheEntry) error
	GetByID(ctx context.Context, id string) (model.CacheEntry, error)
	GetAll(ctx context.Context) ([]model.CacheEntry, error)
	DeleteByID(ctx context.Context, id string) error
	// MarkSynced flips the synced flag without touching the record body.
	MarkSynced(ctx context.Context, id string, synced bool) error
	// ReplaceAll swaps the whole cache for a fresh remote snapshot. All
	// entries land synced.
	ReplaceAll(ctx context.Context, recs []model.VehicleRecord) error
}
