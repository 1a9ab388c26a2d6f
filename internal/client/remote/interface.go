// Package remote talks to the central vehicle store over HTTP. Transport
// failures and 5xx responses surface as common.ErrRemoteUnavailable, which
// is the signal the repository layer uses to fall back to offline mode.
package remote

import (
	"context"

	"github.com/gateflow/gateflow/internal/model"
)

// Store is the remote CRUD surface the sync engine replays against.
type Store interface {
	Insert(ctx context.Context, rec model.VehicleRecord) error
	Update(ctx context.Context, rec model.VehicleRecord) error
	Upsert(ctx context.Context, rec model.VehicleRecord) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (model.VehicleRecord, error)
	SelectAll(ctx context.Context) ([]model.VehicleRecord, error)
	// Ping is a cheap liveness probe used by the connectivity monitor.
	Ping(ctx context.Context) error
}

// Watcher delivers the server's change feed. The channel closes when ctx
// is cancelled or the stream drops; callers reconnect.
type Watcher interface {
	Watch(ctx context.Context) (<-chan model.ChangeEvent, error)
}
