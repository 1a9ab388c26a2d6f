// Package warehouse manages bay capacity and stock levels. The weighbridge
// transition that books material into a bay calls AdjustBayStock before the
// vehicle status is persisted, so an over-capacity bay rejects the whole
// operation and the record stays at the weighbridge.
package warehouse

import (
	"context"

	"github.com/gateflow/gateflow/internal/lifecycle"
)

// Bay is one physical storage location.
type Bay struct {
	ID         string
	Material   string
	CurrentQty float64
	Capacity   float64 // 0 means unbounded
}

// Adjuster applies stock movements decided by the lifecycle layer.
type Adjuster interface {
	AdjustBayStock(ctx context.Context, adj lifecycle.StockAdjustment) error
}

// Store is the full bay ledger.
type Store interface {
	Adjuster
	GetBay(ctx context.Context, id string) (Bay, error)
	ListBays(ctx context.Context) ([]Bay, error)
	SaveBay(ctx context.Context, b Bay) error
}
