package warehouse

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/lifecycle"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE bays (
		id TEXT PRIMARY KEY,
		material TEXT NOT NULL DEFAULT '',
		current_qty REAL NOT NULL DEFAULT 0,
		capacity REAL NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)

	return NewSQLiteStore(db)
}

func TestAdjustBayStock_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveBay(ctx, Bay{ID: "BAY-1", Capacity: 50000}))

	err := s.AdjustBayStock(ctx, lifecycle.StockAdjustment{
		BayID: "BAY-1", DeltaQty: 20000, Material: "Maize", Direction: lifecycle.StockAdd,
	})
	require.NoError(t, err)

	bay, err := s.GetBay(ctx, "BAY-1")
	require.NoError(t, err)
	assert.Equal(t, 20000.0, bay.CurrentQty)
	assert.Equal(t, "Maize", bay.Material)

	err = s.AdjustBayStock(ctx, lifecycle.StockAdjustment{
		BayID: "BAY-1", DeltaQty: 5000, Direction: lifecycle.StockRemove,
	})
	require.NoError(t, err)

	bay, err = s.GetBay(ctx, "BAY-1")
	require.NoError(t, err)
	assert.Equal(t, 15000.0, bay.CurrentQty)
}

func TestAdjustBayStock_CapacityExceeded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveBay(ctx, Bay{ID: "BAY-2", CurrentQty: 45000, Capacity: 50000}))

	err := s.AdjustBayStock(ctx, lifecycle.StockAdjustment{
		BayID: "BAY-2", DeltaQty: 20000, Direction: lifecycle.StockAdd,
	})
	require.ErrorIs(t, err, common.ErrValidationRejected)

	// Rejected adjustment must leave the ledger untouched.
	bay, err := s.GetBay(ctx, "BAY-2")
	require.NoError(t, err)
	assert.Equal(t, 45000.0, bay.CurrentQty)
}

func TestAdjustBayStock_MaterialMismatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveBay(ctx, Bay{ID: "BAY-3", Material: "Wheat", CurrentQty: 100}))

	err := s.AdjustBayStock(ctx, lifecycle.StockAdjustment{
		BayID: "BAY-3", DeltaQty: 50, Material: "Maize", Direction: lifecycle.StockAdd,
	})
	require.ErrorIs(t, err, common.ErrValidationRejected)
}

func TestAdjustBayStock_RemoveBelowZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveBay(ctx, Bay{ID: "BAY-4", CurrentQty: 100}))

	err := s.AdjustBayStock(ctx, lifecycle.StockAdjustment{
		BayID: "BAY-4", DeltaQty: 500, Direction: lifecycle.StockRemove,
	})
	require.ErrorIs(t, err, common.ErrValidationRejected)
}

func TestAdjustBayStock_UnknownBay(t *testing.T) {
	s := newTestStore(t)
	err := s.AdjustBayStock(context.Background(), lifecycle.StockAdjustment{
		BayID: "NOPE", DeltaQty: 1, Direction: lifecycle.StockAdd,
	})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListBays(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveBay(ctx, Bay{ID: "B2"}))
	require.NoError(t, s.SaveBay(ctx, Bay{ID: "B1"}))

	bays, err := s.ListBays(ctx)
	require.NoError(t, err)
	require.Len(t, bays, 2)
	assert.Equal(t, "B1", bays[0].ID)
}
