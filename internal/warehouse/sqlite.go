package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/dbx"
	"github.com/gateflow/gateflow/internal/lifecycle"
)

// SQLiteStore keeps the bay ledger in the local database, next to the
// vehicle cache, so stock and status survive restarts together.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// AdjustBayStock applies the movement inside a transaction. The quantity
// and capacity checks run against the row read in the same transaction, so
// two concurrent bookings cannot both fit into the last free tonnage.
func (s *SQLiteStore) AdjustBayStock(ctx context.Context, adj lifecycle.StockAdjustment) error {
	if adj.BayID == "" {
		return fmt.Errorf("%w: bay id is required", common.ErrValidationRejected)
	}
	if adj.DeltaQty < 0 {
		return fmt.Errorf("%w: adjustment quantity must not be negative", common.ErrValidationRejected)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		bay, err := getBay(ctx, tx, adj.BayID)
		if err != nil {
			return err
		}

		switch adj.Direction {
		case lifecycle.StockAdd:
			if bay.Material != "" && adj.Material != "" && bay.Material != adj.Material {
				return fmt.Errorf("%w: bay %s holds %s, cannot add %s",
					common.ErrValidationRejected, bay.ID, bay.Material, adj.Material)
			}
			next := bay.CurrentQty + adj.DeltaQty
			if bay.Capacity > 0 && next > bay.Capacity {
				return fmt.Errorf("%w: bay %s capacity %.0f exceeded (current %.0f, adding %.0f)",
					common.ErrValidationRejected, bay.ID, bay.Capacity, bay.CurrentQty, adj.DeltaQty)
			}
			material := bay.Material
			if material == "" {
				material = adj.Material
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE bays SET current_qty = ?, material = ? WHERE id = ?`,
				next, material, bay.ID)
			return err

		case lifecycle.StockRemove:
			if adj.DeltaQty > bay.CurrentQty {
				return fmt.Errorf("%w: bay %s holds %.0f, cannot remove %.0f",
					common.ErrValidationRejected, bay.ID, bay.CurrentQty, adj.DeltaQty)
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE bays SET current_qty = ? WHERE id = ?`,
				bay.CurrentQty-adj.DeltaQty, bay.ID)
			return err

		default:
			return fmt.Errorf("%w: unknown stock direction %q", common.ErrValidationRejected, adj.Direction)
		}
	})
}

func (s *SQLiteStore) GetBay(ctx context.Context, id string) (Bay, error) {
	return getBay(ctx, s.db, id)
}

func getBay(ctx context.Context, q dbx.DBTX, id string) (Bay, error) {
	var b Bay
	err := q.QueryRowContext(ctx,
		`SELECT id, material, current_qty, capacity FROM bays WHERE id = ?`, id).
		Scan(&b.ID, &b.Material, &b.CurrentQty, &b.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return Bay{}, fmt.Errorf("bay %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return Bay{}, err
	}
	return b, nil
}

func (s *SQLiteStore) ListBays(ctx context.Context) ([]Bay, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, material, current_qty, capacity FROM bays ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bays []Bay
	for rows.Next() {
		var b Bay
		if err := rows.Scan(&b.ID, &b.Material, &b.CurrentQty, &b.Capacity); err != nil {
			return nil, err
		}
		bays = append(bays, b)
	}
	return bays, rows.Err()
}

func (s *SQLiteStore) SaveBay(ctx context.Context, b Bay) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bays (id, material, current_qty, capacity) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET material = excluded.material,
		   current_qty = excluded.current_qty, capacity = excluded.capacity`,
		b.ID, b.Material, b.CurrentQty, b.Capacity)
	return err
}
