package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/dbx"
	"github.com/gateflow/gateflow/internal/model"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx). Data and logs are stored as JSON text; the merge key is the
// record id.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e model.CacheEntry) error {
	data, err := json.Marshal(e.Record.Data)
	if err != nil {
		return fmt.Errorf("failed to encode vehicle data: %w", err)
	}
	logs, err := json.Marshal(e.Record.Logs)
	if err != nil {
		return fmt.Errorf("failed to encode vehicle logs: %w", err)
	}

	query := `INSERT INTO vehicles (id, status, vehicle_number, type, location_id, data, logs, created_at, updated_at, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET status = excluded.status,
				vehicle_number = excluded.vehicle_number,
				type = excluded.type,
				location_id = excluded.location_id,
				data = excluded.data,
				logs = excluded.logs,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				synced = excluded.synced
	`
	_, err = r.db.ExecContext(ctx, query,
		e.Record.ID, string(e.Record.Status), e.Record.VehicleNumber, e.Record.Type, e.Record.LocationID,
		string(data), string(logs), e.Record.CreatedAt, e.Record.UpdatedAt, e.Synced)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle: %w", err)
	}
	return nil
}

func scanEntry(scan func(dest ...any) error) (model.CacheEntry, error) {
	var (
		e          model.CacheEntry
		status     string
		data, logs string
	)
	err := scan(&e.Record.ID, &status, &e.Record.VehicleNumber, &e.Record.Type, &e.Record.LocationID,
		&data, &logs, &e.Record.CreatedAt, &e.Record.UpdatedAt, &e.Synced)
	if err != nil {
		return model.CacheEntry{}, err
	}
	e.Record.Status = model.Status(status)
	if err := json.Unmarshal([]byte(data), &e.Record.Data); err != nil {
		return model.CacheEntry{}, fmt.Errorf("failed to decode vehicle data: %w", err)
	}
	if err := json.Unmarshal([]byte(logs), &e.Record.Logs); err != nil {
		return model.CacheEntry{}, fmt.Errorf("failed to decode vehicle logs: %w", err)
	}
	return e, nil
}

const selectColumns = `id, status, vehicle_number, type, location_id, data, logs, created_at, updated_at, synced`

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (model.CacheEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM vehicles WHERE id = ?`, id)

	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CacheEntry{}, fmt.Errorf("vehicle %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.CacheEntry{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]model.CacheEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM vehicles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select vehicles: %w", err)
	}
	defer rows.Close()

	var result []model.CacheEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("vehicle %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, synced bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE vehicles SET synced = ? WHERE id = ?`, synced, id)
	if err != nil {
		return fmt.Errorf("failed to mark vehicle synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, recs []model.VehicleRecord) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM vehicles`); err != nil {
			return err
		}
		for _, rec := range recs {
			data, err := json.Marshal(rec.Data)
			if err != nil {
				return fmt.Errorf("failed to encode vehicle data: %w", err)
			}
			logs, err := json.Marshal(rec.Logs)
			if err != nil {
				return fmt.Errorf("failed to encode vehicle logs: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO vehicles (id, status, vehicle_number, type, location_id, data, logs, created_at, updated_at, synced)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
				rec.ID, string(rec.Status), rec.VehicleNumber, rec.Type, rec.LocationID,
				string(data), string(logs), rec.CreatedAt, rec.UpdatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
