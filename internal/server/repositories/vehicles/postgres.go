package vehicles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint
// violation.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func encode(rec model.VehicleRecord) (data, logs []byte, err error) {
	data, err = json.Marshal(rec.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("error encoding vehicle data: %w", err)
	}
	if rec.Logs == nil {
		logs = []byte("[]")
	} else if logs, err = json.Marshal(rec.Logs); err != nil {
		return nil, nil, fmt.Errorf("error encoding vehicle logs: %w", err)
	}
	return data, logs, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rec model.VehicleRecord) error {
	data, logs, err := encode(rec)
	if err != nil {
		return err
	}

	query := `INSERT INTO vehicles (id, status, vehicle_number, type, location_id, data, logs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, string(rec.Status), rec.VehicleNumber, rec.Type, rec.LocationID,
		data, logs, rec.CreatedAt, rec.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("vehicle %s: %w", rec.ID, common.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec model.VehicleRecord) error {
	data, logs, err := encode(rec)
	if err != nil {
		return err
	}

	query := `UPDATE vehicles SET status = $2, vehicle_number = $3, type = $4, location_id = $5,
		data = $6, logs = $7, updated_at = $8 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		rec.ID, string(rec.Status), rec.VehicleNumber, rec.Type, rec.LocationID,
		data, logs, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if ra == 0 {
		return fmt.Errorf("vehicle %s: %w", rec.ID, common.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec model.VehicleRecord) error {
	data, logs, err := encode(rec)
	if err != nil {
		return err
	}

	query := `INSERT INTO vehicles (id, status, vehicle_number, type, location_id, data, logs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET status = excluded.status,
			vehicle_number = excluded.vehicle_number,
			type = excluded.type,
			location_id = excluded.location_id,
			data = excluded.data,
			logs = excluded.logs,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, string(rec.Status), rec.VehicleNumber, rec.Type, rec.LocationID,
		data, logs, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if ra == 0 {
		return fmt.Errorf("vehicle %s: %w", id, common.ErrNotFound)
	}
	return nil
}

const selectColumns = `id, status, vehicle_number, type, location_id, data, logs, created_at, updated_at`

func scanRecord(scan func(dest ...any) error) (model.VehicleRecord, error) {
	var (
		rec        model.VehicleRecord
		status     string
		data, logs []byte
	)
	err := scan(&rec.ID, &status, &rec.VehicleNumber, &rec.Type, &rec.LocationID,
		&data, &logs, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return model.VehicleRecord{}, err
	}
	rec.Status = model.Status(status)
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return model.VehicleRecord{}, fmt.Errorf("error decoding vehicle data: %w", err)
	}
	if err := json.Unmarshal(logs, &rec.Logs); err != nil {
		return model.VehicleRecord{}, fmt.Errorf("error decoding vehicle logs: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (model.VehicleRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM vehicles WHERE id = $1`, id)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VehicleRecord{}, fmt.Errorf("vehicle %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.VehicleRecord{}, err
	}
	return rec, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]model.VehicleRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM vehicles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []model.VehicleRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
