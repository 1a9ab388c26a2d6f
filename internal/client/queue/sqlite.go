package queue

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gateflow/gateflow/internal/model"
)

// SQLiteRepository stores queue entries in the sync_queue table of the
// client database. Seq is the SQLite rowid, so append order and drain
// order always agree.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e model.QueueEntry) (int64, error) {
	payload := string(e.Payload)
	if payload == "" {
		payload = "{}"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_queue (action, table_name, entity_id, payload, enqueued_at, retries, last_error, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Action), e.Table, e.EntityID, payload, e.EnqueuedAt, e.Retries, e.LastError, e.Failed)
	if err != nil {
		return 0, fmt.Errorf("failed to append queue entry: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) All(ctx context.Context) ([]model.QueueEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, action, table_name, entity_id, payload, enqueued_at, retries, last_error, failed
		 FROM sync_queue ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue entries: %w", err)
	}
	defer rows.Close()

	var result []model.QueueEntry
	for rows.Next() {
		var (
			e       model.QueueEntry
			action  string
			payload string
		)
		if err := rows.Scan(&e.Seq, &action, &e.Table, &e.EntityID, &payload,
			&e.EnqueuedAt, &e.Retries, &e.LastError, &e.Failed); err != nil {
			return nil, err
		}
		e.Action = model.Action(action)
		e.Payload = []byte(payload)
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) Update(ctx context.Context, e model.QueueEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_queue SET retries = ?, last_error = ?, failed = ? WHERE seq = ?`,
		e.Retries, e.LastError, e.Failed, e.Seq)
	if err != nil {
		return fmt.Errorf("failed to update queue entry: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if ra != 1 {
		return fmt.Errorf("queue entry %d: wrong rows affected count: %d", e.Seq, ra)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, seq int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE seq = ?`, seq)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ResetFailed(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_queue SET failed = 0, retries = 0, last_error = '' WHERE failed = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset failed entries: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Counts(ctx context.Context) (pending, failed int64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
			COUNT(CASE WHEN failed = 0 THEN 1 END),
			COUNT(CASE WHEN failed = 1 THEN 1 END)
		 FROM sync_queue`).Scan(&pending, &failed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return pending, failed, nil
}
