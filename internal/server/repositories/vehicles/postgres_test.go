package vehicles

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewPostgresRepository(db)
	require.NoError(t, err)
	return repo, mock
}

func sample() model.VehicleRecord {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	return model.VehicleRecord{
		ID:            "v-1",
		Status:        model.StatusAtQC1,
		VehicleNumber: "MH12AB1234",
		Data:          model.VehicleData{SupplierName: "Agro Traders"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestInsert(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO vehicles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), sample()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DuplicateBecomesAlreadyExists(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO vehicles`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "vehicles_pkey"})

	err := repo.Insert(context.Background(), sample())
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestUpdate_MissingRowBecomesNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE vehicles`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), sample())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM vehicles`).
		WithArgs("v-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "v-1"))
}

func TestGetByID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "status", "vehicle_number", "type", "location_id", "data", "logs", "created_at", "updated_at",
	}).AddRow("v-1", "AT_QC_1", "MH12AB1234", "", "",
		[]byte(`{"supplierName":"Agro Traders"}`), []byte(`[]`), now, now)

	mock.ExpectQuery(`SELECT .+ FROM vehicles WHERE id`).
		WithArgs("v-1").
		WillReturnRows(rows)

	rec, err := repo.GetByID(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAtQC1, rec.Status)
	assert.Equal(t, "Agro Traders", rec.Data.SupplierName)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM vehicles WHERE id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAll(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "status", "vehicle_number", "type", "location_id", "data", "logs", "created_at", "updated_at",
	}).
		AddRow("v-1", "AT_QC_1", "MH12AB1234", "", "", []byte(`{}`), []byte(`[]`), now, now).
		AddRow("v-2", "AT_ERP", "GJ01CD5678", "", "", []byte(`{}`), []byte(`[]`), now, now)

	mock.ExpectQuery(`SELECT .+ FROM vehicles ORDER BY`).WillReturnRows(rows)

	recs, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.StatusAtERP, recs[1].Status)
}
