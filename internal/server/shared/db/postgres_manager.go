package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/gateflow/gateflow/internal/server/migrations"
	"github.com/gateflow/gateflow/internal/server/repositories/vehicles"
)

type PostgresRepositoryManager struct {
	db       *sql.DB
	vehicles vehicles.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Vehicles() vehicles.Repository {
	return m.vehicles
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	vehicleRepo, err := vehicles.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("vehicle repo creation error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:       db,
		vehicles: vehicleRepo,
	}

	err = m.RunMigrations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
