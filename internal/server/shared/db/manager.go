// Package db wires the server's PostgreSQL connection, the embedded
// schema migrations, and the repositories built on top of it.
package db

import (
	"context"
	"database/sql"

	"github.com/gateflow/gateflow/internal/server/repositories/vehicles"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Vehicles() vehicles.Repository
}
