// Package vehicles is the server-side persistence layer for vehicle
// records.
package vehicles

import (
	"context"

	"github.com/gateflow/gateflow/internal/model"
)

type Repository interface {
	Insert(ctx context.Context, rec model.VehicleRecord) error
	Update(ctx context.Context, rec model.VehicleRecord) error
	Upsert(ctx context.Context, rec model.VehicleRecord) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (model.VehicleRecord, error)
	GetAll(ctx context.Context) ([]model.VehicleRecord, error)
}
