// Package services holds the server's business layer: vehicle record
// persistence with change-feed publication, and presigned document
// uploads.
package services

import (
	"context"
	"fmt"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
	"github.com/gateflow/gateflow/internal/server/feed"
	"github.com/gateflow/gateflow/internal/server/repositories/vehicles"
)

type VehicleService struct {
	repo vehicles.Repository
	hub  *feed.Hub
}

func NewVehicleService(repo vehicles.Repository, hub *feed.Hub) *VehicleService {
	return &VehicleService{repo: repo, hub: hub}
}

func validate(rec model.VehicleRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record id is required", common.ErrValidationRejected)
	}
	if rec.Status == "" {
		return fmt.Errorf("%w: status is required", common.ErrValidationRejected)
	}
	if rec.VehicleNumber == "" {
		return fmt.Errorf("%w: vehicle number is required", common.ErrValidationRejected)
	}
	return nil
}

func (s *VehicleService) Insert(ctx context.Context, rec model.VehicleRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return err
	}
	s.hub.Publish(model.ChangeEvent{Kind: model.ChangeInsert, Record: rec})
	return nil
}

func (s *VehicleService) Update(ctx context.Context, rec model.VehicleRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return err
	}
	s.hub.Publish(model.ChangeEvent{Kind: model.ChangeUpdate, Record: rec})
	return nil
}

func (s *VehicleService) Upsert(ctx context.Context, rec model.VehicleRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return err
	}
	s.hub.Publish(model.ChangeEvent{Kind: model.ChangeUpdate, Record: rec})
	return nil
}

func (s *VehicleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(model.ChangeEvent{Kind: model.ChangeDelete, Record: model.VehicleRecord{ID: id}})
	return nil
}

func (s *VehicleService) GetByID(ctx context.Context, id string) (model.VehicleRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VehicleService) GetAll(ctx context.Context) ([]model.VehicleRecord, error) {
	return s.repo.GetAll(ctx)
}
