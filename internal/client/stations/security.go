package stations

import (
	"context"

	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/model"
)

// CreateGateEntry registers a fresh vehicle at the security gate. The
// duplicate guard runs before anything is written: a vehicle number with
// an active record anywhere in the plant is rejected outright.
func (s *Service) CreateGateEntry(ctx context.Context, in lifecycle.GateEntryInput, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return model.VehicleRecord{}, err
	}
	if err := lifecycle.CheckDuplicateEntry(existing, in.VehicleNumber); err != nil {
		return model.VehicleRecord{}, err
	}

	rec, err := lifecycle.NewGateEntry(in, actor, s.nowFn())
	if err != nil {
		return model.VehicleRecord{}, err
	}
	if err := s.repo.Add(ctx, rec); err != nil {
		return model.VehicleRecord{}, err
	}
	if s.logger != nil {
		s.logger.Info(ctx, "gate entry created", "id", rec.ID, "vehicle", rec.VehicleNumber)
	}
	return rec, nil
}

// SubmitGateEntry moves a draft entry into the plant.
func (s *Service) SubmitGateEntry(ctx context.Context, id, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	return s.applyEvent(ctx, id, lifecycle.EventSubmitGateEntry, s.eventCtx(actor))
}

// GateOut records the vehicle leaving the plant, closing the visit or
// parking it for HOD review when the release was provisional.
func (s *Service) GateOut(ctx context.Context, id, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	return s.applyEvent(ctx, id, lifecycle.EventGateOut, s.eventCtx(actor))
}

// AdmitSalesVehicle lets an expected dispatch vehicle in and sends it to
// the weighbridge for its empty weight.
func (s *Service) AdmitSalesVehicle(ctx context.Context, id, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	return s.applyEvent(ctx, id, lifecycle.EventSalesAdmit, s.eventCtx(actor))
}

// RegisterReturnVehicle admits the pickup vehicle for HOD-rejected
// material.
func (s *Service) RegisterReturnVehicle(ctx context.Context, id, returnVehicleNo, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	ectx := s.eventCtx(actor)
	ectx.ReturnVehicleNo = returnVehicleNo
	return s.applyEvent(ctx, id, lifecycle.EventReturnEntry, ectx)
}
