package stations

import (
	"context"

	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/model"
)

// ReleaseFromERP clears the vehicle for exit once its documents are
// booked. A provisional release (GRN pending) routes the record to HOD
// review after gate-out instead of closing it.
func (s *Service) ReleaseFromERP(ctx context.Context, id string, provisional bool, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	ectx := s.eventCtx(actor)
	ectx.Provisional = provisional
	return s.applyEvent(ctx, id, lifecycle.EventERPRelease, ectx)
}

// RecordERPDocuments stores the booking references produced by the ERP
// operator alongside the release.
func (s *Service) RecordERPDocuments(ctx context.Context, id string, patch model.DataPatch, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	return s.repo.Update(ctx, id,
		model.RecordPatch{Data: &patch},
		model.LogEntry{Stage: lifecycle.StageERP, Action: "ERP documents recorded", Timestamp: s.nowFn(), User: actor})
}
