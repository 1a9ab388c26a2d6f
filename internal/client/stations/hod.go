package stations

import (
	"context"

	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/model"
)

// ApproveProvisional finalizes a provisional receipt. The GRN converts to
// final and the visit closes.
func (s *Service) ApproveProvisional(ctx context.Context, id, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	return s.applyEvent(ctx, id, lifecycle.EventHODApprove, s.eventCtx(actor))
}

// RejectProvisional opens the material-return flow. A reason is mandatory.
func (s *Service) RejectProvisional(ctx context.Context, id, reason, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	ectx := s.eventCtx(actor)
	ectx.Remarks = reason
	return s.applyEvent(ctx, id, lifecycle.EventHODReject, ectx)
}
