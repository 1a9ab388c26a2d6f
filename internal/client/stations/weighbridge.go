package stations

import (
	"context"

	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/model"
)

// CaptureWeight records one weighbridge reading. What the reading means
// (gross, tare, loaded) depends on where the vehicle currently is; the
// state machine owns that dispatch, and the second reading of a pair also
// computes the net weight.
func (s *Service) CaptureWeight(ctx context.Context, id string, weightKg float64, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	ectx := s.eventCtx(actor)
	ectx.Weight = weightKg
	return s.applyEvent(ctx, id, lifecycle.EventCaptureWeight, ectx)
}
