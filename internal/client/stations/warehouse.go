package stations

import (
	"context"

	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/model"
)

// ProposeUnitAssignment parks a unit allocation for confirmation. The
// vehicle only returns to the gate once a second operator confirms.
func (s *Service) ProposeUnitAssignment(ctx context.Context, id, unit, actor string) (Proposal, error) {
	if err := requireActor(actor); err != nil {
		return Proposal{}, err
	}
	ectx := s.eventCtx(actor)
	ectx.Unit = unit
	return s.propose(ctx, id, lifecycle.EventAssignUnit, ectx)
}

// ProposeBayAssignment parks a bay allocation for confirmation.
func (s *Service) ProposeBayAssignment(ctx context.Context, id, bayID, actor string) (Proposal, error) {
	if err := requireActor(actor); err != nil {
		return Proposal{}, err
	}
	ectx := s.eventCtx(actor)
	ectx.BayID = bayID
	return s.propose(ctx, id, lifecycle.EventAssignBay, ectx)
}

// ConfirmLoading closes the dispatch loading step and sends the vehicle
// for its loaded weighment.
func (s *Service) ConfirmLoading(ctx context.Context, id, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	return s.applyEvent(ctx, id, lifecycle.EventConfirmLoading, s.eventCtx(actor))
}
