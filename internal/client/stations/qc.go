package stations

import (
	"context"
	"fmt"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/model"
)

// ProposeQC1 records a preliminary QC decision for later confirmation.
// Accept and reject both require remarks and a confirming operator.
func (s *Service) ProposeQC1(ctx context.Context, id string, accept bool, remarks, actor string) (Proposal, error) {
	if err := requireActor(actor); err != nil {
		return Proposal{}, err
	}
	ev := lifecycle.EventQC1Reject
	if accept {
		ev = lifecycle.EventQC1Accept
	}
	ectx := s.eventCtx(actor)
	ectx.Remarks = remarks
	return s.propose(ctx, id, ev, ectx)
}

// RecordFinalQC applies the post-bay inspection decision. Final QC does
// not use the confirmation exchange; the earlier weighment and the bay
// record already pin the material down.
func (s *Service) RecordFinalQC(ctx context.Context, id, decision, remarks, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}

	var ev lifecycle.Event
	switch decision {
	case lifecycle.QCAccepted:
		ev = lifecycle.EventQC2Accept
	case lifecycle.QCRejected:
		ev = lifecycle.EventQC2Reject
	case lifecycle.QCUnderObservation:
		ev = lifecycle.EventQC2Observe
	default:
		return model.VehicleRecord{}, fmt.Errorf("%w: unknown QC decision %q",
			common.ErrValidationRejected, decision)
	}

	ectx := s.eventCtx(actor)
	ectx.Remarks = remarks
	return s.applyEvent(ctx, id, ev, ectx)
}

// AttachSupportingDoc stores the uploaded document reference a final QC
// rejection requires.
func (s *Service) AttachSupportingDoc(ctx context.Context, id, docRef, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	if docRef == "" {
		return model.VehicleRecord{}, fmt.Errorf("%w: document reference is required", common.ErrValidationRejected)
	}
	return s.repo.Update(ctx, id,
		model.RecordPatch{Data: &model.DataPatch{SupportingDocRef: model.Str(docRef)}},
		model.LogEntry{Stage: lifecycle.StageQC, Action: "Supporting document attached", Timestamp: s.nowFn(), User: actor})
}
