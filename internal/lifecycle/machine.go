package lifecycle

import (
	"fmt"
	"math"
	"strings"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

// QC decision values stored in the data bag.
const (
	QCAccepted         = "ACCEPTED"
	QCRejected         = "REJECTED"
	QCUnderObservation = "UNDER_OBSERVATION"
)

// HOD decision values.
const (
	HODApproved = "APPROVED"
	HODRejected = "REJECTED"
)

// SalesPlannedTolerance is the allowed deviation, in kilograms, between the
// loaded net weight and the dispatch plan before the weighment log flags it.
const SalesPlannedTolerance = 50.0

// Decide computes the transition for the given event. It returns
// common.ErrValidationRejected (wrapped with a reason) when a precondition
// fails; the record is never mutated.
func Decide(rec model.VehicleRecord, ev Event, ctx Context) (Transition, error) {
	if rec.Status.Terminal() {
		return Transition{}, fmt.Errorf("%w: vehicle %s is %s and accepts no further transitions",
			common.ErrValidationRejected, rec.ID, rec.Status)
	}

	switch ev {
	case EventSubmitGateEntry:
		return decideSubmitGateEntry(rec, ctx)
	case EventQC1Accept, EventQC1Reject:
		return decideQC1(rec, ev, ctx)
	case EventQC2Accept, EventQC2Reject, EventQC2Observe:
		return decideQC2(rec, ev, ctx)
	case EventAssignUnit:
		return decideAssignUnit(rec, ctx)
	case EventAssignBay:
		return decideAssignBay(rec, ctx)
	case EventCaptureWeight:
		return decideCaptureWeight(rec, ctx)
	case EventConfirmLoading:
		return decideConfirmLoading(rec, ctx)
	case EventERPRelease:
		return decideERPRelease(rec, ctx)
	case EventGateOut:
		return decideGateOut(rec, ctx)
	case EventHODApprove, EventHODReject:
		return decideHOD(rec, ev, ctx)
	case EventReturnEntry:
		return decideReturnEntry(rec, ctx)
	case EventSalesAdmit:
		return decideSalesAdmit(rec, ctx)
	default:
		return Transition{}, fmt.Errorf("%w: unknown event %q", common.ErrValidationRejected, ev)
	}
}

func rejectf(format string, args ...any) (Transition, error) {
	return Transition{}, fmt.Errorf("%w: "+format, append([]any{common.ErrValidationRejected}, args...)...)
}

func wrongStatus(rec model.VehicleRecord, ev Event) (Transition, error) {
	return rejectf("event %s not allowed in status %s", ev, rec.Status)
}

func logEntry(stage, action string, ctx Context) model.LogEntry {
	return model.LogEntry{Stage: stage, Action: action, Timestamp: ctx.Now, User: ctx.Actor}
}

func decideSubmitGateEntry(rec model.VehicleRecord, ctx Context) (Transition, error) {
	switch rec.Status {
	case model.StatusAtSecurityGate, model.StatusAtSecurityGateEntry:
	default:
		return wrongStatus(rec, EventSubmitGateEntry)
	}

	// A vehicle re-queued after unit allocation already passed preliminary
	// QC and goes straight to the weighbridge.
	next := model.StatusAtQC1
	if rec.Data.QC1Status == QCAccepted {
		next = model.StatusAtWeighbridge1
	}

	return Transition{
		Next:  next,
		Patch: model.DataPatch{EntryTime: model.Time(ctx.Now)},
		Log:   logEntry(StageSecurity, fmt.Sprintf("Entry submitted (status %s)", next), ctx),
	}, nil
}

func decideQC1(rec model.VehicleRecord, ev Event, ctx Context) (Transition, error) {
	if rec.Status != model.StatusAtQC1 {
		return wrongStatus(rec, ev)
	}
	if strings.TrimSpace(ctx.Remarks) == "" {
		return rejectf("QC remarks are mandatory")
	}
	if !ctx.Verified {
		return rejectf("QC decision requires operator data verification")
	}

	if ev == EventQC1Accept {
		return Transition{
			Next: model.StatusPendingUnitAllocation,
			Patch: model.DataPatch{
				QC1Status:  model.Str(QCAccepted),
				QC1Remarks: model.Str(ctx.Remarks),
			},
			Log: logEntry(StageQC, "QC approved and verified", ctx),
		}, nil
	}

	return Transition{
		Next: model.StatusAtSecurityRejectIn,
		Patch: model.DataPatch{
			QC1Status:  model.Str(QCRejected),
			QC1Remarks: model.Str(ctx.Remarks),
		},
		Log: logEntry(StageQC, "QC rejected and verified", ctx),
	}, nil
}

func decideQC2(rec model.VehicleRecord, ev Event, ctx Context) (Transition, error) {
	switch rec.Status {
	case model.StatusBayAssigned, model.StatusAtQC2:
	default:
		return wrongStatus(rec, ev)
	}
	if strings.TrimSpace(ctx.Remarks) == "" {
		return rejectf("QC remarks are mandatory")
	}

	switch ev {
	case EventQC2Accept:
		return Transition{
			Next: model.StatusAtWeighbridge2,
			Patch: model.DataPatch{
				QC2Status:  model.Str(QCAccepted),
				QC2Remarks: model.Str(ctx.Remarks),
			},
			Log: logEntry(StageQC, "Final QC accepted", ctx),
		}, nil

	case EventQC2Reject:
		// A final rejection needs documentary evidence on file.
		if rec.Data.SupportingDocRef == "" {
			return rejectf("supporting document is mandatory for final QC rejection")
		}
		return Transition{
			Next: model.StatusAtWeighbridge2,
			Patch: model.DataPatch{
				QC2Status:  model.Str(QCRejected),
				QC2Remarks: model.Str(ctx.Remarks),
			},
			Log: logEntry(StageQC, "Final QC rejected", ctx),
		}, nil

	default: // EventQC2Observe
		return Transition{
			Next: model.StatusAtWeighbridge2,
			Patch: model.DataPatch{
				QC2Status:   model.Str(QCUnderObservation),
				QC2Remarks:  model.Str(ctx.Remarks),
				Observation: model.Bool(true),
			},
			Log: logEntry(StageQC, "Marked under observation, proceeding to tare weighment", ctx),
		}, nil
	}
}

func decideAssignUnit(rec model.VehicleRecord, ctx Context) (Transition, error) {
	if rec.Status != model.StatusPendingUnitAllocation {
		return wrongStatus(rec, EventAssignUnit)
	}
	if ctx.Unit == "" {
		return rejectf("unit is required")
	}
	if !ctx.Verified {
		return rejectf("unit allocation requires operator data verification")
	}

	return Transition{
		Next: model.StatusAtSecurityGateEntry,
		Patch: model.DataPatch{
			Unit:           model.Str(ctx.Unit),
			UnitAssignedAt: model.Time(ctx.Now),
			RegisterID:     model.Str("rm_inward"),
		},
		Log: logEntry(StageWarehouse, fmt.Sprintf("Unit %s assigned and data verified", ctx.Unit), ctx),
	}, nil
}

func decideAssignBay(rec model.VehicleRecord, ctx Context) (Transition, error) {
	if rec.Status != model.StatusAtWarehouse {
		return wrongStatus(rec, EventAssignBay)
	}
	if ctx.BayID == "" {
		return rejectf("bay is required")
	}
	if !ctx.Verified {
		return rejectf("bay assignment requires operator data verification")
	}

	return Transition{
		Next: model.StatusBayAssigned,
		Patch: model.DataPatch{
			AssignedBay:   model.Str(ctx.BayID),
			BayAssignedAt: model.Time(ctx.Now),
		},
		Log: logEntry(StageWarehouse, fmt.Sprintf("Assigned to bay %s", ctx.BayID), ctx),
	}, nil
}

// decideCaptureWeight dispatches on the current status to decide what role
// the weighment plays. The first capture is gross for the inward flow but
// empty for return and sales flows; net weight is always |first − second|.
func decideCaptureWeight(rec model.VehicleRecord, ctx Context) (Transition, error) {
	if ctx.Weight <= 0 {
		return rejectf("weight must be positive")
	}

	switch rec.Status {
	case model.StatusAtWeighbridge1:
		return Transition{
			Next: model.StatusAtWarehouse,
			Patch: model.DataPatch{
				Weigh1:     model.F64(ctx.Weight),
				Weigh1Time: model.Time(ctx.Now),
			},
			Log: logEntry(StageWeighbridge, fmt.Sprintf("Gross weight captured: %.0f kg", ctx.Weight), ctx),
		}, nil

	case model.StatusReturnAtWeighbridge1:
		return Transition{
			Next: model.StatusReturnAtWeighbridge2,
			Patch: model.DataPatch{
				Weigh1:     model.F64(ctx.Weight),
				Weigh1Time: model.Time(ctx.Now),
			},
			Log: logEntry(StageWeighbridge, fmt.Sprintf("Empty weight captured: %.0f kg", ctx.Weight), ctx),
		}, nil

	case model.StatusSalesAtSecurity, model.StatusSalesAtWeighbridge1:
		return Transition{
			Next: model.StatusSalesAtLoading,
			Patch: model.DataPatch{
				Weigh1:     model.F64(ctx.Weight),
				Weigh1Time: model.Time(ctx.Now),
			},
			Log: logEntry(StageWeighbridge, fmt.Sprintf("Empty weight captured: %.0f kg, proceed to loading", ctx.Weight), ctx),
		}, nil

	case model.StatusAtWeighbridge2:
		net := math.Abs(rec.Data.Weigh1 - ctx.Weight)
		patch := model.DataPatch{
			Weigh2:     model.F64(ctx.Weight),
			Weigh2Time: model.Time(ctx.Now),
			NetWeight:  model.F64(net),
		}
		if rec.Data.RatePerUOM > 0 {
			patch.TotalValue = model.F64(net * rec.Data.RatePerUOM)
		}
		t := Transition{
			Next:  model.StatusAtERP,
			Patch: patch,
			Log:   logEntry(StageWeighbridge, fmt.Sprintf("Tare weight captured: %.0f kg, net %.0f kg", ctx.Weight, net), ctx),
		}
		if rec.Data.AssignedBay != "" {
			t.Stock = &StockAdjustment{
				BayID:     rec.Data.AssignedBay,
				DeltaQty:  net,
				Material:  rec.Data.MaterialName,
				Direction: StockAdd,
			}
		}
		return t, nil

	case model.StatusReturnAtWeighbridge2:
		net := math.Abs(ctx.Weight - rec.Data.Weigh1)
		return Transition{
			Next: model.StatusReturnAtERP,
			Patch: model.DataPatch{
				Weigh2:     model.F64(ctx.Weight),
				Weigh2Time: model.Time(ctx.Now),
				NetWeight:  model.F64(net),
			},
			Log: logEntry(StageWeighbridge, fmt.Sprintf("Loaded weight captured: %.0f kg, net rejected qty %.0f kg", ctx.Weight, net), ctx),
		}, nil

	case model.StatusSalesAtWeighbridge2:
		net := math.Abs(ctx.Weight - rec.Data.Weigh1)
		action := fmt.Sprintf("Sales loading completed, net %.0f kg", net)
		if rec.Data.PlannedWeight > 0 {
			if diff := net - rec.Data.PlannedWeight; math.Abs(diff) > SalesPlannedTolerance {
				action = fmt.Sprintf("%s (deviation %+.0f kg vs planned %.0f kg)", action, diff, rec.Data.PlannedWeight)
			}
		}
		return Transition{
			Next: model.StatusSalesAtSecurityExit,
			Patch: model.DataPatch{
				Weigh2:     model.F64(ctx.Weight),
				Weigh2Time: model.Time(ctx.Now),
				NetWeight:  model.F64(net),
			},
			Log: logEntry(StageWeighbridge, action, ctx),
		}, nil

	default:
		return wrongStatus(rec, EventCaptureWeight)
	}
}

func decideConfirmLoading(rec model.VehicleRecord, ctx Context) (Transition, error) {
	if rec.Status != model.StatusSalesAtLoading {
		return wrongStatus(rec, EventConfirmLoading)
	}
	return Transition{
		Next: model.StatusSalesAtWeighbridge2,
		Log:  logEntry(StageWarehouse, "Dispatch loading confirmed", ctx),
	}, nil
}

func decideERPRelease(rec model.VehicleRecord, ctx Context) (Transition, error) {
	switch rec.Status {
	case model.StatusAtERP:
		patch := model.DataPatch{}
		action := "Released from ERP"
		if ctx.Provisional {
			patch.Provisional = model.Bool(true)
			action = "Released from ERP (provisional)"
		}
		return Transition{
			Next:  model.StatusAtSecurityOut,
			Patch: patch,
			Log:   logEntry(StageERP, action, ctx),
		}, nil

	case model.StatusReturnAtERP:
		return Transition{
			Next: model.StatusReturnAtSecurityOut,
			Log:  logEntry(StageERP, "Return released from ERP", ctx),
		}, nil

	default:
		return wrongStatus(rec, EventERPRelease)
	}
}

func decideGateOut(rec model.VehicleRecord, ctx Context) (Transition, error) {
	patch := model.DataPatch{ExitTime: model.Time(ctx.Now)}

	switch rec.Status {
	case model.StatusAtSecurityOut:
		next := model.StatusCompleted
		action := "Gate out, transaction completed"
		if rec.Data.Provisional {
			next = model.StatusProvisionalPendingHOD
			action = "Gate out (provisional), pending HOD approval"
		}
		return Transition{Next: next, Patch: patch, Log: logEntry(StageSecurity, action, ctx)}, nil

	case model.StatusSalesAtSecurityExit:
		return Transition{
			Next:  model.StatusCompleted,
			Patch: patch,
			Log:   logEntry(StageSecurity, "Sales vehicle exited, transaction completed", ctx),
		}, nil

	case model.StatusAtSecurityRejectIn:
		return Transition{
			Next:  model.StatusCompleted,
			Patch: patch,
			Log:   logEntry(StageSecurity, "Rejected vehicle exited", ctx),
		}, nil

	case model.StatusReturnAtSecurityOut:
		return Transition{
			Next:  model.StatusReturnCompleted,
			Patch: patch,
			Log:   logEntry(StageSecurity, "Return vehicle exited, transaction closed", ctx),
		}, nil

	default:
		return wrongStatus(rec, EventGateOut)
	}
}

func decideHOD(rec model.VehicleRecord, ev Event, ctx Context) (Transition, error) {
	if rec.Status != model.StatusProvisionalPendingHOD {
		return wrongStatus(rec, ev)
	}

	if ev == EventHODApprove {
		patch := model.DataPatch{
			HODDecision:   model.Str(HODApproved),
			HODDecisionAt: model.Time(ctx.Now),
			Provisional:   model.Bool(false),
		}
		// A provisional GRN converts to final on approval.
		if g := rec.Data.GRNNo; strings.HasPrefix(g, "P-") {
			patch.GRNNo = model.Str(strings.TrimPrefix(g, "P-"))
		}
		return Transition{
			Next:  model.StatusCompleted,
			Patch: patch,
			Log:   logEntry(StageHOD, "HOD approved, provisional GRN finalized", ctx),
		}, nil
	}

	if strings.TrimSpace(ctx.Remarks) == "" {
		return rejectf("rejection reason is mandatory")
	}
	return Transition{
		Next: model.StatusRejectedReturnPending,
		Patch: model.DataPatch{
			HODDecision:   model.Str(HODRejected),
			HODRemarks:    model.Str(ctx.Remarks),
			HODDecisionAt: model.Time(ctx.Now),
		},
		Log: logEntry(StageHOD, fmt.Sprintf("HOD rejected: %s", ctx.Remarks), ctx),
	}, nil
}

func decideReturnEntry(rec model.VehicleRecord, ctx Context) (Transition, error) {
	if rec.Status != model.StatusRejectedReturnPending {
		return wrongStatus(rec, EventReturnEntry)
	}
	no := strings.ToUpper(strings.TrimSpace(ctx.ReturnVehicleNo))
	if no == "" {
		return rejectf("return vehicle number is required")
	}

	return Transition{
		Next: model.StatusReturnAtWeighbridge1,
		Patch: model.DataPatch{
			ReturnVehicleNo: model.Str(no),
			ReturnEntryTime: model.Time(ctx.Now),
			// Weights restart for the pickup vehicle.
			Weigh1:    model.F64(0),
			Weigh2:    model.F64(0),
			NetWeight: model.F64(0),
		},
		Log: logEntry(StageSecurity, fmt.Sprintf("Return vehicle entered: %s", no), ctx),
	}, nil
}

func decideSalesAdmit(rec model.VehicleRecord, ctx Context) (Transition, error) {
	switch rec.Status {
	case model.StatusSalesExpected, model.StatusSalesAtSecurity:
	default:
		return wrongStatus(rec, EventSalesAdmit)
	}
	return Transition{
		Next:  model.StatusSalesAtWeighbridge1,
		Patch: model.DataPatch{EntryTime: model.Time(ctx.Now)},
		Log:   logEntry(StageSecurity, "Sales vehicle admitted, moved to weighbridge for empty weight", ctx),
	}, nil
}
