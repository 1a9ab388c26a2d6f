// Package lifecycle is the pure decision layer of the vehicle workflow.
// It consumes the current record, an event and contextual data, and
// produces the next status, the fields to mutate, an audit-log entry and
// (for stock-moving transitions) a bay adjustment. It performs no I/O; the
// station handlers invoke it through the entity repository.
package lifecycle

import (
	"time"

	"github.com/gateflow/gateflow/internal/model"
)

// Event identifies a workflow action a station submits for a vehicle.
type Event string

const (
	EventSubmitGateEntry Event = "SUBMIT_GATE_ENTRY"
	EventQC1Accept       Event = "QC1_ACCEPT"
	EventQC1Reject       Event = "QC1_REJECT"
	EventQC2Accept       Event = "QC2_ACCEPT"
	EventQC2Reject       Event = "QC2_REJECT"
	EventQC2Observe      Event = "QC2_OBSERVE"
	EventAssignUnit      Event = "ASSIGN_UNIT"
	EventAssignBay       Event = "ASSIGN_BAY"
	EventCaptureWeight   Event = "CAPTURE_WEIGHT"
	EventConfirmLoading  Event = "CONFIRM_LOADING"
	EventERPRelease      Event = "ERP_RELEASE"
	EventGateOut         Event = "GATE_OUT"
	EventHODApprove      Event = "HOD_APPROVE"
	EventHODReject       Event = "HOD_REJECT"
	EventReturnEntry     Event = "RETURN_ENTRY"
	EventSalesAdmit      Event = "SALES_ADMIT"
)

// Stage labels for audit-log entries, one per station family.
const (
	StageSecurity    = "SECURITY"
	StageQC          = "QC"
	StageWeighbridge = "WEIGHBRIDGE"
	StageWarehouse   = "WAREHOUSE"
	StageERP         = "ERP"
	StageHOD         = "HOD"
)

// Context carries the event's inputs. Actor identity is explicit on every
// call; there is no ambient current user.
type Context struct {
	Actor string
	Now   time.Time

	// Verified is set by the stations layer once the operator has confirmed
	// the data-verification checkpoint. Events that require verification
	// are rejected without it, so the checkpoint cannot be bypassed by
	// calling Decide directly.
	Verified bool

	Remarks         string  // QC remarks, HOD rejection reason
	Unit            string  // EventAssignUnit
	BayID           string  // EventAssignBay
	Weight          float64 // EventCaptureWeight, kilograms
	Provisional     bool    // EventERPRelease
	ReturnVehicleNo string  // EventReturnEntry
}

// StockDirection tells the warehouse collaborator which way a bay
// adjustment moves material.
type StockDirection string

const (
	StockAdd    StockDirection = "ADD"
	StockRemove StockDirection = "REMOVE"
)

// StockAdjustment is the bay mutation a transition requires. The caller
// must apply it atomically with the status write (pre-check: adjust first,
// and only then persist the transition).
type StockAdjustment struct {
	BayID     string
	DeltaQty  float64
	Material  string
	Direction StockDirection
}

// Transition is the outcome of a decision: the status to move to, the data
// fields to merge, exactly one audit-log entry, and an optional stock
// adjustment.
type Transition struct {
	Next  model.Status
	Patch model.DataPatch
	Log   model.LogEntry
	Stock *StockAdjustment
}
