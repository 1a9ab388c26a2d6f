package model

import "time"

// DataPatch is a shallow-merge patch over VehicleData. Nil fields are left
// untouched; non-nil fields replace the current value. Transitions and
// operator corrections both produce patches so a replayed mutation is
// idempotent by identity.
type DataPatch struct {
	SupplierName *string
	DriverName   *string
	DriverPhone  *string
	MaterialName *string
	InvoiceNo    *string
	InvoiceQty   *float64
	EntryTime    *time.Time
	ExitTime     *time.Time
	RegisterID   *string
	UniqueID     *string
	Origin       *string

	QC1Status        *string
	QC1Remarks       *string
	QC2Status        *string
	QC2Remarks       *string
	Observation      *bool
	LabReportRef     *string
	SupportingDocRef *string

	Weigh1     *float64
	Weigh1Time *time.Time
	Weigh2     *float64
	Weigh2Time *time.Time
	NetWeight  *float64
	RatePerUOM *float64
	TotalValue *float64

	Unit           *string
	UnitAssignedAt *time.Time
	AssignedBay    *string
	BayAssignedAt  *time.Time

	GRNNo             *string
	GRNAmount         *float64
	DebitNoteNo       *string
	DebitAmount       *float64
	ShortQty          *float64
	DeliveryChallanNo *string
	Provisional       *bool

	HODDecision   *string
	HODRemarks    *string
	HODDecisionAt *time.Time

	ReturnVehicleNo *string
	ReturnEntryTime *time.Time

	OrderRef      *string
	PlannedWeight *float64
}

// Apply merges the patch into d.
func (p *DataPatch) Apply(d *VehicleData) {
	if p == nil {
		return
	}
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setF64 := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setTime := func(dst **time.Time, src *time.Time) {
		if src != nil {
			t := *src
			*dst = &t
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&d.SupplierName, p.SupplierName)
	setStr(&d.DriverName, p.DriverName)
	setStr(&d.DriverPhone, p.DriverPhone)
	setStr(&d.MaterialName, p.MaterialName)
	setStr(&d.InvoiceNo, p.InvoiceNo)
	setF64(&d.InvoiceQty, p.InvoiceQty)
	setTime(&d.EntryTime, p.EntryTime)
	setTime(&d.ExitTime, p.ExitTime)
	setStr(&d.RegisterID, p.RegisterID)
	setStr(&d.UniqueID, p.UniqueID)
	setStr(&d.Origin, p.Origin)

	setStr(&d.QC1Status, p.QC1Status)
	setStr(&d.QC1Remarks, p.QC1Remarks)
	setStr(&d.QC2Status, p.QC2Status)
	setStr(&d.QC2Remarks, p.QC2Remarks)
	setBool(&d.Observation, p.Observation)
	setStr(&d.LabReportRef, p.LabReportRef)
	setStr(&d.SupportingDocRef, p.SupportingDocRef)

	setF64(&d.Weigh1, p.Weigh1)
	setTime(&d.Weigh1Time, p.Weigh1Time)
	setF64(&d.Weigh2, p.Weigh2)
	setTime(&d.Weigh2Time, p.Weigh2Time)
	setF64(&d.NetWeight, p.NetWeight)
	setF64(&d.RatePerUOM, p.RatePerUOM)
	setF64(&d.TotalValue, p.TotalValue)

	setStr(&d.Unit, p.Unit)
	setTime(&d.UnitAssignedAt, p.UnitAssignedAt)
	setStr(&d.AssignedBay, p.AssignedBay)
	setTime(&d.BayAssignedAt, p.BayAssignedAt)

	setStr(&d.GRNNo, p.GRNNo)
	setF64(&d.GRNAmount, p.GRNAmount)
	setStr(&d.DebitNoteNo, p.DebitNoteNo)
	setF64(&d.DebitAmount, p.DebitAmount)
	setF64(&d.ShortQty, p.ShortQty)
	setStr(&d.DeliveryChallanNo, p.DeliveryChallanNo)
	setBool(&d.Provisional, p.Provisional)

	setStr(&d.HODDecision, p.HODDecision)
	setStr(&d.HODRemarks, p.HODRemarks)
	setTime(&d.HODDecisionAt, p.HODDecisionAt)

	setStr(&d.ReturnVehicleNo, p.ReturnVehicleNo)
	setTime(&d.ReturnEntryTime, p.ReturnEntryTime)

	setStr(&d.OrderRef, p.OrderRef)
	setF64(&d.PlannedWeight, p.PlannedWeight)
}

// RecordPatch is the unit of mutation accepted by the repository's Update:
// an optional status change plus a shallow data merge.
type RecordPatch struct {
	Status *Status
	Data   *DataPatch
}

// Helpers for building patches without temporary variables.

func Str(s string) *string        { return &s }
func F64(f float64) *float64      { return &f }
func Bool(b bool) *bool           { return &b }
func Time(t time.Time) *time.Time { return &t }
func StatusPtr(s Status) *Status  { return &s }
