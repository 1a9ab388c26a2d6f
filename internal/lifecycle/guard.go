package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

// CheckDuplicateEntry rejects a new gate entry while the same vehicle
// number is still inside the plant. Vehicle numbers are compared in
// normalized form, so "MH 12 AB-1234" and "mh12ab1234" collide.
func CheckDuplicateEntry(existing []model.VehicleRecord, vehicleNo string) error {
	want := model.NormalizeVehicleNo(vehicleNo)
	if want == "" {
		return fmt.Errorf("%w: vehicle number is required", common.ErrValidationRejected)
	}
	for _, rec := range existing {
		if !rec.Status.ActiveForEntry() {
			continue
		}
		if model.NormalizeVehicleNo(rec.VehicleNumber) == want {
			return fmt.Errorf("%w: vehicle %s already has an active entry (%s, status %s)",
				common.ErrDuplicateActiveVehicle, rec.VehicleNumber, rec.ID, rec.Status)
		}
	}
	return nil
}

// GateEntryInput is the operator-supplied portion of a new gate entry.
type GateEntryInput struct {
	ID            string
	VehicleNumber string
	Type          string
	LocationID    string
	SupplierName  string
	DriverName    string
	DriverPhone   string
	MaterialName  string
	InvoiceNo     string
	InvoiceQty    float64
	RatePerUOM    float64
	Origin        string
}

// NewGateEntry builds a draft record at the security gate. The caller is
// responsible for running CheckDuplicateEntry first.
func NewGateEntry(in GateEntryInput, actor string, now time.Time) (model.VehicleRecord, error) {
	if in.ID == "" {
		return model.VehicleRecord{}, fmt.Errorf("%w: record id is required", common.ErrValidationRejected)
	}
	no := strings.ToUpper(strings.TrimSpace(in.VehicleNumber))
	if no == "" {
		return model.VehicleRecord{}, fmt.Errorf("%w: vehicle number is required", common.ErrValidationRejected)
	}
	if strings.TrimSpace(in.SupplierName) == "" {
		return model.VehicleRecord{}, fmt.Errorf("%w: supplier name is required", common.ErrValidationRejected)
	}

	rec := model.VehicleRecord{
		ID:            in.ID,
		Status:        model.StatusAtSecurityGate,
		VehicleNumber: no,
		Type:          in.Type,
		LocationID:    in.LocationID,
		Data: model.VehicleData{
			SupplierName: strings.TrimSpace(in.SupplierName),
			DriverName:   strings.TrimSpace(in.DriverName),
			DriverPhone:  strings.TrimSpace(in.DriverPhone),
			MaterialName: strings.TrimSpace(in.MaterialName),
			InvoiceNo:    strings.TrimSpace(in.InvoiceNo),
			InvoiceQty:   in.InvoiceQty,
			RatePerUOM:   in.RatePerUOM,
			Origin:       in.Origin,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return rec.AppendLog(model.LogEntry{
		Stage:     StageSecurity,
		Action:    "Gate entry created",
		Timestamp: now,
		User:      actor,
	}), nil
}
