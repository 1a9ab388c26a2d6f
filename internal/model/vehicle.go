// Package model holds the data types shared by the sync layer, the
// lifecycle state machine and the remote store: the VehicleRecord
// aggregate, queue and cache entries, and change-feed events.
package model

import (
	"strconv"
	"strings"
	"time"
)

// LogEntry is one line of a vehicle's append-only audit trail. Logs are
// only ever appended, never rewritten or reordered.
type LogEntry struct {
	Stage     string    `json:"stage"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
}

// VehicleData carries the per-station workflow fields. Different stations
// fill different groups; everything is optional so any station can add its
// fields without disturbing the others. The sync layer treats the whole
// struct as opaque payload.
type VehicleData struct {
	// Security gate.
	SupplierName string     `json:"supplierName,omitempty"`
	DriverName   string     `json:"driverName,omitempty"`
	DriverPhone  string     `json:"driverPhone,omitempty"`
	MaterialName string     `json:"materialName,omitempty"`
	InvoiceNo    string     `json:"invoiceNo,omitempty"`
	InvoiceQty   float64    `json:"invoiceQty,omitempty"`
	EntryTime    *time.Time `json:"entryTime,omitempty"`
	ExitTime     *time.Time `json:"exitTime,omitempty"`
	RegisterID   string     `json:"registerId,omitempty"`
	UniqueID     string     `json:"uniqueID,omitempty"`
	Origin       string     `json:"origin,omitempty"`

	// QC.
	QC1Status        string `json:"qc1Status,omitempty"`
	QC1Remarks       string `json:"qc1Remarks,omitempty"`
	QC2Status        string `json:"qc2Status,omitempty"`
	QC2Remarks       string `json:"qc2Remarks,omitempty"`
	Observation      bool   `json:"isObservation,omitempty"`
	LabReportRef     string `json:"labReportRef,omitempty"`
	SupportingDocRef string `json:"supportingDocRef,omitempty"`

	// Weighbridge.
	Weigh1     float64    `json:"weigh1,omitempty"`
	Weigh1Time *time.Time `json:"weigh1Time,omitempty"`
	Weigh2     float64    `json:"weigh2,omitempty"`
	Weigh2Time *time.Time `json:"weigh2Time,omitempty"`
	NetWeight  float64    `json:"netWeight,omitempty"`
	RatePerUOM float64    `json:"ratePerUOM,omitempty"`
	TotalValue float64    `json:"totalValue,omitempty"`

	// Warehouse.
	Unit           string     `json:"unit,omitempty"`
	UnitAssignedAt *time.Time `json:"unitAssignedAt,omitempty"`
	AssignedBay    string     `json:"assignedBay,omitempty"`
	BayAssignedAt  *time.Time `json:"bayAssignedAt,omitempty"`

	// ERP documents.
	GRNNo             string  `json:"grnNo,omitempty"`
	GRNAmount         float64 `json:"grnAmount,omitempty"`
	DebitNoteNo       string  `json:"debitNoteNo,omitempty"`
	DebitAmount       float64 `json:"debitAmount,omitempty"`
	ShortQty          float64 `json:"shortQty,omitempty"`
	DeliveryChallanNo string  `json:"deliveryChallanNo,omitempty"`
	Provisional       bool    `json:"isProvisional,omitempty"`

	// HOD review.
	HODDecision   string     `json:"hodDecision,omitempty"`
	HODRemarks    string     `json:"hodRemarks,omitempty"`
	HODDecisionAt *time.Time `json:"hodDecisionTime,omitempty"`

	// Return pickup.
	ReturnVehicleNo string     `json:"returnVehicleNo,omitempty"`
	ReturnEntryTime *time.Time `json:"returnEntryTime,omitempty"`

	// Sales dispatch.
	OrderRef      string  `json:"orderRef,omitempty"`
	PlannedWeight float64 `json:"plannedWeight,omitempty"`
}

// VehicleRecord is the aggregate root: one physical vehicle visit moving
// through the plant. ID is caller-assigned and is the merge key for cache,
// queue and live updates.
type VehicleRecord struct {
	ID            string      `json:"id"`
	Status        Status      `json:"status"`
	VehicleNumber string      `json:"vehicle_number"`
	Type          string      `json:"type,omitempty"`
	LocationID    string      `json:"location_id,omitempty"`
	Data          VehicleData `json:"data"`
	Logs          []LogEntry  `json:"logs"`
	CreatedAt     time.Time   `json:"created_at,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at,omitempty"`
}

// AppendLog returns a copy of the record with the entry appended. The
// receiver's log slice is never shared with the result.
func (r VehicleRecord) AppendLog(e LogEntry) VehicleRecord {
	logs := make([]LogEntry, 0, len(r.Logs)+1)
	logs = append(logs, r.Logs...)
	logs = append(logs, e)
	r.Logs = logs
	return r
}

// CacheEntry is the locally persisted projection of a VehicleRecord.
// Synced flips to true once the record is confirmed written to the remote
// store.
type CacheEntry struct {
	Record VehicleRecord
	Synced bool
}

// NormalizeID folds the different identity encodings seen on the wire (a
// numeric id and its string form, JSON numbers decoded as float64) into one
// canonical string so identity comparison never produces duplicates.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// NormalizeVehicleNo canonicalizes a vehicle registration number for the
// duplicate-entry guard: case, surrounding space and separators are not
// significant.
func NormalizeVehicleNo(no string) string {
	no = strings.ToUpper(strings.TrimSpace(no))
	no = strings.ReplaceAll(no, " ", "")
	no = strings.ReplaceAll(no, "-", "")
	return no
}
