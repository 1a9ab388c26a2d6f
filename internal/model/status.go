package model

// Status names a vehicle's position in the plant workflow. The string
// values travel on the wire and in both local and remote stores, so they
// must stay stable.
type Status string

const (
	// Normal inward flow.
	StatusAtSecurityGate      Status = "AT_SECURITY_GATE"       // draft gate entry, not yet submitted
	StatusAtSecurityGateEntry Status = "AT_SECURITY_GATE_ENTRY" // back at the gate after unit allocation
	StatusAtQC1               Status = "AT_QC_1"
	StatusAtWeighbridge1      Status = "AT_WEIGHBRIDGE_1"
	StatusAtWarehouse         Status = "AT_WAREHOUSE"
	StatusBayAssigned         Status = "BAY_ASSIGNED"
	StatusAtQC2               Status = "AT_QC_2"
	StatusAtWeighbridge2      Status = "AT_WEIGHBRIDGE_2"
	StatusAtERP               Status = "AT_ERP"
	StatusAtSecurityOut       Status = "AT_SECURITY_OUT"
	StatusCompleted           Status = "COMPLETED"

	// Gate rejection and unit allocation.
	StatusAtSecurityRejectIn    Status = "AT_SECURITY_REJECT_IN"
	StatusPendingUnitAllocation Status = "PENDING_UNIT_ALLOCATION"

	// Observation / provisional flow.
	StatusProvisionalPendingHOD Status = "PROVISIONAL_PENDING_HOD"
	StatusRejectedReturnPending Status = "REJECTED_RETURN_PENDING"

	// Rejected-material return pickup.
	StatusReturnAtWeighbridge1 Status = "RETURN_AT_WEIGHBRIDGE_1"
	StatusReturnAtWeighbridge2 Status = "RETURN_AT_WEIGHBRIDGE_2"
	StatusReturnAtERP          Status = "RETURN_AT_ERP"
	StatusReturnAtSecurityOut  Status = "RETURN_AT_SECURITY_OUT"
	StatusReturnCompleted      Status = "RETURN_COMPLETED"

	// Sales dispatch.
	StatusSalesExpected       Status = "SALES_EXPECTED_AT_SECURITY"
	StatusSalesAtSecurity     Status = "SALES_AT_SECURITY"
	StatusSalesAtWeighbridge1 Status = "SALES_AT_WEIGHBRIDGE_1"
	StatusSalesAtLoading      Status = "SALES_AT_LOADING"
	StatusSalesAtWeighbridge2 Status = "SALES_AT_WEIGHBRIDGE_2"
	StatusSalesAtSecurityExit Status = "SALES_AT_SECURITY_EXIT"
)

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusReturnCompleted
}

// ActiveForEntry reports whether a record in this status blocks a new gate
// entry for the same vehicle number. Completed and provisional-pending
// records do not: the vehicle has physically left the plant.
func (s Status) ActiveForEntry() bool {
	switch s {
	case StatusCompleted, StatusReturnCompleted, StatusProvisionalPendingHOD:
		return false
	}
	return true
}
