package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func testCtx() Context {
	return Context{Actor: "op1", Now: testNow}
}

func record(status model.Status) model.VehicleRecord {
	return model.VehicleRecord{
		ID:            "v-100",
		Status:        status,
		VehicleNumber: "MH12AB1234",
	}
}

func TestDecide_TerminalRecordIsImmutable(t *testing.T) {
	for _, status := range []model.Status{model.StatusCompleted, model.StatusReturnCompleted} {
		t.Run(string(status), func(t *testing.T) {
			_, err := Decide(record(status), EventGateOut, testCtx())
			require.ErrorIs(t, err, common.ErrValidationRejected)
		})
	}
}

func TestDecide_WrongStatusForEvent(t *testing.T) {
	_, err := Decide(record(model.StatusAtWarehouse), EventQC1Accept, testCtx())
	require.ErrorIs(t, err, common.ErrValidationRejected)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestDecide_SubmitGateEntry(t *testing.T) {
	t.Run("fresh entry goes to preliminary QC", func(t *testing.T) {
		tr, err := Decide(record(model.StatusAtSecurityGate), EventSubmitGateEntry, testCtx())
		require.NoError(t, err)
		assert.Equal(t, model.StatusAtQC1, tr.Next)
		require.NotNil(t, tr.Patch.EntryTime)
		assert.Equal(t, testNow, *tr.Patch.EntryTime)
	})

	t.Run("re-entry after unit allocation skips QC", func(t *testing.T) {
		rec := record(model.StatusAtSecurityGateEntry)
		rec.Data.QC1Status = QCAccepted
		tr, err := Decide(rec, EventSubmitGateEntry, testCtx())
		require.NoError(t, err)
		assert.Equal(t, model.StatusAtWeighbridge1, tr.Next)
	})
}

func TestDecide_QC1(t *testing.T) {
	rec := record(model.StatusAtQC1)

	t.Run("remarks mandatory", func(t *testing.T) {
		ctx := testCtx()
		ctx.Verified = true
		ctx.Remarks = "   "
		_, err := Decide(rec, EventQC1Accept, ctx)
		require.ErrorIs(t, err, common.ErrValidationRejected)
	})

	t.Run("verification mandatory", func(t *testing.T) {
		ctx := testCtx()
		ctx.Remarks = "moisture within limits"
		_, err := Decide(rec, EventQC1Accept, ctx)
		require.ErrorIs(t, err, common.ErrValidationRejected)
		assert.Contains(t, err.Error(), "verification")
	})

	t.Run("accept moves to unit allocation", func(t *testing.T) {
		ctx := testCtx()
		ctx.Verified = true
		ctx.Remarks = "moisture within limits"
		tr, err := Decide(rec, EventQC1Accept, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPendingUnitAllocation, tr.Next)
		require.NotNil(t, tr.Patch.QC1Status)
		assert.Equal(t, QCAccepted, *tr.Patch.QC1Status)
		assert.Equal(t, StageQC, tr.Log.Stage)
	})

	t.Run("reject sends vehicle back out", func(t *testing.T) {
		ctx := testCtx()
		ctx.Verified = true
		ctx.Remarks = "contamination found"
		tr, err := Decide(rec, EventQC1Reject, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAtSecurityRejectIn, tr.Next)
		require.NotNil(t, tr.Patch.QC1Status)
		assert.Equal(t, QCRejected, *tr.Patch.QC1Status)
	})
}

func TestDecide_QC2(t *testing.T) {
	t.Run("reject without supporting document", func(t *testing.T) {
		ctx := testCtx()
		ctx.Remarks = "failed lab analysis"
		_, err := Decide(record(model.StatusBayAssigned), EventQC2Reject, ctx)
		require.ErrorIs(t, err, common.ErrValidationRejected)
		assert.Contains(t, err.Error(), "supporting document")
	})

	t.Run("reject with supporting document", func(t *testing.T) {
		rec := record(model.StatusBayAssigned)
		rec.Data.SupportingDocRef = "docs/rej-7781.pdf"
		ctx := testCtx()
		ctx.Remarks = "failed lab analysis"
		tr, err := Decide(rec, EventQC2Reject, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAtWeighbridge2, tr.Next)
	})

	t.Run("observation flags the record", func(t *testing.T) {
		ctx := testCtx()
		ctx.Remarks = "borderline moisture, hold for review"
		tr, err := Decide(record(model.StatusAtQC2), EventQC2Observe, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAtWeighbridge2, tr.Next)
		require.NotNil(t, tr.Patch.Observation)
		assert.True(t, *tr.Patch.Observation)
	})
}

func TestDecide_AssignUnit(t *testing.T) {
	rec := record(model.StatusPendingUnitAllocation)

	t.Run("requires verification", func(t *testing.T) {
		ctx := testCtx()
		ctx.Unit = "UNIT-2"
		_, err := Decide(rec, EventAssignUnit, ctx)
		require.ErrorIs(t, err, common.ErrValidationRejected)
	})

	t.Run("returns vehicle to the gate", func(t *testing.T) {
		ctx := testCtx()
		ctx.Unit = "UNIT-2"
		ctx.Verified = true
		tr, err := Decide(rec, EventAssignUnit, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAtSecurityGateEntry, tr.Next)
		require.NotNil(t, tr.Patch.RegisterID)
		assert.Equal(t, "rm_inward", *tr.Patch.RegisterID)
	})
}

func TestDecide_CaptureWeight_InwardNet(t *testing.T) {
	// Gross at the first bridge, tare at the second, net is the difference.
	tr, err := Decide(record(model.StatusAtWeighbridge1), EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 25000})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAtWarehouse, tr.Next)
	require.NotNil(t, tr.Patch.Weigh1)
	assert.Equal(t, 25000.0, *tr.Patch.Weigh1)

	rec := record(model.StatusAtWeighbridge2)
	rec.Data.Weigh1 = 25000
	rec.Data.RatePerUOM = 12.5
	rec.Data.AssignedBay = "BAY-3"
	rec.Data.MaterialName = "Soy Flakes"

	tr, err = Decide(rec, EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 5000})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAtERP, tr.Next)
	require.NotNil(t, tr.Patch.NetWeight)
	assert.Equal(t, 20000.0, *tr.Patch.NetWeight)
	require.NotNil(t, tr.Patch.TotalValue)
	assert.Equal(t, 250000.0, *tr.Patch.TotalValue)

	require.NotNil(t, tr.Stock)
	assert.Equal(t, "BAY-3", tr.Stock.BayID)
	assert.Equal(t, 20000.0, tr.Stock.DeltaQty)
	assert.Equal(t, StockAdd, tr.Stock.Direction)
}

func TestDecide_CaptureWeight_InvertedReadingsStillPositive(t *testing.T) {
	rec := record(model.StatusAtWeighbridge2)
	rec.Data.Weigh1 = 4800 // operator swapped the readings

	tr, err := Decide(rec, EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 24800})
	require.NoError(t, err)
	require.NotNil(t, tr.Patch.NetWeight)
	assert.Equal(t, 20000.0, *tr.Patch.NetWeight)
}

func TestDecide_CaptureWeight_NoStockWithoutBay(t *testing.T) {
	rec := record(model.StatusAtWeighbridge2)
	rec.Data.Weigh1 = 18000

	tr, err := Decide(rec, EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 6000})
	require.NoError(t, err)
	assert.Nil(t, tr.Stock)
}

func TestDecide_CaptureWeight_RejectsNonPositive(t *testing.T) {
	for _, w := range []float64{0, -10} {
		_, err := Decide(record(model.StatusAtWeighbridge1), EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: w})
		require.ErrorIs(t, err, common.ErrValidationRejected)
	}
}

func TestDecide_CaptureWeight_ReturnFlow(t *testing.T) {
	tr, err := Decide(record(model.StatusReturnAtWeighbridge1), EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 5200})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturnAtWeighbridge2, tr.Next)

	rec := record(model.StatusReturnAtWeighbridge2)
	rec.Data.Weigh1 = 5200
	tr, err = Decide(rec, EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 9700})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturnAtERP, tr.Next)
	require.NotNil(t, tr.Patch.NetWeight)
	assert.Equal(t, 4500.0, *tr.Patch.NetWeight)
}

func TestDecide_SalesFlow(t *testing.T) {
	tr, err := Decide(record(model.StatusSalesExpected), EventSalesAdmit, testCtx())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSalesAtWeighbridge1, tr.Next)

	tr, err = Decide(record(model.StatusSalesAtWeighbridge1), EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 7000})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSalesAtLoading, tr.Next)

	tr, err = Decide(record(model.StatusSalesAtLoading), EventConfirmLoading, testCtx())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSalesAtWeighbridge2, tr.Next)

	rec := record(model.StatusSalesAtWeighbridge2)
	rec.Data.Weigh1 = 7000
	rec.Data.PlannedWeight = 12000
	tr, err = Decide(rec, EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 19100})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSalesAtSecurityExit, tr.Next)
	require.NotNil(t, tr.Patch.NetWeight)
	assert.Equal(t, 12100.0, *tr.Patch.NetWeight)
	assert.Contains(t, tr.Log.Action, "deviation")

	tr, err = Decide(record(model.StatusSalesAtSecurityExit), EventGateOut, testCtx())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, tr.Next)
}

func TestDecide_ERPReleaseAndGateOut(t *testing.T) {
	t.Run("final release completes at the gate", func(t *testing.T) {
		tr, err := Decide(record(model.StatusAtERP), EventERPRelease, testCtx())
		require.NoError(t, err)
		assert.Equal(t, model.StatusAtSecurityOut, tr.Next)
		assert.Nil(t, tr.Patch.Provisional)

		tr, err = Decide(record(model.StatusAtSecurityOut), EventGateOut, testCtx())
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, tr.Next)
	})

	t.Run("provisional release parks the record for HOD", func(t *testing.T) {
		ctx := testCtx()
		ctx.Provisional = true
		tr, err := Decide(record(model.StatusAtERP), EventERPRelease, ctx)
		require.NoError(t, err)
		require.NotNil(t, tr.Patch.Provisional)
		assert.True(t, *tr.Patch.Provisional)

		rec := record(model.StatusAtSecurityOut)
		rec.Data.Provisional = true
		tr, err = Decide(rec, EventGateOut, testCtx())
		require.NoError(t, err)
		assert.Equal(t, model.StatusProvisionalPendingHOD, tr.Next)
	})
}

func TestDecide_HOD(t *testing.T) {
	rec := record(model.StatusProvisionalPendingHOD)
	rec.Data.Provisional = true
	rec.Data.GRNNo = "P-4417"

	t.Run("approve finalizes the GRN", func(t *testing.T) {
		tr, err := Decide(rec, EventHODApprove, testCtx())
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, tr.Next)
		require.NotNil(t, tr.Patch.GRNNo)
		assert.Equal(t, "4417", *tr.Patch.GRNNo)
		require.NotNil(t, tr.Patch.Provisional)
		assert.False(t, *tr.Patch.Provisional)
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		_, err := Decide(rec, EventHODReject, testCtx())
		require.ErrorIs(t, err, common.ErrValidationRejected)
	})

	t.Run("reject opens the return flow", func(t *testing.T) {
		ctx := testCtx()
		ctx.Remarks = "short supply beyond tolerance"
		tr, err := Decide(rec, EventHODReject, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejectedReturnPending, tr.Next)
		require.NotNil(t, tr.Patch.HODDecision)
		assert.Equal(t, HODRejected, *tr.Patch.HODDecision)
	})
}

func TestDecide_ReturnEntry(t *testing.T) {
	rec := record(model.StatusRejectedReturnPending)
	rec.Data.Weigh1 = 25000
	rec.Data.NetWeight = 20000

	t.Run("vehicle number mandatory", func(t *testing.T) {
		_, err := Decide(rec, EventReturnEntry, testCtx())
		require.ErrorIs(t, err, common.ErrValidationRejected)
	})

	t.Run("resets weighments for the pickup vehicle", func(t *testing.T) {
		ctx := testCtx()
		ctx.ReturnVehicleNo = " mh14xy9900 "
		tr, err := Decide(rec, EventReturnEntry, ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusReturnAtWeighbridge1, tr.Next)
		require.NotNil(t, tr.Patch.ReturnVehicleNo)
		assert.Equal(t, "MH14XY9900", *tr.Patch.ReturnVehicleNo)
		require.NotNil(t, tr.Patch.Weigh1)
		assert.Zero(t, *tr.Patch.Weigh1)
		require.NotNil(t, tr.Patch.NetWeight)
		assert.Zero(t, *tr.Patch.NetWeight)
	})
}

func TestDecide_FullInwardScenario(t *testing.T) {
	// Walk one vehicle through the whole happy path, applying each
	// transition the way the repository layer does.
	rec, err := NewGateEntry(GateEntryInput{
		ID:            "v-200",
		VehicleNumber: "ka05mn7712",
		SupplierName:  "Agro Traders",
		MaterialName:  "Maize",
		RatePerUOM:    10,
	}, "gate1", testNow)
	require.NoError(t, err)
	assert.Equal(t, "KA05MN7712", rec.VehicleNumber)

	apply := func(ev Event, ctx Context) {
		t.Helper()
		tr, err := Decide(rec, ev, ctx)
		require.NoError(t, err)
		rec.Status = tr.Next
		tr.Patch.Apply(&rec.Data)
		rec = rec.AppendLog(tr.Log)
	}

	verified := func(remarks string) Context {
		ctx := testCtx()
		ctx.Verified = true
		ctx.Remarks = remarks
		return ctx
	}

	apply(EventSubmitGateEntry, testCtx())
	require.Equal(t, model.StatusAtQC1, rec.Status)

	apply(EventQC1Accept, verified("sample ok"))
	require.Equal(t, model.StatusPendingUnitAllocation, rec.Status)

	ctx := testCtx()
	ctx.Verified = true
	ctx.Unit = "UNIT-1"
	apply(EventAssignUnit, ctx)
	require.Equal(t, model.StatusAtSecurityGateEntry, rec.Status)

	apply(EventSubmitGateEntry, testCtx())
	require.Equal(t, model.StatusAtWeighbridge1, rec.Status)

	apply(EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 25000})
	require.Equal(t, model.StatusAtWarehouse, rec.Status)

	ctx = testCtx()
	ctx.Verified = true
	ctx.BayID = "BAY-1"
	apply(EventAssignBay, ctx)
	require.Equal(t, model.StatusBayAssigned, rec.Status)

	apply(EventQC2Accept, verified("final check ok"))
	require.Equal(t, model.StatusAtWeighbridge2, rec.Status)

	apply(EventCaptureWeight, Context{Actor: "wb", Now: testNow, Weight: 5000})
	require.Equal(t, model.StatusAtERP, rec.Status)
	require.Equal(t, 20000.0, rec.Data.NetWeight)
	require.Equal(t, 200000.0, rec.Data.TotalValue)

	apply(EventERPRelease, testCtx())
	apply(EventGateOut, testCtx())
	require.Equal(t, model.StatusCompleted, rec.Status)
	assert.Len(t, rec.Logs, 11)
}

func TestCheckDuplicateEntry(t *testing.T) {
	active := record(model.StatusAtWarehouse)
	done := record(model.StatusCompleted)
	done.ID = "v-101"

	t.Run("active record blocks, formatting ignored", func(t *testing.T) {
		err := CheckDuplicateEntry([]model.VehicleRecord{active}, "mh 12-ab 1234")
		require.ErrorIs(t, err, common.ErrDuplicateActiveVehicle)
	})

	t.Run("completed record does not block", func(t *testing.T) {
		require.NoError(t, CheckDuplicateEntry([]model.VehicleRecord{done}, "MH12AB1234"))
	})

	t.Run("provisional pending does not block re-entry", func(t *testing.T) {
		pending := record(model.StatusProvisionalPendingHOD)
		require.NoError(t, CheckDuplicateEntry([]model.VehicleRecord{pending}, "MH12AB1234"))
	})

	t.Run("different number passes", func(t *testing.T) {
		require.NoError(t, CheckDuplicateEntry([]model.VehicleRecord{active}, "GJ01CD5678"))
	})
}
