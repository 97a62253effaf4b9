package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int, value float64, status string) DateItem {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mode := ModeFullDay
	if value == 0.5 {
		mode = ModeFirstHalf
	}
	return DateItem{
		Date:   base.AddDate(0, 0, offset),
		Mode:   mode,
		Value:  value,
		Status: status,
	}
}

func detail(typeID string, total float64, dates ...DateItem) reconcileDetail {
	return reconcileDetail{
		LeaveTypeID: typeID,
		TotalValue:  decimal.NewFromFloat(total),
		Dates:       dates,
	}
}

func rowFor(t *testing.T, rows []ReconciliationRow, typeID string) ReconciliationRow {
	t.Helper()
	for _, row := range rows {
		if row.LeaveTypeID == typeID {
			return row
		}
	}
	t.Fatalf("no row for leave type %s", typeID)
	return ReconciliationRow{}
}

func TestReconcilePartitionsByStatus(t *testing.T) {
	rows := Reconcile([]reconcileDetail{
		detail("cl", 3,
			day(0, 1, StatusApproved),
			day(1, 1, StatusApproved),
			day(2, 1, StatusRejected),
		),
	}, nil)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].ApprovedValue.Equal(decimal.NewFromInt(2)))
	assert.True(t, rows[0].RejectedValue.Equal(decimal.NewFromInt(1)))
	assert.True(t, rows[0].TotalValue.Equal(decimal.NewFromInt(3)))
}

func TestReconcileHalfDays(t *testing.T) {
	rows := Reconcile([]reconcileDetail{
		detail("sl", 1.5,
			day(0, 0.5, StatusApproved),
			day(1, 0.5, StatusApproved),
			day(2, 0.5, StatusRejected),
		),
	}, nil)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].ApprovedValue.Equal(decimal.NewFromInt(1)))
	assert.True(t, rows[0].RejectedValue.Equal(decimal.NewFromFloat(0.5)))
}

func TestReconcileModifyMovesDaysBetweenExistingRows(t *testing.T) {
	rows := Reconcile([]reconcileDetail{
		detail("wfh", 2, day(0, 1, StatusApproved), day(1, 1, StatusApproved)),
		detail("cl", 1, day(2, 1, StatusApproved)),
	}, []ModifyInstruction{
		{LeaveTypeID: "wfh", ModifyLeaveTypeID: "cl", LeaveDays: 2, ModifyDays: 1},
	})

	wfh := rowFor(t, rows, "wfh")
	assert.True(t, wfh.ApprovedValue.IsZero())
	assert.True(t, wfh.TotalValue.IsZero())

	cl := rowFor(t, rows, "cl")
	assert.True(t, cl.ApprovedValue.Equal(decimal.NewFromInt(2)))
	assert.True(t, cl.TotalValue.Equal(decimal.NewFromInt(2)))
}

func TestReconcileModifyCreatesDestinationRow(t *testing.T) {
	rows := Reconcile([]reconcileDetail{
		detail("wfh", 2, day(0, 1, StatusApproved), day(1, 1, StatusApproved)),
	}, []ModifyInstruction{
		{LeaveTypeID: "wfh", ModifyLeaveTypeID: "cl", LeaveDays: 2, ModifyDays: 1},
	})

	require.Len(t, rows, 2)
	wfh := rowFor(t, rows, "wfh")
	assert.True(t, wfh.ApprovedValue.IsZero())

	cl := rowFor(t, rows, "cl")
	assert.True(t, cl.ApprovedValue.Equal(decimal.NewFromInt(1)))
	assert.True(t, cl.RejectedValue.IsZero())
	assert.True(t, cl.TotalValue.Equal(decimal.NewFromInt(1)), "new rows keep totalValue consistent with approved+rejected")
}

func TestReconcileModifyFloorsAtZero(t *testing.T) {
	rows := Reconcile([]reconcileDetail{
		detail("cl", 1, day(0, 1, StatusApproved)),
	}, []ModifyInstruction{
		{LeaveTypeID: "cl", ModifyLeaveTypeID: "el", LeaveDays: 5, ModifyDays: 1},
	})

	cl := rowFor(t, rows, "cl")
	assert.True(t, cl.ApprovedValue.IsZero(), "over-subtraction floors at zero")
	assert.True(t, cl.TotalValue.IsZero())
}

func TestReconcileModifyOrderMatters(t *testing.T) {
	details := []reconcileDetail{
		detail("cl", 2, day(0, 1, StatusApproved), day(1, 1, StatusApproved)),
	}
	modify := []ModifyInstruction{
		{LeaveTypeID: "cl", ModifyLeaveTypeID: "el", LeaveDays: 1, ModifyDays: 1},
		{LeaveTypeID: "el", ModifyLeaveTypeID: "cl", LeaveDays: 1, ModifyDays: 0.5},
	}

	rows := Reconcile(details, modify)

	el := rowFor(t, rows, "el")
	assert.True(t, el.ApprovedValue.IsZero(), "second instruction drains what the first added")

	cl := rowFor(t, rows, "cl")
	assert.True(t, cl.ApprovedValue.Equal(decimal.NewFromFloat(1.5)))
}

func TestReconcileRejectedDaysSurviveModify(t *testing.T) {
	rows := Reconcile([]reconcileDetail{
		detail("cl", 3,
			day(0, 1, StatusApproved),
			day(1, 1, StatusApproved),
			day(2, 1, StatusRejected),
		),
	}, []ModifyInstruction{
		{LeaveTypeID: "cl", ModifyLeaveTypeID: "el", LeaveDays: 2, ModifyDays: 2},
	})

	cl := rowFor(t, rows, "cl")
	assert.True(t, cl.ApprovedValue.IsZero())
	assert.True(t, cl.RejectedValue.Equal(decimal.NewFromInt(1)))
	assert.True(t, cl.TotalValue.Equal(decimal.NewFromInt(1)))
}

func TestReconcileKeepsFirstTouchOrder(t *testing.T) {
	rows := Reconcile([]reconcileDetail{
		detail("cl", 1, day(0, 1, StatusApproved)),
		detail("wfh", 1, day(1, 1, StatusApproved)),
	}, []ModifyInstruction{
		{LeaveTypeID: "wfh", ModifyLeaveTypeID: "el", LeaveDays: 1, ModifyDays: 1},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "cl", rows[0].LeaveTypeID)
	assert.Equal(t, "wfh", rows[1].LeaveTypeID)
	assert.Equal(t, "el", rows[2].LeaveTypeID)
}
