package leave

import (
	"github.com/shopspring/decimal"
)

// ModifyInstruction reclassifies already-requested days from one leave
// type to another during adjudication.
type ModifyInstruction struct {
	LeaveTypeID       string  `json:"leaveTypeId"`
	ModifyLeaveTypeID string  `json:"modifyLeaveTypeId"`
	LeaveDays         float64 `json:"leaveDays"`
	ModifyDays        float64 `json:"modifyDays"`
}

// ReconciliationRow is the per-leave-type outcome of an adjudication:
// how many days HR approved, how many were rejected, and how many were
// pending in total for that type.
type ReconciliationRow struct {
	LeaveTypeID   string
	ApprovedValue decimal.Decimal
	RejectedValue decimal.Decimal
	TotalValue    decimal.Decimal
}

// reconcileDetail is one detail row as the engine sees it: the stored
// total and HR's per-date verdicts.
type reconcileDetail struct {
	LeaveTypeID string
	TotalValue  decimal.Decimal
	Dates       []DateItem
}

// Reconcile aggregates per-date verdicts into one row per leave type,
// then applies modify instructions in order. Rows come back in first
// touch order.
func Reconcile(details []reconcileDetail, modify []ModifyInstruction) []ReconciliationRow {
	rows := map[string]*ReconciliationRow{}
	var order []string

	touch := func(leaveTypeID string) *ReconciliationRow {
		if row, ok := rows[leaveTypeID]; ok {
			return row
		}
		row := &ReconciliationRow{LeaveTypeID: leaveTypeID}
		rows[leaveTypeID] = row
		order = append(order, leaveTypeID)
		return row
	}

	for _, detail := range details {
		row := touch(detail.LeaveTypeID)
		row.TotalValue = detail.TotalValue
		for _, date := range detail.Dates {
			value := decimal.NewFromFloat(date.Value)
			switch date.Status {
			case StatusApproved:
				row.ApprovedValue = row.ApprovedValue.Add(value)
			case StatusRejected:
				row.RejectedValue = row.RejectedValue.Add(value)
			}
		}
	}

	// Later instructions see the effect of earlier ones.
	for _, instr := range modify {
		if source, ok := rows[instr.LeaveTypeID]; ok {
			source.ApprovedValue = source.ApprovedValue.Sub(decimal.NewFromFloat(instr.LeaveDays))
			if source.ApprovedValue.IsNegative() {
				source.ApprovedValue = decimal.Zero
			}
			source.TotalValue = source.ApprovedValue.Add(source.RejectedValue)
		}

		modifyDays := decimal.NewFromFloat(instr.ModifyDays)
		if dest, ok := rows[instr.ModifyLeaveTypeID]; ok {
			dest.ApprovedValue = dest.ApprovedValue.Add(modifyDays)
			dest.TotalValue = dest.ApprovedValue.Add(dest.RejectedValue)
		} else {
			dest := touch(instr.ModifyLeaveTypeID)
			dest.ApprovedValue = modifyDays
			dest.TotalValue = dest.ApprovedValue.Add(dest.RejectedValue)
		}
	}

	out := make([]ReconciliationRow, 0, len(order))
	for _, id := range order {
		out = append(out, *rows[id])
	}
	return out
}
