package leave

import (
	"github.com/shopspring/decimal"
)

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
)

// DayValue returns the ledger weight of a single requested day.
func DayValue(mode string) (decimal.Decimal, error) {
	switch mode {
	case ModeFullDay:
		return fullDay, nil
	case ModeFirstHalf, ModeSecondHalf:
		return halfDay, nil
	}
	return decimal.Zero, invalid("type", "must be fullday, 1sthalf or 2ndhalf")
}

func validStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// normalizeDates recomputes each date's value from its mode and returns
// the per-detail total. Client-supplied values are ignored.
func normalizeDates(dates []DateItem) (decimal.Decimal, error) {
	if len(dates) == 0 {
		return decimal.Zero, invalid("dates", "at least one date is required")
	}

	total := decimal.Zero
	seen := map[string]bool{}
	for i := range dates {
		value, err := DayValue(dates[i].Mode)
		if err != nil {
			return decimal.Zero, err
		}
		key := dates[i].Date.Format("2006-01-02")
		if seen[key] {
			return decimal.Zero, invalid("dates", "duplicate date "+key)
		}
		seen[key] = true
		dates[i].Value, _ = value.Float64()
		dates[i].Status = StatusPending
		total = total.Add(value)
	}
	return total, nil
}
