package core

import "time"

// JoiningQuarter maps a joining date onto the fiscal quarter it falls
// in. The fiscal year starts in April: Apr-Jun is Q1, Jul-Sep Q2,
// Oct-Dec Q3 and Jan-Mar Q4.
func JoiningQuarter(date time.Time) int {
	switch date.Month() {
	case time.April, time.May, time.June:
		return 1
	case time.July, time.August, time.September:
		return 2
	case time.October, time.November, time.December:
		return 3
	default:
		return 4
	}
}

// InitialEntitlement sums a grant's quarterly allowances from the
// joining quarter through the end of the fiscal year.
func InitialEntitlement(grant FormatGrant, joiningQuarter int) float64 {
	quarters := []float64{grant.QuarterOne, grant.QuarterTwo, grant.QuarterThree, grant.QuarterFour}
	if joiningQuarter < 1 {
		joiningQuarter = 1
	}
	if joiningQuarter > 4 {
		joiningQuarter = 4
	}
	var total float64
	for _, amount := range quarters[joiningQuarter-1:] {
		total += amount
	}
	return total
}
