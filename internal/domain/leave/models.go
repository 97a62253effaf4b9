package leave

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	ModeFullDay    = "fullday"
	ModeFirstHalf  = "1sthalf"
	ModeSecondHalf = "2ndhalf"
)

type LeaveType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Frequency string    `json:"frequency"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	FrequencyYearly    = "yearly"
	FrequencyQuarterly = "quarterly"
	FrequencyMonthly   = "monthly"
)

type Balance struct {
	LeaveTypeID   string  `json:"leaveTypeId"`
	LeaveTypeName string  `json:"leaveTypeName"`
	LeaveTypeCode string  `json:"leaveTypeCode"`
	TotalLeaves   float64 `json:"totalLeaves"`
	PendingLeaves float64 `json:"pendingLeaves"`
}

// CompanyBalance is one employee × leave type line of the company-wide
// balance report.
type CompanyBalance struct {
	UserID        string  `json:"userId"`
	EmployeeName  string  `json:"employeeName"`
	Email         string  `json:"email"`
	LeaveTypeID   string  `json:"leaveTypeId"`
	LeaveTypeName string  `json:"leaveTypeName"`
	LeaveTypeCode string  `json:"leaveTypeCode"`
	TotalLeaves   float64 `json:"totalLeaves"`
	PendingLeaves float64 `json:"pendingLeaves"`
}

// DateItem is one requested day inside a detail. Value is derived from
// Mode on the server (1 for a full day, 0.5 for either half).
type DateItem struct {
	Date   time.Time `json:"date"`
	Mode   string    `json:"type"`
	Value  float64   `json:"value"`
	Status string    `json:"status"`
}

// Detail is the per-leave-type slice of an application.
type Detail struct {
	ID          string     `json:"id"`
	LeaveTypeID string     `json:"leaveTypeId"`
	TypeName    string     `json:"typeName,omitempty"`
	LeaveCount  float64    `json:"leaveCount"`
	Dates       []DateItem `json:"dates"`
	TotalValue  float64    `json:"totalValue"`
}

type Application struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	EmployeeName string    `json:"employeeName,omitempty"`
	Subject      string    `json:"subject"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	HRComment    string    `json:"hrComment,omitempty"`
	Details      []Detail  `json:"details,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CalendarEntry struct {
	UserID       string    `json:"userId"`
	EmployeeName string    `json:"employeeName"`
	LeaveTypeID  string    `json:"leaveTypeId"`
	TypeCode     string    `json:"typeCode"`
	Date         time.Time `json:"date"`
	Mode         string    `json:"mode"`
	Status       string    `json:"status"`
}

type WFHApplication struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	EmployeeName string      `json:"employeeName,omitempty"`
	Subject      string      `json:"subject"`
	Reason       string      `json:"reason"`
	Count        float64     `json:"count"`
	Status       string      `json:"status"`
	Dates        []time.Time `json:"dates"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// CreateDetailInput is one leave-type block of a new application.
type CreateDetailInput struct {
	LeaveTypeID string
	Dates       []DateItem
}

type CreateInput struct {
	Subject string
	Reason  string
	Leaves  []CreateDetailInput
}

// AdjudicateDetailInput carries HR's per-date verdicts for one detail.
type AdjudicateDetailInput struct {
	LeaveTypeID string
	Dates       []DateItem
}

type AdjudicateInput struct {
	Details   []AdjudicateDetailInput
	Modify    []ModifyInstruction
	Approved  bool
	HRComment string
}
