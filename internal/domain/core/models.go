package core

import "time"

type Employee struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	DepartmentID    string     `json:"departmentId,omitempty"`
	DepartmentName  string     `json:"departmentName,omitempty"`
	DesignationID   string     `json:"designationId,omitempty"`
	DesignationName string     `json:"designationName,omitempty"`
	ReportingHRID   string     `json:"reportingHrId,omitempty"`
	FormatID        string     `json:"formatId,omitempty"`
	JoiningDate     *time.Time `json:"joiningDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	ParentID    string    `json:"parentId,omitempty"`
	LeaderID    string    `json:"leaderId,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Designation struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Description  string    `json:"description,omitempty"`
	DepartmentID string    `json:"departmentId,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FormatGrant is the per-quarter entitlement of one leave type inside a
// leave format.
type FormatGrant struct {
	LeaveTypeID  string  `json:"leaveTypeId"`
	TypeName     string  `json:"typeName,omitempty"`
	QuarterOne   float64 `json:"quarterOne"`
	QuarterTwo   float64 `json:"quarterTwo"`
	QuarterThree float64 `json:"quarterThree"`
	QuarterFour  float64 `json:"quarterFour"`
}

type LeaveFormat struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Grants      []FormatGrant `json:"grants,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type Holiday struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Festive     bool      `json:"festive"`
	CreatedAt   time.Time `json:"createdAt"`
}
