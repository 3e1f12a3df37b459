package employee

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusResigned Status = "resigned"
)

type Employee struct {
	ID            string
	CompanyID     string
	EmployeeCode  string
	FullName      string
	Email         *string
	Department    *string
	Designation   *string
	ShiftID       *string
	DateOfJoining *time.Time
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
