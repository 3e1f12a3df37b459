package attendance

import "time"

type PunchType string

const (
	PunchIn  PunchType = "in"
	PunchOut PunchType = "out"
)

// Event is a raw punch captured by a terminal or the mobile app.
type Event struct {
	ID         string
	CompanyID  string
	EmployeeID string
	PunchedAt  time.Time
	Type       PunchType
	Source     *string
	CreatedAt  time.Time
}

type DayStatus string

const (
	DayStatusPresent    DayStatus = "present"
	DayStatusIncomplete DayStatus = "incomplete"
	DayStatusAbsent     DayStatus = "absent"
)

// Day is the derived per-employee, per-date attendance row payroll reads.
type Day struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	Date              time.Time
	Status            DayStatus
	FirstIn           *time.Time
	LastOut           *time.Time
	WorkedMinutes     int
	LateMinutes       int
	EarlyLeaveMinutes int
	OvertimeMinutes   int
	UpdatedAt         time.Time
}

// Shift holds the expected working window used to derive late and early
// leave minutes. Times are minutes from midnight.
type Shift struct {
	ID           string
	CompanyID    string
	Name         string
	StartMinutes int
	EndMinutes   int
	WorkingDays  []string
}
