package payroll

import (
	"context"
	"math"
	"time"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// AttendanceSummary extends the calendar breakdown with the minute totals
// the calculator turns into overtime pay and penalties. Late, early-leave
// and overtime minutes only accumulate over days the employee was present.
type AttendanceSummary struct {
	CalendarSummary
	LateMinutes       int
	EarlyLeaveMinutes int
	OvertimeHours     float64
}

var defaultWorkingDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// attendanceSummary assembles the calendar inputs for one employee and
// delegates the day classification to SummarizeCalendar.
func (s *Service) attendanceSummary(ctx context.Context, employeeID, companyID string, start, end time.Time) (AttendanceSummary, error) {
	workingDays := s.employeeWorkingDays(ctx, employeeID, companyID)

	workingSet := make(map[string]bool, len(workingDays))
	for _, d := range workingDays {
		workingSet[d] = true
	}

	holidays, err := s.repo.GetHolidayDates(ctx, companyID, start, end)
	if err != nil {
		holidays = map[string]bool{}
	}

	leavesByDate := make(map[string][]payroll.LeaveRecord)
	leaves, err := s.repo.GetApprovedLeaves(ctx, employeeID, companyID, start, end)
	if err == nil {
		for _, lr := range leaves {
			key := lr.Date.Format(dateKeyLayout)
			leavesByDate[key] = append(leavesByDate[key], lr)
		}
	}

	attendanceByDate := make(map[string]payroll.AttendanceDay)
	var lateTotal, earlyTotal, otMinutes int
	days, err := s.repo.GetAttendanceDays(ctx, employeeID, companyID, start, end)
	if err == nil {
		for _, day := range days {
			attendanceByDate[day.Date.Format(dateKeyLayout)] = day
			if day.Status == "Absent" || day.Status == "Incomplete" ||
				day.Status == "absent" || day.Status == "incomplete" {
				continue
			}
			lateTotal += day.LateMinutes
			earlyTotal += day.EarlyLeaveMinutes
			otMinutes += day.OvertimeMinutes
		}
	}

	summary := SummarizeCalendar(start, end, workingSet, holidays, leavesByDate, attendanceByDate)

	return AttendanceSummary{
		CalendarSummary:   summary,
		LateMinutes:       lateTotal,
		EarlyLeaveMinutes: earlyTotal,
		OvertimeHours:     math.Round(float64(otMinutes)/60*100) / 100,
	}, nil
}

// employeeWorkingDays resolves the weekday pattern from the employee's
// shift, falling back to Mon-Fri when the shift lookup fails or the shift
// has no pattern configured.
func (s *Service) employeeWorkingDays(ctx context.Context, employeeID, companyID string) []string {
	days, err := s.repo.GetEmployeeWorkingDays(ctx, employeeID, companyID)
	if err != nil || len(days) == 0 {
		return defaultWorkingDays
	}
	return days
}
