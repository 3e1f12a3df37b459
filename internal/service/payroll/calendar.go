package payroll

import (
	"strings"
	"time"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// CalendarSummary is the per-employee day breakdown for a pay period.
// Day counts are fractional because leave can cover half days.
type CalendarSummary struct {
	TotalDays       int
	WorkingDays     float64
	PresentDays     float64
	PaidLeaveDays   float64
	UnpaidLeaveDays float64
	AbsentDays      float64
	WeeklyOffDays   int
	Holidays        int
	PayableDays     float64
}

const dateKeyLayout = "2006-01-02"

// SummarizeCalendar walks every date in [start, end] and classifies it.
// Weekly-off and holiday checks run before any leave or attendance logic;
// a leave that falls on a holiday contributes nothing. workingDays holds
// weekday abbreviations ("Mon".."Sun"), holidays and the per-date maps are
// keyed by "YYYY-MM-DD".
func SummarizeCalendar(
	start, end time.Time,
	workingDays map[string]bool,
	holidays map[string]bool,
	leavesByDate map[string][]payroll.LeaveRecord,
	attendanceByDate map[string]payroll.AttendanceDay,
) CalendarSummary {
	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		start, end = end, start
	}

	var s CalendarSummary
	s.TotalDays = int(end.Sub(start).Hours()/24) + 1

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateKeyLayout)
		dow := d.Format("Mon")

		isWorkDay := workingDays[dow]
		isHoliday := holidays[date]
		if !isWorkDay {
			s.WeeklyOffDays++
		}
		if isHoliday {
			s.Holidays++
		}
		if !isWorkDay || isHoliday {
			continue
		}
		s.WorkingDays += 1.0

		var leavePaid, leaveUnpaid float64
		for _, lr := range leavesByDate[date] {
			frac := dayPartFraction(lr.DayPart)
			if lr.IsPaid {
				leavePaid += frac
			} else {
				leaveUnpaid += frac
			}
		}
		leaveTotal := min(1.0, leavePaid+leaveUnpaid)
		leavePaid = min(1.0, leavePaid)
		leaveUnpaid = min(1.0, leaveUnpaid)

		s.PaidLeaveDays += leavePaid
		s.UnpaidLeaveDays += leaveUnpaid

		att, hasAtt := attendanceByDate[date]
		isPresent := hasAtt && att.Status != "Absent" && att.Status != "Incomplete" &&
			att.Status != "absent" && att.Status != "incomplete"

		if isPresent {
			s.PresentDays += max(0.0, 1.0-leaveTotal)
			continue
		}

		if missing := max(0.0, 1.0-leaveTotal); missing > 0 {
			s.AbsentDays += missing
		}
	}

	s.PayableDays = max(0.0, s.WorkingDays-s.UnpaidLeaveDays-s.AbsentDays)
	return s
}

// dayPartFraction maps a leave day part to its fraction of a working day.
// Unknown values count as a full day.
func dayPartFraction(raw string) float64 {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "full":
		return 1.0
	case "half", "am", "pm":
		return 0.5
	default:
		return 1.0
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
