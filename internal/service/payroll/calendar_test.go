package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

var monToFri = map[string]bool{"Mon": true, "Tue": true, "Wed": true, "Thu": true, "Fri": true}

func TestSummarizeCalendarFullAttendance(t *testing.T) {
	// June 2025: 30 days, 21 weekdays, 9 weekend days.
	start := date(2025, time.June, 1)
	end := date(2025, time.June, 30)

	attendance := make(map[string]payroll.AttendanceDay)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		attendance[d.Format("2006-01-02")] = payroll.AttendanceDay{Date: d, Status: "Present"}
	}

	s := SummarizeCalendar(start, end, monToFri, nil, nil, attendance)

	assert.Equal(t, 30, s.TotalDays)
	assert.Equal(t, 9, s.WeeklyOffDays)
	assert.Equal(t, 0, s.Holidays)
	assert.InDelta(t, 21.0, s.WorkingDays, 0.001)
	assert.InDelta(t, 21.0, s.PresentDays, 0.001)
	assert.InDelta(t, 0.0, s.AbsentDays, 0.001)
	assert.InDelta(t, 21.0, s.PayableDays, 0.001)
}

func TestSummarizeCalendarNoAttendanceIsAbsent(t *testing.T) {
	start := date(2025, time.June, 2) // Monday
	end := date(2025, time.June, 6)   // Friday

	s := SummarizeCalendar(start, end, monToFri, nil, nil, nil)

	assert.InDelta(t, 5.0, s.WorkingDays, 0.001)
	assert.InDelta(t, 5.0, s.AbsentDays, 0.001)
	assert.InDelta(t, 0.0, s.PayableDays, 0.001)
}

func TestSummarizeCalendarHolidayBeatsLeaveAndAttendance(t *testing.T) {
	start := date(2025, time.June, 2)
	end := date(2025, time.June, 6)

	holidays := map[string]bool{"2025-06-04": true}
	leaves := map[string][]payroll.LeaveRecord{
		"2025-06-04": {{Date: date(2025, time.June, 4), DayPart: "full", IsPaid: false}},
	}
	attendance := make(map[string]payroll.AttendanceDay)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		attendance[d.Format("2006-01-02")] = payroll.AttendanceDay{Date: d, Status: "Present"}
	}

	s := SummarizeCalendar(start, end, monToFri, holidays, leaves, attendance)

	assert.Equal(t, 1, s.Holidays)
	assert.InDelta(t, 4.0, s.WorkingDays, 0.001)
	assert.InDelta(t, 0.0, s.UnpaidLeaveDays, 0.001, "leave on a holiday must not count")
	assert.InDelta(t, 4.0, s.PresentDays, 0.001)
	assert.InDelta(t, 4.0, s.PayableDays, 0.001)
}

func TestSummarizeCalendarHalfDayLeaves(t *testing.T) {
	start := date(2025, time.June, 2)
	end := date(2025, time.June, 3)

	leaves := map[string][]payroll.LeaveRecord{
		// Monday: half paid, present the other half.
		"2025-06-02": {{Date: date(2025, time.June, 2), DayPart: "am", IsPaid: true}},
		// Tuesday: half unpaid and no attendance, the rest is absence.
		"2025-06-03": {{Date: date(2025, time.June, 3), DayPart: "pm", IsPaid: false}},
	}
	attendance := map[string]payroll.AttendanceDay{
		"2025-06-02": {Date: date(2025, time.June, 2), Status: "Present"},
	}

	s := SummarizeCalendar(start, end, monToFri, nil, leaves, attendance)

	assert.InDelta(t, 0.5, s.PaidLeaveDays, 0.001)
	assert.InDelta(t, 0.5, s.UnpaidLeaveDays, 0.001)
	assert.InDelta(t, 0.5, s.PresentDays, 0.001)
	assert.InDelta(t, 0.5, s.AbsentDays, 0.001)
	// payable = working - unpaid - absent = 2 - 0.5 - 0.5
	assert.InDelta(t, 1.0, s.PayableDays, 0.001)
}

func TestSummarizeCalendarLeaveClampsAtOneDay(t *testing.T) {
	start := date(2025, time.June, 2)
	end := date(2025, time.June, 2)

	// Two full-day records on the same date must not count twice.
	leaves := map[string][]payroll.LeaveRecord{
		"2025-06-02": {
			{Date: date(2025, time.June, 2), DayPart: "full", IsPaid: true},
			{Date: date(2025, time.June, 2), DayPart: "full", IsPaid: true},
		},
	}

	s := SummarizeCalendar(start, end, monToFri, nil, leaves, nil)

	assert.InDelta(t, 1.0, s.PaidLeaveDays, 0.001)
	assert.InDelta(t, 0.0, s.AbsentDays, 0.001)
	assert.InDelta(t, 1.0, s.PayableDays, 0.001)
}

func TestSummarizeCalendarIncompleteCountsAsAbsent(t *testing.T) {
	start := date(2025, time.June, 2)
	end := date(2025, time.June, 2)

	attendance := map[string]payroll.AttendanceDay{
		"2025-06-02": {Date: date(2025, time.June, 2), Status: "Incomplete"},
	}

	s := SummarizeCalendar(start, end, monToFri, nil, nil, attendance)

	assert.InDelta(t, 0.0, s.PresentDays, 0.001)
	assert.InDelta(t, 1.0, s.AbsentDays, 0.001)
}

func TestSummarizeCalendarSwappedRange(t *testing.T) {
	s := SummarizeCalendar(date(2025, time.June, 6), date(2025, time.June, 2), monToFri, nil, nil, nil)
	assert.Equal(t, 5, s.TotalDays)
}

func TestDayPartFraction(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"full", 1.0},
		{"", 1.0},
		{"half", 0.5},
		{"AM", 0.5},
		{"pm", 0.5},
		{"something-else", 1.0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, dayPartFraction(c.in), 0.001, "dayPartFraction(%q)", c.in)
	}
}
