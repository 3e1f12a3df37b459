package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// ========== CALENDAR INPUTS ==========

// GetEmployeeWorkingDays returns the weekday names of the employee's
// shift, or nil when the employee has no shift assigned.
func (r *payrollRepository) GetEmployeeWorkingDays(ctx context.Context, employeeID, companyID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	var workingDays string
	err := q.QueryRow(ctx, `
		SELECT s.working_days
		FROM employees e
		JOIN shifts s ON s.id = e.shift_id
		WHERE e.id = $1 AND e.company_id = $2
	`, employeeID, companyID).Scan(&workingDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get working days: %w", err)
	}

	var days []string
	for _, d := range strings.Split(workingDays, ",") {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	return days, nil
}

func (r *payrollRepository) GetHolidayDates(ctx context.Context, companyID string, start, end time.Time) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT date FROM holidays
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
	`, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}
	defer rows.Close()

	holidays := make(map[string]bool)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays[date.Format("2006-01-02")] = true
	}
	return holidays, rows.Err()
}

// GetApprovedLeaves expands each approved leave request into per-day rows
// clipped to the given range. Requests with no leave type count as unpaid.
func (r *payrollRepository) GetApprovedLeaves(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d::date, COALESCE(lt.code, 'unpaid'), lr.day_part, COALESCE(lt.is_paid, FALSE)
		FROM leave_requests lr
		LEFT JOIN leave_types lt ON lt.id = lr.leave_type_id
		CROSS JOIN LATERAL generate_series(
			GREATEST(lr.start_date, $3::date),
			LEAST(lr.end_date, $4::date),
			interval '1 day'
		) d
		WHERE lr.employee_id = $1 AND lr.company_id = $2 AND lr.status = 'approved'
		  AND lr.start_date <= $4 AND lr.end_date >= $3
		ORDER BY d
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved leaves: %w", err)
	}
	defer rows.Close()

	var leaves []payroll.LeaveRecord
	for rows.Next() {
		var l payroll.LeaveRecord
		if err := rows.Scan(&l.Date, &l.Type, &l.DayPart, &l.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

func (r *payrollRepository) GetAttendanceDays(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT date, status, late_minutes, early_leave_minutes, overtime_minutes, worked_minutes
		FROM attendance_days
		WHERE employee_id = $1 AND company_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date
	`, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance days: %w", err)
	}
	defer rows.Close()

	var days []payroll.AttendanceDay
	for rows.Next() {
		var d payroll.AttendanceDay
		err := rows.Scan(&d.Date, &d.Status, &d.LateMinutes, &d.EarlyLeaveMinutes, &d.OvertimeMinutes, &d.WorkedMinutes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ========== REPORTS ==========

func (r *payrollRepository) GetYearlyCost(ctx context.Context, companyID string, year int) ([]payroll.MonthlyCost, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT to_char(c.start_date, 'YYYY-MM'),
			   COALESCE(SUM(p.gross_salary), 0), COALESCE(SUM(p.net_salary), 0),
			   COALESCE(SUM(p.tax_deducted), 0), COUNT(p.id)
		FROM payroll_cycles c
		JOIN payslips p ON p.cycle_id = c.id
		WHERE c.company_id = $1 AND EXTRACT(YEAR FROM c.start_date) = $2
		GROUP BY to_char(c.start_date, 'YYYY-MM')
		ORDER BY to_char(c.start_date, 'YYYY-MM')
	`

	rows, err := q.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get yearly cost: %w", err)
	}
	defer rows.Close()

	var months []payroll.MonthlyCost
	for rows.Next() {
		var m payroll.MonthlyCost
		if err := rows.Scan(&m.Month, &m.TotalGross, &m.TotalNet, &m.TotalTax, &m.Payslips); err != nil {
			return nil, fmt.Errorf("failed to scan monthly cost: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

func (r *payrollRepository) GetEmployeePayslipHistory(ctx context.Context, employeeID, companyID string, limit int) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		JOIN payroll_cycles c ON c.id = p.cycle_id
		WHERE p.employee_id = $1 AND p.company_id = $2
		ORDER BY c.start_date DESC
		LIMIT $3
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get payslip history: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

func (r *payrollRepository) GetDepartmentCost(ctx context.Context, cycleID, companyID string) ([]payroll.DepartmentCost, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(e.department, 'Unassigned'), COUNT(p.id),
			   COALESCE(SUM(p.gross_salary), 0), COALESCE(SUM(p.net_salary), 0)
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.cycle_id = $1 AND p.company_id = $2
		GROUP BY COALESCE(e.department, 'Unassigned')
		ORDER BY COALESCE(e.department, 'Unassigned')
	`

	rows, err := q.Query(ctx, query, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get department cost: %w", err)
	}
	defer rows.Close()

	var report []payroll.DepartmentCost
	for rows.Next() {
		var d payroll.DepartmentCost
		if err := rows.Scan(&d.Department, &d.EmployeeCount, &d.TotalGross, &d.TotalNet); err != nil {
			return nil, fmt.Errorf("failed to scan department cost: %w", err)
		}
		report = append(report, d)
	}
	return report, rows.Err()
}

func (r *payrollRepository) GetOvertimeReport(ctx context.Context, cycleID, companyID string) ([]payroll.OvertimeRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.employee_code, e.full_name, COALESCE(e.department, ''), p.overtime_hours,
			   COALESCE((SELECT SUM(i.amount) FROM payslip_items i
					WHERE i.payslip_id = p.id AND i.type = 'earning' AND i.name LIKE 'Overtime%'), 0)
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.cycle_id = $1 AND p.company_id = $2 AND p.overtime_hours > 0
		ORDER BY p.overtime_hours DESC
	`

	rows, err := q.Query(ctx, query, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get overtime report: %w", err)
	}
	defer rows.Close()

	var report []payroll.OvertimeRow
	for rows.Next() {
		var o payroll.OvertimeRow
		if err := rows.Scan(&o.EmployeeCode, &o.EmployeeName, &o.Department, &o.OvertimeHours, &o.OvertimePay); err != nil {
			return nil, fmt.Errorf("failed to scan overtime row: %w", err)
		}
		report = append(report, o)
	}
	return report, rows.Err()
}

func (r *payrollRepository) GetDeductionReport(ctx context.Context, cycleID, companyID string) ([]payroll.DeductionRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.employee_code, e.full_name, i.name, i.amount
		FROM payslip_items i
		JOIN payslips p ON p.id = i.payslip_id
		JOIN employees e ON e.id = p.employee_id
		WHERE p.cycle_id = $1 AND p.company_id = $2 AND i.type = 'deduction'
		ORDER BY e.full_name, i.name
	`

	rows, err := q.Query(ctx, query, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deduction report: %w", err)
	}
	defer rows.Close()

	var report []payroll.DeductionRow
	for rows.Next() {
		var d payroll.DeductionRow
		if err := rows.Scan(&d.EmployeeCode, &d.EmployeeName, &d.DeductionName, &d.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan deduction row: %w", err)
		}
		report = append(report, d)
	}
	return report, rows.Err()
}

func (r *payrollRepository) GetPaymentSummaryForCycle(ctx context.Context, cycleID, companyID string) ([]payroll.PaymentSummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.employee_code, e.full_name, p.net_salary,
			   COALESCE(pay.total, 0), p.net_salary - COALESCE(pay.total, 0),
			   p.payment_status, pay.last_date
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		LEFT JOIN LATERAL (
			SELECT SUM(amount) AS total, MAX(payment_date) AS last_date
			FROM payslip_payments
			WHERE payslip_id = p.id
		) pay ON TRUE
		WHERE p.cycle_id = $1 AND p.company_id = $2
		ORDER BY e.full_name
	`

	rows, err := q.Query(ctx, query, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment summary: %w", err)
	}
	defer rows.Close()

	var report []payroll.PaymentSummaryRow
	for rows.Next() {
		var s payroll.PaymentSummaryRow
		err := rows.Scan(&s.EmployeeCode, &s.EmployeeName, &s.NetSalary, &s.PaidAmount, &s.Balance, &s.PaymentStatus, &s.LastPaymentDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment summary: %w", err)
		}
		report = append(report, s)
	}
	return report, rows.Err()
}
