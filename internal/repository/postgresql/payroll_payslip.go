package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// ========== PAYSLIPS ==========

const payslipColumns = `p.id, p.company_id, p.cycle_id, p.employee_id, p.salary_structure_id,
	p.total_days, p.working_days, p.present_days, p.paid_leave_days, p.unpaid_leave_days,
	p.absent_days, p.weekly_off_days, p.holidays, p.payable_days,
	p.late_minutes, p.early_leave_minutes, p.overtime_hours,
	p.gross_salary, p.total_deductions, p.tax_deducted, p.net_salary, p.non_taxable_earnings,
	p.payment_status, p.payment_date, p.created_at, p.updated_at,
	e.full_name, e.employee_code, e.email, e.department, e.designation`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.CycleID, &p.EmployeeID, &p.SalaryStructureID,
		&p.TotalDays, &p.WorkingDays, &p.PresentDays, &p.PaidLeaveDays, &p.UnpaidLeaveDays,
		&p.AbsentDays, &p.WeeklyOffDays, &p.Holidays, &p.PayableDays,
		&p.LateMinutes, &p.EarlyLeaveMinutes, &p.OvertimeHours,
		&p.GrossSalary, &p.TotalDeductions, &p.TaxDeducted, &p.NetSalary, &p.NonTaxableEarnings,
		&p.PaymentStatus, &p.PaymentDate, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.EmployeeCode, &p.Email, &p.Department, &p.Designation,
	)
	return p, err
}

func (r *payrollRepository) ReplacePayslip(ctx context.Context, payslip payroll.Payslip, items []payroll.PayslipItem) (string, error) {
	q := GetQuerier(ctx, r.db)

	// Refuse to regenerate once money has moved against the old payslip.
	var existingID *string
	err := q.QueryRow(ctx, `
		SELECT id FROM payslips
		WHERE cycle_id = $1 AND employee_id = $2 AND company_id = $3
	`, payslip.CycleID, payslip.EmployeeID, payslip.CompanyID).Scan(&existingID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to look up existing payslip: %w", err)
	}

	if existingID != nil {
		var paymentCount int
		err := q.QueryRow(ctx, `SELECT COUNT(id) FROM payslip_payments WHERE payslip_id = $1`, *existingID).Scan(&paymentCount)
		if err != nil {
			return "", fmt.Errorf("failed to count payslip payments: %w", err)
		}
		if paymentCount > 0 {
			return "", payroll.ErrPayslipHasPayments
		}
		if _, err := q.Exec(ctx, `DELETE FROM payslip_items WHERE payslip_id = $1`, *existingID); err != nil {
			return "", fmt.Errorf("failed to delete payslip items: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM payslips WHERE id = $1`, *existingID); err != nil {
			return "", fmt.Errorf("failed to delete payslip: %w", err)
		}
	}

	_, err = q.Exec(ctx, `
		INSERT INTO payslips (
			id, company_id, cycle_id, employee_id, salary_structure_id,
			total_days, working_days, present_days, paid_leave_days, unpaid_leave_days,
			absent_days, weekly_off_days, holidays, payable_days,
			late_minutes, early_leave_minutes, overtime_hours,
			gross_salary, total_deductions, tax_deducted, net_salary, non_taxable_earnings,
			payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23)
	`,
		payslip.ID, payslip.CompanyID, payslip.CycleID, payslip.EmployeeID, payslip.SalaryStructureID,
		payslip.TotalDays, payslip.WorkingDays, payslip.PresentDays, payslip.PaidLeaveDays, payslip.UnpaidLeaveDays,
		payslip.AbsentDays, payslip.WeeklyOffDays, payslip.Holidays, payslip.PayableDays,
		payslip.LateMinutes, payslip.EarlyLeaveMinutes, payslip.OvertimeHours,
		payslip.GrossSalary, payslip.TotalDeductions, payslip.TaxDeducted, payslip.NetSalary, payslip.NonTaxableEarnings,
		payroll.PaymentStatusPending,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert payslip: %w", err)
	}

	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err := q.Exec(ctx, `
			INSERT INTO payslip_items (id, payslip_id, name, type, amount, is_variable, loan_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, payslip.ID, item.Name, item.Type, item.Amount, item.IsVariable, item.LoanID)
		if err != nil {
			return "", fmt.Errorf("failed to insert payslip item: %w", err)
		}
	}

	return payslip.ID, nil
}

func (r *payrollRepository) GetPayslip(ctx context.Context, id, companyID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1 AND p.company_id = $2
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	p.Items, err = r.listPayslipItems(ctx, p.ID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	return p, nil
}

func (r *payrollRepository) GetPayslipByCycleEmployee(ctx context.Context, cycleID, employeeID, companyID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.cycle_id = $1 AND p.employee_id = $2 AND p.company_id = $3
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, cycleID, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	p.Items, err = r.listPayslipItems(ctx, p.ID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	return p, nil
}

func (r *payrollRepository) ListPayslipsByCycle(ctx context.Context, cycleID, companyID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.cycle_id = $1 AND p.company_id = $2
		ORDER BY e.full_name
	`

	rows, err := q.Query(ctx, query, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range payslips {
		payslips[i].Items, err = r.listPayslipItems(ctx, payslips[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return payslips, nil
}

func (r *payrollRepository) listPayslipItems(ctx context.Context, payslipID string) ([]payroll.PayslipItem, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, payslip_id, name, type, amount, is_variable, loan_id
		FROM payslip_items
		WHERE payslip_id = $1
		ORDER BY type, name
	`, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip items: %w", err)
	}
	defer rows.Close()

	var items []payroll.PayslipItem
	for rows.Next() {
		var it payroll.PayslipItem
		if err := rows.Scan(&it.ID, &it.PayslipID, &it.Name, &it.Type, &it.Amount, &it.IsVariable, &it.LoanID); err != nil {
			return nil, fmt.Errorf("failed to scan payslip item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *payrollRepository) AddPayslipItem(ctx context.Context, companyID string, item payroll.PayslipItem) error {
	q := GetQuerier(ctx, r.db)

	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO payslip_items (id, payslip_id, name, type, amount, is_variable, loan_id)
		SELECT $1, p.id, $3, $4, $5, $6, $7
		FROM payslips p
		WHERE p.id = $2 AND p.company_id = $8
	`, item.ID, item.PayslipID, item.Name, item.Type, item.Amount, item.IsVariable, item.LoanID, companyID)
	if err != nil {
		return fmt.Errorf("failed to add payslip item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}
	return nil
}

func (r *payrollRepository) UpsertPayslipItemByName(ctx context.Context, payslipID, companyID, name string, itemType payroll.ItemType, amount decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payslip_items SET amount = $4, type = $5
		WHERE payslip_id = $1 AND name = $3
		  AND payslip_id IN (SELECT id FROM payslips WHERE id = $1 AND company_id = $2)
	`, payslipID, companyID, name, amount, itemType)
	if err != nil {
		return fmt.Errorf("failed to update payslip item: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	return r.AddPayslipItem(ctx, companyID, payroll.PayslipItem{
		PayslipID:  payslipID,
		Name:       name,
		Type:       itemType,
		Amount:     amount,
		IsVariable: true,
	})
}

func (r *payrollRepository) UpdatePayslipTotals(ctx context.Context, id, companyID string, gross, deductions, tax, net decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payslips
		SET gross_salary = $3, total_deductions = $4, tax_deducted = $5, net_salary = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID, gross, deductions, tax, net)
	if err != nil {
		return fmt.Errorf("failed to update payslip totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}
	return nil
}

func (r *payrollRepository) MarkPayslipsPaid(ctx context.Context, cycleID, companyID string, paymentDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE payslips
		SET payment_status = 'paid', payment_date = $3, updated_at = NOW()
		WHERE cycle_id = $1 AND company_id = $2
	`, cycleID, companyID, paymentDate)
	if err != nil {
		return fmt.Errorf("failed to mark payslips paid: %w", err)
	}
	return nil
}

func (r *payrollRepository) SetPayslipPaymentStatus(ctx context.Context, id, companyID string, status payroll.PaymentStatus, paymentDate *time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payslips
		SET payment_status = $3, payment_date = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID, status, paymentDate)
	if err != nil {
		return fmt.Errorf("failed to set payslip payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}
	return nil
}

func (r *payrollRepository) SumPayslipItemsByName(ctx context.Context, cycleID, companyID, name string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var sum decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(i.amount), 0)
		FROM payslip_items i
		JOIN payslips p ON p.id = i.payslip_id
		WHERE p.cycle_id = $1 AND p.company_id = $2 AND i.name = $3
	`, cycleID, companyID, name).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payslip items: %w", err)
	}
	return sum, nil
}

func (r *payrollRepository) SumLoanRepaymentItems(ctx context.Context, cycleID, companyID string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var sum decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(i.amount), 0)
		FROM payslip_items i
		JOIN payslips p ON p.id = i.payslip_id
		WHERE p.cycle_id = $1 AND p.company_id = $2 AND i.loan_id IS NOT NULL
	`, cycleID, companyID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum loan repayment items: %w", err)
	}
	return sum, nil
}

// ========== PAYMENTS ==========

func (r *payrollRepository) AddPayslipPayment(ctx context.Context, payment payroll.PayslipPayment) (payroll.PayslipPayment, error) {
	q := GetQuerier(ctx, r.db)

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	query := `
		INSERT INTO payslip_payments (id, company_id, payslip_id, amount, payment_date, method, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, company_id, payslip_id, amount, payment_date, method, reference, created_at
	`

	var p payroll.PayslipPayment
	err := q.QueryRow(ctx, query,
		payment.ID, payment.CompanyID, payment.PayslipID, payment.Amount,
		payment.PaymentDate, payment.Method, payment.Reference,
	).Scan(&p.ID, &p.CompanyID, &p.PayslipID, &p.Amount, &p.PaymentDate, &p.Method, &p.Reference, &p.CreatedAt)
	if err != nil {
		return payroll.PayslipPayment{}, fmt.Errorf("failed to add payslip payment: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) ListPayslipPayments(ctx context.Context, payslipID, companyID string) ([]payroll.PayslipPayment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, payslip_id, amount, payment_date, method, reference, created_at
		FROM payslip_payments
		WHERE payslip_id = $1 AND company_id = $2
		ORDER BY payment_date, created_at
	`, payslipID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip payments: %w", err)
	}
	defer rows.Close()

	var payments []payroll.PayslipPayment
	for rows.Next() {
		var p payroll.PayslipPayment
		err := rows.Scan(&p.ID, &p.CompanyID, &p.PayslipID, &p.Amount, &p.PaymentDate, &p.Method, &p.Reference, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
