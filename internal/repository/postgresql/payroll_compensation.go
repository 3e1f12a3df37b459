package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// ========== SALARY STRUCTURES ==========

func (r *payrollRepository) GetActiveSalaryStructure(ctx context.Context, employeeID, companyID string, asOf time.Time) (payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, effective_from, base_salary, payment_method, status, created_at
		FROM salary_structures
		WHERE employee_id = $1 AND company_id = $2 AND status = 'active' AND effective_from <= $3
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var s payroll.SalaryStructure
	err := q.QueryRow(ctx, query, employeeID, companyID, asOf).Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.EffectiveFrom, &s.BaseSalary, &s.PaymentMethod, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryStructure{}, payroll.ErrNoSalaryStructure
		}
		return payroll.SalaryStructure{}, fmt.Errorf("failed to get salary structure: %w", err)
	}

	s.Items, err = r.listStructureItems(ctx, s.ID)
	if err != nil {
		return payroll.SalaryStructure{}, err
	}
	return s, nil
}

func (r *payrollRepository) GetSalaryHistory(ctx context.Context, employeeID, companyID string) ([]payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, employee_id, effective_from, base_salary, payment_method, status, created_at
		FROM salary_structures
		WHERE employee_id = $1 AND company_id = $2
		ORDER BY effective_from DESC
	`, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get salary history: %w", err)
	}
	defer rows.Close()

	var structures []payroll.SalaryStructure
	for rows.Next() {
		var s payroll.SalaryStructure
		err := rows.Scan(&s.ID, &s.CompanyID, &s.EmployeeID, &s.EffectiveFrom, &s.BaseSalary, &s.PaymentMethod, &s.Status, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		structures = append(structures, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range structures {
		structures[i].Items, err = r.listStructureItems(ctx, structures[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return structures, nil
}

func (r *payrollRepository) listStructureItems(ctx context.Context, structureID string) ([]payroll.SalaryStructureItem, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, component_id, name, type, amount, is_percentage, percentage
		FROM salary_structure_items
		WHERE structure_id = $1
		ORDER BY type, name
	`, structureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list structure items: %w", err)
	}
	defer rows.Close()

	var items []payroll.SalaryStructureItem
	for rows.Next() {
		var it payroll.SalaryStructureItem
		err := rows.Scan(&it.ID, &it.ComponentID, &it.Name, &it.Type, &it.Amount, &it.IsPercentage, &it.Percentage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan structure item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveSalaryStructure inserts a new structure and retires any active one
// for the same employee. Old rows stay for history.
func (r *payrollRepository) SaveSalaryStructure(ctx context.Context, structure payroll.SalaryStructure) (string, error) {
	q := GetQuerier(ctx, r.db)

	if structure.ID == "" {
		structure.ID = uuid.NewString()
	}

	_, err := q.Exec(ctx, `
		UPDATE salary_structures SET status = 'superseded'
		WHERE employee_id = $1 AND company_id = $2 AND status = 'active'
	`, structure.EmployeeID, structure.CompanyID)
	if err != nil {
		return "", fmt.Errorf("failed to retire salary structure: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO salary_structures (id, company_id, employee_id, effective_from, base_salary, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
	`, structure.ID, structure.CompanyID, structure.EmployeeID, structure.EffectiveFrom, structure.BaseSalary, structure.PaymentMethod)
	if err != nil {
		return "", fmt.Errorf("failed to insert salary structure: %w", err)
	}

	for _, item := range structure.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err := q.Exec(ctx, `
			INSERT INTO salary_structure_items (id, structure_id, component_id, name, type, amount, is_percentage, percentage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, item.ID, structure.ID, item.ComponentID, item.Name, item.Type, item.Amount, item.IsPercentage, item.Percentage)
		if err != nil {
			return "", fmt.Errorf("failed to insert structure item: %w", err)
		}
	}

	return structure.ID, nil
}

// ========== COMPONENTS ==========

func (r *payrollRepository) CreateComponent(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	if component.ID == "" {
		component.ID = uuid.NewString()
	}

	query := `
		INSERT INTO salary_components (id, company_id, name, type, is_taxable, gl_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, company_id, name, type, is_taxable, gl_code, created_at
	`

	var c payroll.SalaryComponent
	err := q.QueryRow(ctx, query,
		component.ID, component.CompanyID, component.Name, component.Type, component.IsTaxable, component.GLCode,
	).Scan(&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.IsTaxable, &c.GLCode, &c.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_salary_component_name") {
			return payroll.SalaryComponent{}, payroll.ErrComponentNameExists
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to create salary component: %w", err)
	}
	return c, nil
}

func (r *payrollRepository) ListComponents(ctx context.Context, companyID string) ([]payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, name, type, is_taxable, gl_code, created_at
		FROM salary_components
		WHERE company_id = $1
		ORDER BY name
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary components: %w", err)
	}
	defer rows.Close()

	var components []payroll.SalaryComponent
	for rows.Next() {
		var c payroll.SalaryComponent
		err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.IsTaxable, &c.GLCode, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

// ========== BONUSES ==========

const bonusColumns = `b.id, b.company_id, b.employee_id, b.cycle_id, b.title, b.amount,
	b.kind, b.direction, b.taxable, b.status, b.applied_payslip_id, b.applied_at, b.created_at,
	e.full_name, e.employee_code`

func (r *payrollRepository) scanBonusRows(rows pgx.Rows) ([]payroll.Bonus, error) {
	defer rows.Close()

	var bonuses []payroll.Bonus
	for rows.Next() {
		var b payroll.Bonus
		err := rows.Scan(
			&b.ID, &b.CompanyID, &b.EmployeeID, &b.CycleID, &b.Title, &b.Amount,
			&b.Kind, &b.Direction, &b.Taxable, &b.Status, &b.AppliedPayslipID, &b.AppliedAt, &b.CreatedAt,
			&b.EmployeeName, &b.EmployeeCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bonus: %w", err)
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

// GetBonusesForEmployeeCycle returns pending and applied rows. Applied rows
// must come back so recalculating a cycle does not drop them.
func (r *payrollRepository) GetBonusesForEmployeeCycle(ctx context.Context, employeeID, cycleID, companyID string) ([]payroll.Bonus, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+bonusColumns+`
		FROM payroll_bonuses b
		JOIN employees e ON e.id = b.employee_id
		WHERE b.employee_id = $1 AND b.cycle_id = $2 AND b.company_id = $3 AND b.status <> 'cancelled'
		ORDER BY b.created_at
	`, employeeID, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonuses: %w", err)
	}
	return r.scanBonusRows(rows)
}

func (r *payrollRepository) ListBonusesByCycle(ctx context.Context, cycleID, companyID string) ([]payroll.Bonus, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+bonusColumns+`
		FROM payroll_bonuses b
		JOIN employees e ON e.id = b.employee_id
		WHERE b.cycle_id = $1 AND b.company_id = $2
		ORDER BY e.full_name, b.created_at
	`, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonuses: %w", err)
	}
	return r.scanBonusRows(rows)
}

func (r *payrollRepository) SaveBonus(ctx context.Context, bonus payroll.Bonus) (payroll.Bonus, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_bonuses (id, company_id, employee_id, cycle_id, title, amount, kind, direction, taxable, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			amount = EXCLUDED.amount,
			kind = EXCLUDED.kind,
			direction = EXCLUDED.direction,
			taxable = EXCLUDED.taxable
		WHERE payroll_bonuses.status = 'pending'
		RETURNING id, company_id, employee_id, cycle_id, title, amount, kind, direction, taxable, status,
			applied_payslip_id, applied_at, created_at
	`

	var b payroll.Bonus
	err := q.QueryRow(ctx, query,
		bonus.ID, bonus.CompanyID, bonus.EmployeeID, bonus.CycleID, bonus.Title,
		bonus.Amount, bonus.Kind, bonus.Direction, bonus.Taxable, bonus.Status,
	).Scan(
		&b.ID, &b.CompanyID, &b.EmployeeID, &b.CycleID, &b.Title, &b.Amount,
		&b.Kind, &b.Direction, &b.Taxable, &b.Status, &b.AppliedPayslipID, &b.AppliedAt, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Bonus{}, payroll.ErrBonusAlreadyApplied
		}
		return payroll.Bonus{}, fmt.Errorf("failed to save bonus: %w", err)
	}
	return b, nil
}

func (r *payrollRepository) DeleteBonus(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	var status payroll.BonusStatus
	err := q.QueryRow(ctx, `
		SELECT status FROM payroll_bonuses WHERE id = $1 AND company_id = $2
	`, id, companyID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrBonusNotFound
		}
		return fmt.Errorf("failed to get bonus: %w", err)
	}
	if status == payroll.BonusStatusApplied {
		return payroll.ErrBonusAlreadyApplied
	}

	_, err = q.Exec(ctx, `DELETE FROM payroll_bonuses WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete bonus: %w", err)
	}
	return nil
}

func (r *payrollRepository) MarkBonusesApplied(ctx context.Context, ids []string, payslipID, companyID string, appliedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE payroll_bonuses
		SET status = 'applied', applied_payslip_id = $2, applied_at = $3
		WHERE id = ANY($1) AND company_id = $4
	`, ids, payslipID, appliedAt, companyID)
	if err != nil {
		return fmt.Errorf("failed to mark bonuses applied: %w", err)
	}
	return nil
}

// ========== LOANS ==========

const loanColumns = `l.id, l.company_id, l.employee_id, l.type, l.amount, l.interest_rate,
	l.total_repayment, l.monthly_installment, l.start_date, l.status, l.note, l.created_at,
	l.total_repayment - COALESCE((SELECT SUM(amount) FROM loan_repayments WHERE loan_id = l.id), 0),
	e.full_name, e.employee_code`

func scanLoan(row pgx.Row) (payroll.Loan, error) {
	var l payroll.Loan
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.EmployeeID, &l.Type, &l.Amount, &l.InterestRate,
		&l.TotalRepayment, &l.MonthlyInstallment, &l.StartDate, &l.Status, &l.Note, &l.CreatedAt,
		&l.CurrentBalance, &l.EmployeeName, &l.EmployeeCode,
	)
	return l, err
}

func (r *payrollRepository) CreateLoan(ctx context.Context, loan payroll.Loan) (payroll.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH inserted AS (
			INSERT INTO employee_loans (id, company_id, employee_id, type, amount, interest_rate,
				total_repayment, monthly_installment, start_date, status, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING *
		)
		SELECT ` + loanColumns + `
		FROM inserted l
		JOIN employees e ON e.id = l.employee_id
	`

	created, err := scanLoan(q.QueryRow(ctx, query,
		loan.ID, loan.CompanyID, loan.EmployeeID, loan.Type, loan.Amount, loan.InterestRate,
		loan.TotalRepayment, loan.MonthlyInstallment, loan.StartDate, loan.Status, loan.Note,
	))
	if err != nil {
		return payroll.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}
	return created, nil
}

func (r *payrollRepository) GetLoan(ctx context.Context, id, companyID string) (payroll.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM employee_loans l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.id = $1 AND l.company_id = $2
	`

	l, err := scanLoan(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Loan{}, payroll.ErrLoanNotFound
		}
		return payroll.Loan{}, fmt.Errorf("failed to get loan: %w", err)
	}
	return l, nil
}

func (r *payrollRepository) ListLoans(ctx context.Context, companyID string, employeeID *string, status *payroll.LoanStatus) ([]payroll.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM employee_loans l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.company_id = $1
		  AND ($2::text IS NULL OR l.employee_id = $2)
		  AND ($3::text IS NULL OR l.status = $3)
		ORDER BY l.created_at DESC
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []payroll.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *payrollRepository) GetActiveLoans(ctx context.Context, employeeID, companyID string) ([]payroll.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM employee_loans l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.employee_id = $1 AND l.company_id = $2 AND l.status = 'active'
		ORDER BY l.start_date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active loans: %w", err)
	}
	defer rows.Close()

	var loans []payroll.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// RecordLoanRepayment inserts the repayment and closes the loan when the
// remaining balance reaches zero.
func (r *payrollRepository) RecordLoanRepayment(ctx context.Context, repayment payroll.LoanRepayment) error {
	q := GetQuerier(ctx, r.db)

	if repayment.ID == "" {
		repayment.ID = uuid.NewString()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO loan_repayments (id, company_id, loan_id, payslip_id, amount, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, repayment.ID, repayment.CompanyID, repayment.LoanID, repayment.PayslipID, repayment.Amount, repayment.PaymentDate)
	if err != nil {
		return fmt.Errorf("failed to record loan repayment: %w", err)
	}

	_, err = q.Exec(ctx, `
		UPDATE employee_loans l
		SET status = 'closed'
		WHERE l.id = $1 AND l.company_id = $2 AND l.status = 'active'
		  AND l.total_repayment - COALESCE((SELECT SUM(amount) FROM loan_repayments WHERE loan_id = l.id), 0) <= 0
	`, repayment.LoanID, repayment.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to close repaid loan: %w", err)
	}
	return nil
}

func (r *payrollRepository) UpdateLoanStatus(ctx context.Context, id, companyID string, status payroll.LoanStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employee_loans SET status = $3 WHERE id = $1 AND company_id = $2
	`, id, companyID, status)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrLoanNotFound
	}
	return nil
}

// ========== TAX SLABS ==========

func (r *payrollRepository) ListTaxSlabs(ctx context.Context, companyID string) ([]payroll.TaxSlab, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, name, min_salary, max_salary, tax_percent, created_at
		FROM tax_slabs
		WHERE company_id = $1
		ORDER BY min_salary
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax slabs: %w", err)
	}
	defer rows.Close()

	var slabs []payroll.TaxSlab
	for rows.Next() {
		var s payroll.TaxSlab
		err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.MinSalary, &s.MaxSalary, &s.TaxPercent, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax slab: %w", err)
		}
		slabs = append(slabs, s)
	}
	return slabs, rows.Err()
}

func (r *payrollRepository) SaveTaxSlab(ctx context.Context, slab payroll.TaxSlab) (payroll.TaxSlab, error) {
	q := GetQuerier(ctx, r.db)

	if slab.ID == "" {
		slab.ID = uuid.NewString()
	}

	query := `
		INSERT INTO tax_slabs (id, company_id, name, min_salary, max_salary, tax_percent)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			min_salary = EXCLUDED.min_salary,
			max_salary = EXCLUDED.max_salary,
			tax_percent = EXCLUDED.tax_percent
		RETURNING id, company_id, name, min_salary, max_salary, tax_percent, created_at
	`

	var s payroll.TaxSlab
	err := q.QueryRow(ctx, query,
		slab.ID, slab.CompanyID, slab.Name, slab.MinSalary, slab.MaxSalary, slab.TaxPercent,
	).Scan(&s.ID, &s.CompanyID, &s.Name, &s.MinSalary, &s.MaxSalary, &s.TaxPercent, &s.CreatedAt)
	if err != nil {
		return payroll.TaxSlab{}, fmt.Errorf("failed to save tax slab: %w", err)
	}
	return s, nil
}

func (r *payrollRepository) DeleteTaxSlab(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM tax_slabs WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete tax slab: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrTaxSlabNotFound
	}
	return nil
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context, companyID string) (map[string]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT key, value FROM payroll_settings WHERE company_id = $1
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan payroll setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (r *payrollRepository) SaveSetting(ctx context.Context, companyID, key, value string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO payroll_settings (company_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, companyID, key, value)
	if err != nil {
		return fmt.Errorf("failed to save payroll setting: %w", err)
	}
	return nil
}
