package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/crypto"
	"github.com/tovfikur/attsys-sub001/internal/pkg/database"
)

type payrollRepository struct {
	db        *database.DB
	encryptor *crypto.Encryptor
}

func NewPayrollRepository(db *database.DB, encryptor *crypto.Encryptor) payroll.Repository {
	return &payrollRepository{db: db, encryptor: encryptor}
}

func (r *payrollRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, r.db, fn)
}

// ========== CYCLES ==========

const cycleColumns = `id, company_id, name, start_date, end_date, status,
	approved_by, approved_at, processed_at, created_at, updated_at`

func scanCycle(row pgx.Row) (payroll.Cycle, error) {
	var c payroll.Cycle
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.StartDate, &c.EndDate, &c.Status,
		&c.ApprovedBy, &c.ApprovedAt, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *payrollRepository) CreateCycle(ctx context.Context, cycle payroll.Cycle) (payroll.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_cycles (id, company_id, name, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + cycleColumns

	created, err := scanCycle(q.QueryRow(ctx, query,
		cycle.ID, cycle.CompanyID, cycle.Name, cycle.StartDate, cycle.EndDate, cycle.Status,
	))
	if err != nil {
		return payroll.Cycle{}, fmt.Errorf("failed to create payroll cycle: %w", err)
	}
	return created, nil
}

func (r *payrollRepository) GetCycle(ctx context.Context, id, companyID string) (payroll.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles WHERE id = $1 AND company_id = $2`

	c, err := scanCycle(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Cycle{}, payroll.ErrCycleNotFound
		}
		return payroll.Cycle{}, fmt.Errorf("failed to get payroll cycle: %w", err)
	}
	return c, nil
}

func (r *payrollRepository) GetCycleForUpdate(ctx context.Context, id, companyID string) (payroll.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles WHERE id = $1 AND company_id = $2 FOR UPDATE`

	c, err := scanCycle(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Cycle{}, payroll.ErrCycleNotFound
		}
		return payroll.Cycle{}, fmt.Errorf("failed to lock payroll cycle: %w", err)
	}
	return c, nil
}

func (r *payrollRepository) ListCycles(ctx context.Context, companyID string) ([]payroll.CycleSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, c.company_id, c.name, c.start_date, c.end_date, c.status,
			   c.approved_by, c.approved_at, c.processed_at, c.created_at, c.updated_at,
			   COUNT(p.id), COALESCE(SUM(p.net_salary), 0)
		FROM payroll_cycles c
		LEFT JOIN payslips p ON p.cycle_id = c.id
		WHERE c.company_id = $1
		GROUP BY c.id
		ORDER BY c.start_date DESC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll cycles: %w", err)
	}
	defer rows.Close()

	var cycles []payroll.CycleSummary
	for rows.Next() {
		var c payroll.CycleSummary
		err := rows.Scan(
			&c.ID, &c.CompanyID, &c.Name, &c.StartDate, &c.EndDate, &c.Status,
			&c.ApprovedBy, &c.ApprovedAt, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt,
			&c.ProcessedCount, &c.TotalNet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (r *payrollRepository) UpdateCycleStatus(ctx context.Context, id, companyID string, status payroll.CycleStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_cycles SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID, status)
	if err != nil {
		return fmt.Errorf("failed to update cycle status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrCycleNotFound
	}
	return nil
}

func (r *payrollRepository) MarkCycleProcessing(ctx context.Context, id, companyID string, processedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_cycles
		SET status = $3, processed_at = $4, approved_by = NULL, approved_at = NULL, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID, payroll.CycleStatusProcessing, processedAt)
	if err != nil {
		return fmt.Errorf("failed to mark cycle processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrCycleNotFound
	}
	return nil
}

func (r *payrollRepository) SetCycleApproval(ctx context.Context, id, companyID string, status payroll.CycleStatus, approvedBy *string, approvedAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_cycles
		SET status = $3, approved_by = $4, approved_at = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID, status, approvedBy, approvedAt)
	if err != nil {
		return fmt.Errorf("failed to set cycle approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrCycleNotFound
	}
	return nil
}

func (r *payrollRepository) AddCycleApproval(ctx context.Context, approval payroll.CycleApproval) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO payroll_cycle_approvals (id, company_id, cycle_id, action, note, user_id, user_name, user_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, approval.ID, approval.CompanyID, approval.CycleID, approval.Action,
		approval.Note, approval.UserID, approval.UserName, approval.UserRole)
	if err != nil {
		return fmt.Errorf("failed to add cycle approval: %w", err)
	}
	return nil
}

func (r *payrollRepository) ListCycleApprovals(ctx context.Context, cycleID, companyID string) ([]payroll.CycleApproval, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, cycle_id, action, note, user_id, user_name, user_role, created_at
		FROM payroll_cycle_approvals
		WHERE cycle_id = $1 AND company_id = $2
		ORDER BY created_at DESC
	`, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycle approvals: %w", err)
	}
	defer rows.Close()

	var approvals []payroll.CycleApproval
	for rows.Next() {
		var a payroll.CycleApproval
		err := rows.Scan(&a.ID, &a.CompanyID, &a.CycleID, &a.Action, &a.Note,
			&a.UserID, &a.UserName, &a.UserRole, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle approval: %w", err)
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

func (r *payrollRepository) GetCycleTotals(ctx context.Context, cycleID, companyID string) (payroll.CycleTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(gross_salary), 0), COALESCE(SUM(total_deductions), 0),
			   COALESCE(SUM(tax_deducted), 0), COALESCE(SUM(net_salary), 0),
			   COALESCE(SUM(overtime_hours), 0), COUNT(id)
		FROM payslips
		WHERE cycle_id = $1 AND company_id = $2
	`

	var t payroll.CycleTotals
	err := q.QueryRow(ctx, query, cycleID, companyID).Scan(
		&t.TotalGross, &t.TotalDeductions, &t.TotalTax, &t.TotalNet,
		&t.TotalOvertimeHours, &t.PayslipCount,
	)
	if err != nil {
		return payroll.CycleTotals{}, fmt.Errorf("failed to get cycle totals: %w", err)
	}
	return t, nil
}

func (r *payrollRepository) CountUnpaidPayslips(ctx context.Context, cycleID, companyID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(id) FROM payslips
		WHERE cycle_id = $1 AND company_id = $2 AND payment_status <> 'paid'
	`, cycleID, companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid payslips: %w", err)
	}
	return count, nil
}
