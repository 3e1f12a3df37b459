package payroll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/employee"
	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/audit"
)

const (
	itemBasicSalary = "Basic Salary"
	itemIncomeTax   = "Income Tax"
	itemPFEmployee  = "Provident Fund (Employee)"
)

// calculateEmployeeSalary builds and persists one employee's payslip for a
// cycle. The previous payslip for the pair is replaced atomically; the
// repository refuses the replace when payments were already recorded.
func (s *Service) calculateEmployeeSalary(
	ctx context.Context,
	emp employee.Employee,
	cycle payroll.Cycle,
	cfg payroll.Config,
	slabs []payroll.TaxSlab,
) (string, error) {
	structure, err := s.repo.GetActiveSalaryStructure(ctx, emp.ID, emp.CompanyID, cycle.EndDate)
	if err != nil {
		if errors.Is(err, payroll.ErrStructureNotFound) {
			return "", fmt.Errorf("%w: employee %s", payroll.ErrNoSalaryStructure, emp.EmployeeCode)
		}
		return "", err
	}

	att, err := s.attendanceSummary(ctx, emp.ID, emp.CompanyID, cycle.StartDate, cycle.EndDate)
	if err != nil {
		return "", err
	}

	baseSalary := structure.BaseSalary
	perDaySalary := perDayRate(baseSalary, cfg, att)

	var earnings, deductions []payroll.PayslipItem
	payslipID := uuid.NewString()

	addEarning := func(name string, amount decimal.Decimal, variable bool, loanID *string) {
		earnings = append(earnings, payroll.PayslipItem{
			ID: uuid.NewString(), PayslipID: payslipID,
			Name: name, Type: payroll.ItemTypeEarning, Amount: amount, IsVariable: variable, LoanID: loanID,
		})
	}
	addDeduction := func(name string, amount decimal.Decimal, variable bool, loanID *string) {
		deductions = append(deductions, payroll.PayslipItem{
			ID: uuid.NewString(), PayslipID: payslipID,
			Name: name, Type: payroll.ItemTypeDeduction, Amount: amount, IsVariable: variable, LoanID: loanID,
		})
	}

	// Basic salary is always the full base; attendance losses come off as
	// explicit deduction lines instead of shrinking the base.
	addEarning(itemBasicSalary, baseSalary, false, nil)
	gross := baseSalary

	for _, item := range structure.Items {
		amount := item.Amount
		if item.IsPercentage {
			amount = baseSalary.Mul(item.Percentage).Div(decimal.NewFromInt(100))
		}
		if item.Type == payroll.ItemTypeEarning {
			addEarning(item.Name, amount, false, nil)
			gross = gross.Add(amount)
		} else {
			addDeduction(item.Name, amount, false, nil)
		}
	}

	// Unpaid leave and absence deductions at the per-day rate.
	if att.UnpaidLeaveDays > 0 {
		amount := decimal.NewFromFloat(att.UnpaidLeaveDays).Mul(perDaySalary).Round(2)
		if amount.IsPositive() {
			addDeduction(fmt.Sprintf("Unpaid Leave (%s days)", formatDays(att.UnpaidLeaveDays)), amount, true, nil)
		}
	}
	if att.AbsentDays > 0 {
		amount := decimal.NewFromFloat(att.AbsentDays).Mul(perDaySalary).Round(2)
		if amount.IsPositive() {
			addDeduction(fmt.Sprintf("Absence (%s days)", formatDays(att.AbsentDays)), amount, true, nil)
		}
	}

	hourlyRate := hourlyRate(baseSalary, cfg)

	if att.OvertimeHours > 0 {
		amount := decimal.NewFromFloat(att.OvertimeHours).Mul(hourlyRate).Mul(cfg.OvertimeRateMultiplier).Round(2)
		if amount.IsPositive() {
			addEarning(fmt.Sprintf("Overtime (%s hrs)", formatDays(att.OvertimeHours)), amount, true, nil)
			gross = gross.Add(amount)
		}
	}

	if att.LateMinutes > 0 {
		mult := decimal.Max(decimal.Zero, cfg.LatePenaltyMultiplier)
		amount := decimal.NewFromInt(int64(att.LateMinutes)).Div(decimal.NewFromInt(60)).Mul(hourlyRate).Mul(mult).Round(2)
		if amount.IsPositive() {
			addDeduction(fmt.Sprintf("Late Penalty (%d mins)", att.LateMinutes), amount, true, nil)
		}
	}
	if att.EarlyLeaveMinutes > 0 {
		mult := decimal.Max(decimal.Zero, cfg.EarlyLeaveMultiplier)
		amount := decimal.NewFromInt(int64(att.EarlyLeaveMinutes)).Div(decimal.NewFromInt(60)).Mul(hourlyRate).Mul(mult).Round(2)
		if amount.IsPositive() {
			addDeduction(fmt.Sprintf("Early Leave Penalty (%d mins)", att.EarlyLeaveMinutes), amount, true, nil)
		}
	}

	// Variable pay recorded against this cycle. Rows already applied by an
	// earlier run are loaded again so a rerun keeps them and re-links them to
	// the fresh payslip. Penalties and fines default to the deduction side
	// when no direction is set.
	nonTaxable := decimal.Zero
	var bonusIDs []string
	bonuses, err := s.repo.GetBonusesForEmployeeCycle(ctx, emp.ID, cycle.ID, emp.CompanyID)
	if err != nil {
		return "", err
	}
	for _, bonus := range bonuses {
		if !bonus.Amount.IsPositive() {
			continue
		}
		bonusIDs = append(bonusIDs, bonus.ID)

		direction := bonus.Direction
		if direction != payroll.BonusDirectionEarning && direction != payroll.BonusDirectionDeduction {
			if bonus.Kind == payroll.BonusKindPenalty || bonus.Kind == payroll.BonusKindFine {
				direction = payroll.BonusDirectionDeduction
			} else {
				direction = payroll.BonusDirectionEarning
			}
		}

		label := bonusLabel(bonus)
		if direction == payroll.BonusDirectionDeduction {
			addDeduction(label, bonus.Amount, true, nil)
			continue
		}
		addEarning(label, bonus.Amount, true, nil)
		gross = gross.Add(bonus.Amount)
		if !bonus.Taxable {
			nonTaxable = nonTaxable.Add(bonus.Amount)
		}
	}

	// Loan and advance installments, capped at the remaining balance.
	loans, err := s.repo.GetActiveLoans(ctx, emp.ID, emp.CompanyID)
	if err != nil {
		return "", err
	}
	for _, loan := range loans {
		if loan.StartDate.After(cycle.EndDate) {
			continue
		}
		if !loan.CurrentBalance.IsPositive() {
			continue
		}
		installment := decimal.Min(loan.MonthlyInstallment, loan.CurrentBalance)
		if !installment.IsPositive() {
			continue
		}
		loanID := loan.ID
		addDeduction(fmt.Sprintf("Loan Repayment (ID: %s)", loan.ID), installment, true, &loanID)
	}

	taxable := decimal.Max(decimal.Zero, gross.Sub(nonTaxable))
	tax := CalculateTax(taxable, slabs)
	if tax.IsPositive() {
		addDeduction(itemIncomeTax, tax, true, nil)
	}

	if cfg.PFEmployeePercent.IsPositive() {
		pf := baseSalary.Mul(cfg.PFEmployeePercent).Div(decimal.NewFromInt(100)).Round(2)
		if pf.IsPositive() {
			addDeduction(itemPFEmployee, pf, true, nil)
		}
	}

	totalDeductions := decimal.Zero
	for _, d := range deductions {
		totalDeductions = totalDeductions.Add(d.Amount)
	}
	net := gross.Sub(totalDeductions)

	payslip := payroll.Payslip{
		ID:                 payslipID,
		CompanyID:          emp.CompanyID,
		CycleID:            cycle.ID,
		EmployeeID:         emp.ID,
		SalaryStructureID:  structure.ID,
		TotalDays:          att.TotalDays,
		WorkingDays:        att.WorkingDays,
		PresentDays:        att.PresentDays,
		PaidLeaveDays:      att.PaidLeaveDays,
		UnpaidLeaveDays:    att.UnpaidLeaveDays,
		AbsentDays:         att.AbsentDays,
		WeeklyOffDays:      att.WeeklyOffDays,
		Holidays:           att.Holidays,
		PayableDays:        att.PayableDays,
		LateMinutes:        att.LateMinutes,
		EarlyLeaveMinutes:  att.EarlyLeaveMinutes,
		OvertimeHours:      att.OvertimeHours,
		GrossSalary:        gross,
		TotalDeductions:    totalDeductions,
		TaxDeducted:        tax,
		NetSalary:          net,
		NonTaxableEarnings: nonTaxable,
		PaymentStatus:      payroll.PaymentStatusPending,
	}

	items := append(earnings, deductions...)
	id, err := s.repo.ReplacePayslip(ctx, payslip, items)
	if err != nil {
		return "", err
	}
	if len(bonusIDs) > 0 {
		if err := s.repo.MarkBonusesApplied(ctx, bonusIDs, id, emp.CompanyID, cycle.EndDate); err != nil {
			return "", err
		}
	}
	return id, nil
}

// perDayRate derives the daily salary according to the proration basis.
// A zero denominator falls back so a degenerate cycle never divides by zero.
func perDayRate(baseSalary decimal.Decimal, cfg payroll.Config, att AttendanceSummary) decimal.Decimal {
	switch cfg.ProrationBasis {
	case payroll.ProrationBasisWorking:
		denom := decimal.NewFromFloat(att.WorkingDays)
		if !denom.IsPositive() {
			denom = decimal.NewFromInt(1)
		}
		return baseSalary.Div(denom)
	case payroll.ProrationBasisFixed:
		denom := cfg.DaysPerMonth
		if !denom.IsPositive() {
			denom = decimal.NewFromInt(30)
		}
		return baseSalary.Div(denom)
	default:
		denom := decimal.NewFromInt(int64(att.TotalDays))
		if !denom.IsPositive() {
			denom = decimal.NewFromInt(1)
		}
		return baseSalary.Div(denom)
	}
}

// hourlyRate is base / days-per-month / hours-per-day, zero when either
// setting is unusable.
func hourlyRate(baseSalary decimal.Decimal, cfg payroll.Config) decimal.Decimal {
	if !cfg.DaysPerMonth.IsPositive() || !cfg.WorkHoursPerDay.IsPositive() {
		return decimal.Zero
	}
	return baseSalary.Div(cfg.DaysPerMonth).Div(cfg.WorkHoursPerDay)
}

func bonusLabel(bonus payroll.Bonus) string {
	kind := string(bonus.Kind)
	if kind == "" {
		kind = "Bonus"
	} else {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	return kind + ": " + bonus.Title
}

func formatDays(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AddPayslipItem appends a manual line to a payslip and re-runs the totals,
// recomputing tax against the stored non-taxable earnings so manual and
// generated lines share one taxable-base definition.
func (s *Service) AddPayslipItem(ctx context.Context, req payroll.AddPayslipItemRequest) (payroll.Payslip, error) {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.Payslip{}, err
	}

	payslip, err := s.repo.GetPayslip(ctx, req.PayslipID, companyID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	cycle, err := s.repo.GetCycle(ctx, payslip.CycleID, companyID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if cycle.Status == payroll.CycleStatusLocked || cycle.Status == payroll.CycleStatusPaid {
		return payroll.Payslip{}, payroll.ErrCycleStatusConflict
	}

	item := payroll.PayslipItem{
		ID:         uuid.NewString(),
		PayslipID:  req.PayslipID,
		Name:       req.Name,
		Type:       payroll.ItemType(req.Type),
		Amount:     req.Amount,
		IsVariable: true,
	}
	if err := s.repo.AddPayslipItem(ctx, companyID, item); err != nil {
		return payroll.Payslip{}, err
	}

	updated, err := s.recalculatePayslip(ctx, req.PayslipID, companyID)
	if err != nil {
		return payroll.Payslip{}, err
	}

	s.audit.Log(ctx, "payroll.payslip.item_added", map[string]any{
		"payslip_id": req.PayslipID,
		"name":       req.Name,
		"amount":     req.Amount.String(),
	}, audit.User{ID: userID, Role: role, Name: name})
	return updated, nil
}

// recalculatePayslip rebuilds gross, tax, deduction and net totals from the
// stored items after a manual change.
func (s *Service) recalculatePayslip(ctx context.Context, payslipID, companyID string) (payroll.Payslip, error) {
	payslip, err := s.repo.GetPayslip(ctx, payslipID, companyID)
	if err != nil {
		return payroll.Payslip{}, err
	}

	gross := sumItems(payslip.Items, payroll.ItemTypeEarning)

	slabs, err := s.repo.ListTaxSlabs(ctx, companyID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	taxable := decimal.Max(decimal.Zero, gross.Sub(payslip.NonTaxableEarnings))
	tax := CalculateTax(taxable, slabs)

	if tax.IsPositive() || hasItem(payslip.Items, itemIncomeTax) {
		if err := s.repo.UpsertPayslipItemByName(ctx, payslipID, companyID, itemIncomeTax, payroll.ItemTypeDeduction, tax); err != nil {
			return payroll.Payslip{}, err
		}
	}

	payslip, err = s.repo.GetPayslip(ctx, payslipID, companyID)
	if err != nil {
		return payroll.Payslip{}, err
	}
	totalDeductions := sumItems(payslip.Items, payroll.ItemTypeDeduction)
	net := gross.Sub(totalDeductions)

	if err := s.repo.UpdatePayslipTotals(ctx, payslipID, companyID, gross, totalDeductions, tax, net); err != nil {
		return payroll.Payslip{}, err
	}

	payslip.GrossSalary = gross
	payslip.TotalDeductions = totalDeductions
	payslip.TaxDeducted = tax
	payslip.NetSalary = net
	return payslip, nil
}

func hasItem(items []payroll.PayslipItem, name string) bool {
	for _, item := range items {
		if item.Name == name {
			return true
		}
	}
	return false
}
