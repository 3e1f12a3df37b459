package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

func seedDraftCycle(repo *fakeRepo) payroll.Cycle {
	cycle := payroll.Cycle{
		ID:        "cycle-1",
		CompanyID: testCompanyID,
		Name:      "June 2025",
		StartDate: date(2025, time.June, 1),
		EndDate:   date(2025, time.June, 30),
		Status:    payroll.CycleStatusDraft,
	}
	repo.cycles[cycle.ID] = cycle
	return cycle
}

func findPayslipByEmployee(t *testing.T, repo *fakeRepo, employeeID string) payroll.Payslip {
	t.Helper()
	for _, p := range repo.payslips {
		if p.EmployeeID == employeeID {
			return p
		}
	}
	t.Fatalf("no payslip stored for employee %s", employeeID)
	return payroll.Payslip{}
}

func findItem(t *testing.T, p payroll.Payslip, name string) payroll.PayslipItem {
	t.Helper()
	for _, item := range p.Items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("payslip has no item %q, items: %+v", name, p.Items)
	return payroll.PayslipItem{}
}

func TestRunCycleGeneratesPayslip(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)

	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	repo.structures[emp.ID] = []payroll.SalaryStructure{activeStructure(emp.ID, 3000)}
	repo.slabs = []payroll.TaxSlab{slab(0, nil, 10)}

	// Two unpaid leave days, present every other weekday.
	repo.leaves[emp.ID] = []payroll.LeaveRecord{
		{Date: date(2025, time.June, 2), DayPart: "full", IsPaid: false},
		{Date: date(2025, time.June, 3), DayPart: "full", IsPaid: false},
	}
	presentWeekdays(repo, emp.ID, cycle.StartDate, cycle.EndDate, "2025-06-02", "2025-06-03")

	// A non-taxable bonus and an active loan with installments to recover.
	repo.bonuses["bonus-1"] = payroll.Bonus{
		ID: "bonus-1", CompanyID: testCompanyID, EmployeeID: emp.ID, CycleID: cycle.ID,
		Title: "Spot Award", Amount: decimal.NewFromInt(500),
		Kind: payroll.BonusKindBonus, Direction: payroll.BonusDirectionEarning,
		Taxable: false, Status: payroll.BonusStatusPending,
	}
	repo.loans["loan-1"] = payroll.Loan{
		ID: "loan-1", CompanyID: testCompanyID, EmployeeID: emp.ID,
		Type: payroll.LoanTypeLoan, Amount: decimal.NewFromInt(1000),
		TotalRepayment: decimal.NewFromInt(1000), MonthlyInstallment: decimal.NewFromInt(250),
		StartDate: date(2025, time.January, 1), Status: payroll.LoanStatusActive,
		CurrentBalance: decimal.NewFromInt(1000),
	}

	svc, processor, _ := newTestService(repo, emp)
	results, err := svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Nil(t, results[0].Error, "run should succeed: %v", results[0].Error)
	require.NotNil(t, results[0].PayslipID)

	assert.Equal(t, 1, processor.calls, "attendance must be re-derived before calculation")
	assert.Equal(t, payroll.CycleStatusProcessing, repo.cycles[cycle.ID].Status)

	p := findPayslipByEmployee(t, repo, emp.ID)

	// June 2025: 30 days, 21 weekdays, 2 on unpaid leave.
	assert.Equal(t, 30, p.TotalDays)
	assert.InDelta(t, 21.0, p.WorkingDays, 0.001)
	assert.InDelta(t, 2.0, p.UnpaidLeaveDays, 0.001)
	assert.InDelta(t, 19.0, p.PresentDays, 0.001)
	assert.InDelta(t, 0.0, p.AbsentDays, 0.001)
	assert.InDelta(t, 19.0, p.PayableDays, 0.001)

	basic := findItem(t, p, "Basic Salary")
	assert.True(t, basic.Amount.Equal(decimal.NewFromInt(3000)))

	// Calendar proration: 3000 / 30 days = 100 per day, 2 unpaid days.
	unpaid := findItem(t, p, "Unpaid Leave (2 days)")
	assert.True(t, unpaid.Amount.Equal(decimal.NewFromInt(200)), "got %s", unpaid.Amount)

	bonus := findItem(t, p, "Bonus: Spot Award")
	assert.True(t, bonus.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, payroll.ItemTypeEarning, bonus.Type)

	loanItem := findItem(t, p, "Loan Repayment (ID: loan-1)")
	require.NotNil(t, loanItem.LoanID)
	assert.Equal(t, "loan-1", *loanItem.LoanID)
	assert.True(t, loanItem.Amount.Equal(decimal.NewFromInt(250)))

	// Tax base excludes the non-taxable bonus: (3500 - 500) * 10%.
	taxItem := findItem(t, p, "Income Tax")
	assert.True(t, taxItem.Amount.Equal(decimal.NewFromInt(300)), "got %s", taxItem.Amount)
	assert.True(t, p.NonTaxableEarnings.Equal(decimal.NewFromInt(500)))

	assert.True(t, p.GrossSalary.Equal(decimal.NewFromInt(3500)), "gross %s", p.GrossSalary)
	assert.True(t, p.TotalDeductions.Equal(decimal.NewFromInt(750)), "deductions %s", p.TotalDeductions)
	assert.True(t, p.NetSalary.Equal(decimal.NewFromInt(2750)), "net %s", p.NetSalary)
	assert.True(t, p.GrossSalary.Sub(p.TotalDeductions).Equal(p.NetSalary))

	applied := repo.bonuses["bonus-1"]
	assert.Equal(t, payroll.BonusStatusApplied, applied.Status)
	require.NotNil(t, applied.AppliedPayslipID)
	assert.Equal(t, p.ID, *applied.AppliedPayslipID)
}

func TestRunCycleLoanInstallmentCappedAtBalance(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)

	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	repo.structures[emp.ID] = []payroll.SalaryStructure{activeStructure(emp.ID, 3000)}
	presentWeekdays(repo, emp.ID, cycle.StartDate, cycle.EndDate)

	repo.loans["loan-1"] = payroll.Loan{
		ID: "loan-1", CompanyID: testCompanyID, EmployeeID: emp.ID,
		Type: payroll.LoanTypeLoan, Amount: decimal.NewFromInt(1000),
		TotalRepayment: decimal.NewFromInt(1000), MonthlyInstallment: decimal.NewFromInt(400),
		StartDate: date(2025, time.January, 1), Status: payroll.LoanStatusActive,
		CurrentBalance: decimal.NewFromInt(150),
	}

	svc, _, _ := newTestService(repo, emp)
	results, err := svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Nil(t, results[0].Error)

	p := findPayslipByEmployee(t, repo, emp.ID)
	loanItem := findItem(t, p, "Loan Repayment (ID: loan-1)")
	assert.True(t, loanItem.Amount.Equal(decimal.NewFromInt(150)), "installment must cap at the balance, got %s", loanItem.Amount)
}

func TestRunCycleSkipsLoansOutsideWindowOrSettled(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)

	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	repo.structures[emp.ID] = []payroll.SalaryStructure{activeStructure(emp.ID, 3000)}
	presentWeekdays(repo, emp.ID, cycle.StartDate, cycle.EndDate)

	repo.loans["future"] = payroll.Loan{
		ID: "future", EmployeeID: emp.ID, Type: payroll.LoanTypeLoan,
		TotalRepayment: decimal.NewFromInt(500), MonthlyInstallment: decimal.NewFromInt(100),
		StartDate: date(2025, time.July, 1), Status: payroll.LoanStatusActive,
		CurrentBalance: decimal.NewFromInt(500),
	}
	repo.loans["settled"] = payroll.Loan{
		ID: "settled", EmployeeID: emp.ID, Type: payroll.LoanTypeLoan,
		TotalRepayment: decimal.NewFromInt(500), MonthlyInstallment: decimal.NewFromInt(100),
		StartDate: date(2025, time.January, 1), Status: payroll.LoanStatusActive,
		CurrentBalance: decimal.Zero,
	}

	svc, _, _ := newTestService(repo, emp)
	results, err := svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Nil(t, results[0].Error)

	p := findPayslipByEmployee(t, repo, emp.ID)
	for _, item := range p.Items {
		assert.Nil(t, item.LoanID, "no loan line expected, found %q", item.Name)
	}
}

func TestRunCycleRerunKeepsAppliedBonus(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)

	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	repo.structures[emp.ID] = []payroll.SalaryStructure{activeStructure(emp.ID, 3000)}
	presentWeekdays(repo, emp.ID, cycle.StartDate, cycle.EndDate)
	repo.bonuses["bonus-1"] = payroll.Bonus{
		ID: "bonus-1", CompanyID: testCompanyID, EmployeeID: emp.ID, CycleID: cycle.ID,
		Title: "Spot Award", Amount: decimal.NewFromInt(500),
		Kind: payroll.BonusKindBonus, Direction: payroll.BonusDirectionEarning,
		Taxable: true, Status: payroll.BonusStatusPending,
	}

	svc, _, _ := newTestService(repo, emp)
	results, err := svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Nil(t, results[0].Error)

	first := findPayslipByEmployee(t, repo, emp.ID)
	require.True(t, first.GrossSalary.Equal(decimal.NewFromInt(3500)))
	require.Equal(t, payroll.BonusStatusApplied, repo.bonuses["bonus-1"].Status)

	// Recalculating while still processing must keep the bonus on the new
	// payslip and move its link over.
	results, err = svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Nil(t, results[0].Error)

	second := findPayslipByEmployee(t, repo, emp.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.GrossSalary.Equal(decimal.NewFromInt(3500)), "rerun dropped the bonus: gross %s", second.GrossSalary)
	bonusItem := findItem(t, second, "Bonus: Spot Award")
	assert.True(t, bonusItem.Amount.Equal(decimal.NewFromInt(500)))

	applied := repo.bonuses["bonus-1"]
	assert.Equal(t, payroll.BonusStatusApplied, applied.Status)
	require.NotNil(t, applied.AppliedPayslipID)
	assert.Equal(t, second.ID, *applied.AppliedPayslipID, "applied link must follow the replacing payslip")
}

func TestRunCycleReportsMissingStructurePerEmployee(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)

	good := activeEmployee("emp-1", "0001", "Alice Rahman")
	bad := activeEmployee("emp-2", "0002", "Budi Santoso")
	repo.structures[good.ID] = []payroll.SalaryStructure{activeStructure(good.ID, 2000)}
	presentWeekdays(repo, good.ID, cycle.StartDate, cycle.EndDate)

	svc, _, _ := newTestService(repo, good, bad)
	results, err := svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	var failed int
	for _, res := range results {
		if res.Error != nil {
			failed++
			assert.Contains(t, *res.Error, "no active salary structure")
			assert.Equal(t, bad.ID, res.EmployeeID)
		} else {
			assert.NotNil(t, res.PayslipID)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestRunCycleRejectedAfterApproval(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)
	cycle.Status = payroll.CycleStatusApproved
	repo.cycles[cycle.ID] = cycle

	svc, _, _ := newTestService(repo)
	_, err := svc.RunCycle(authedContext(t), cycle.ID)
	assert.ErrorIs(t, err, payroll.ErrCycleStatusConflict)
}

func TestRunCycleRefusedWhenPaymentsExist(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)
	cycle.Status = payroll.CycleStatusProcessing
	repo.cycles[cycle.ID] = cycle

	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	repo.structures[emp.ID] = []payroll.SalaryStructure{activeStructure(emp.ID, 3000)}
	presentWeekdays(repo, emp.ID, cycle.StartDate, cycle.EndDate)

	repo.payslips["old"] = payroll.Payslip{
		ID: "old", CompanyID: testCompanyID, CycleID: cycle.ID, EmployeeID: emp.ID,
		NetSalary: decimal.NewFromInt(1000), PaymentStatus: payroll.PaymentStatusPartial,
	}
	repo.payments["old"] = []payroll.PayslipPayment{{
		ID: "pay-1", PayslipID: "old", Amount: decimal.NewFromInt(400),
	}}

	svc, _, _ := newTestService(repo, emp)
	results, err := svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Error)
	assert.Contains(t, *results[0].Error, "recorded payments")
}

func TestRunCycleProrationByWorkingDays(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)
	repo.settings["proration_basis"] = "working"

	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	repo.structures[emp.ID] = []payroll.SalaryStructure{activeStructure(emp.ID, 2100)}
	// One absent weekday, present on the other 20.
	presentWeekdays(repo, emp.ID, cycle.StartDate, cycle.EndDate, "2025-06-04")

	svc, _, _ := newTestService(repo, emp)
	results, err := svc.RunCycle(authedContext(t), cycle.ID)
	require.NoError(t, err)
	require.Nil(t, results[0].Error)

	// 2100 / 21 working days = 100 per day.
	p := findPayslipByEmployee(t, repo, emp.ID)
	absence := findItem(t, p, "Absence (1 days)")
	assert.True(t, absence.Amount.Equal(decimal.NewFromInt(100)), "got %s", absence.Amount)
}

func TestAddPayslipItemRecalculatesTotals(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)
	cycle.Status = payroll.CycleStatusProcessing
	repo.cycles[cycle.ID] = cycle
	repo.slabs = []payroll.TaxSlab{slab(0, nil, 10)}

	repo.payslips["slip-1"] = payroll.Payslip{
		ID: "slip-1", CompanyID: testCompanyID, CycleID: cycle.ID, EmployeeID: "emp-1",
		GrossSalary: decimal.NewFromInt(3000), TaxDeducted: decimal.NewFromInt(300),
		TotalDeductions: decimal.NewFromInt(300), NetSalary: decimal.NewFromInt(2700),
		NonTaxableEarnings: decimal.Zero,
		PaymentStatus:      payroll.PaymentStatusPending,
		Items: []payroll.PayslipItem{
			{ID: "i1", PayslipID: "slip-1", Name: "Basic Salary", Type: payroll.ItemTypeEarning, Amount: decimal.NewFromInt(3000)},
			{ID: "i2", PayslipID: "slip-1", Name: "Income Tax", Type: payroll.ItemTypeDeduction, Amount: decimal.NewFromInt(300), IsVariable: true},
		},
	}

	svc, _, _ := newTestService(repo)
	updated, err := svc.AddPayslipItem(authedContext(t), payroll.AddPayslipItemRequest{
		PayslipID: "slip-1",
		Name:      "Referral Bonus",
		Type:      "earning",
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	// Gross 4000, tax 10% of the full taxable base, net = gross - tax.
	assert.True(t, updated.GrossSalary.Equal(decimal.NewFromInt(4000)), "gross %s", updated.GrossSalary)
	assert.True(t, updated.TaxDeducted.Equal(decimal.NewFromInt(400)), "tax %s", updated.TaxDeducted)
	assert.True(t, updated.NetSalary.Equal(decimal.NewFromInt(3600)), "net %s", updated.NetSalary)
}

func TestAddPayslipItemRefusedOnLockedCycle(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedDraftCycle(repo)
	cycle.Status = payroll.CycleStatusLocked
	repo.cycles[cycle.ID] = cycle

	repo.payslips["slip-1"] = payroll.Payslip{
		ID: "slip-1", CompanyID: testCompanyID, CycleID: cycle.ID, EmployeeID: "emp-1",
		PaymentStatus: payroll.PaymentStatusPending,
	}

	svc, _, _ := newTestService(repo)
	_, err := svc.AddPayslipItem(authedContext(t), payroll.AddPayslipItemRequest{
		PayslipID: "slip-1",
		Name:      "Adjustment",
		Type:      "deduction",
		Amount:    decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, payroll.ErrCycleStatusConflict)
}
