package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tovfikur/attsys-sub001/internal/domain/employee"
	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/audit"
)

const (
	testCompanyID = "company-1"
	testUserID    = "user-1"
)

// authedContext builds a context carrying the JWT claims the service reads,
// the same way the router's verifier middleware would.
func authedContext(t *testing.T) context.Context {
	t.Helper()
	ta := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ta.Encode(map[string]interface{}{
		"company_id": testCompanyID,
		"user_id":    testUserID,
		"role":       "admin",
		"name":       "Test Admin",
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeProcessor struct {
	calls int
}

func (p *fakeProcessor) ProcessRange(ctx context.Context, companyID string, start, end time.Time) error {
	p.calls++
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id, companyID string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.Status == employee.StatusActive {
			out = append(out, emp)
		}
	}
	return out, nil
}

// fakeRepo is an in-memory payroll.Repository. InTx runs the callback
// directly; there is no transactional isolation to simulate here.
type fakeRepo struct {
	cycles     map[string]payroll.Cycle
	approvals  []payroll.CycleApproval
	payslips   map[string]payroll.Payslip
	payments   map[string][]payroll.PayslipPayment
	structures map[string][]payroll.SalaryStructure
	components []payroll.SalaryComponent
	bonuses    map[string]payroll.Bonus
	loans      map[string]payroll.Loan
	repayments []payroll.LoanRepayment
	slabs      []payroll.TaxSlab
	settings   map[string]string
	accounts   map[string]payroll.Account
	journal    []payroll.JournalEntry
	bankRows   []payroll.BankTransferRow

	workingDays map[string][]string
	holidays    map[string]bool
	leaves      map[string][]payroll.LeaveRecord
	attendance  map[string][]payroll.AttendanceDay

	departmentCost []payroll.DepartmentCost
	overtimeRows   []payroll.OvertimeRow
	deductionRows  []payroll.DeductionRow
	paymentRows    []payroll.PaymentSummaryRow
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		cycles:      make(map[string]payroll.Cycle),
		payslips:    make(map[string]payroll.Payslip),
		payments:    make(map[string][]payroll.PayslipPayment),
		structures:  make(map[string][]payroll.SalaryStructure),
		bonuses:     make(map[string]payroll.Bonus),
		loans:       make(map[string]payroll.Loan),
		settings:    make(map[string]string),
		accounts:    make(map[string]payroll.Account),
		workingDays: make(map[string][]string),
		holidays:    make(map[string]bool),
		leaves:      make(map[string][]payroll.LeaveRecord),
		attendance:  make(map[string][]payroll.AttendanceDay),
	}
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeRepo) CreateCycle(ctx context.Context, cycle payroll.Cycle) (payroll.Cycle, error) {
	cycle.CreatedAt = time.Now().UTC()
	r.cycles[cycle.ID] = cycle
	return cycle, nil
}

func (r *fakeRepo) GetCycle(ctx context.Context, id, companyID string) (payroll.Cycle, error) {
	cycle, ok := r.cycles[id]
	if !ok {
		return payroll.Cycle{}, payroll.ErrCycleNotFound
	}
	return cycle, nil
}

func (r *fakeRepo) GetCycleForUpdate(ctx context.Context, id, companyID string) (payroll.Cycle, error) {
	return r.GetCycle(ctx, id, companyID)
}

func (r *fakeRepo) ListCycles(ctx context.Context, companyID string) ([]payroll.CycleSummary, error) {
	var out []payroll.CycleSummary
	for _, cycle := range r.cycles {
		out = append(out, payroll.CycleSummary{Cycle: cycle})
	}
	return out, nil
}

func (r *fakeRepo) UpdateCycleStatus(ctx context.Context, id, companyID string, status payroll.CycleStatus) error {
	cycle, ok := r.cycles[id]
	if !ok {
		return payroll.ErrCycleNotFound
	}
	cycle.Status = status
	r.cycles[id] = cycle
	return nil
}

func (r *fakeRepo) MarkCycleProcessing(ctx context.Context, id, companyID string, processedAt time.Time) error {
	cycle, ok := r.cycles[id]
	if !ok {
		return payroll.ErrCycleNotFound
	}
	cycle.Status = payroll.CycleStatusProcessing
	cycle.ProcessedAt = &processedAt
	cycle.ApprovedBy = nil
	cycle.ApprovedAt = nil
	r.cycles[id] = cycle
	return nil
}

func (r *fakeRepo) SetCycleApproval(ctx context.Context, id, companyID string, status payroll.CycleStatus, approvedBy *string, approvedAt *time.Time) error {
	cycle, ok := r.cycles[id]
	if !ok {
		return payroll.ErrCycleNotFound
	}
	cycle.Status = status
	cycle.ApprovedBy = approvedBy
	cycle.ApprovedAt = approvedAt
	r.cycles[id] = cycle
	return nil
}

func (r *fakeRepo) AddCycleApproval(ctx context.Context, approval payroll.CycleApproval) error {
	r.approvals = append(r.approvals, approval)
	return nil
}

func (r *fakeRepo) ListCycleApprovals(ctx context.Context, cycleID, companyID string) ([]payroll.CycleApproval, error) {
	var out []payroll.CycleApproval
	for _, a := range r.approvals {
		if a.CycleID == cycleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetCycleTotals(ctx context.Context, cycleID, companyID string) (payroll.CycleTotals, error) {
	totals := payroll.CycleTotals{
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalTax:        decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	for _, p := range r.payslips {
		if p.CycleID != cycleID {
			continue
		}
		totals.TotalGross = totals.TotalGross.Add(p.GrossSalary)
		totals.TotalDeductions = totals.TotalDeductions.Add(p.TotalDeductions)
		totals.TotalTax = totals.TotalTax.Add(p.TaxDeducted)
		totals.TotalNet = totals.TotalNet.Add(p.NetSalary)
		totals.TotalOvertimeHours += p.OvertimeHours
		totals.PayslipCount++
	}
	return totals, nil
}

func (r *fakeRepo) CountUnpaidPayslips(ctx context.Context, cycleID, companyID string) (int, error) {
	count := 0
	for _, p := range r.payslips {
		if p.CycleID == cycleID && p.PaymentStatus != payroll.PaymentStatusPaid {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) ReplacePayslip(ctx context.Context, payslip payroll.Payslip, items []payroll.PayslipItem) (string, error) {
	for id, existing := range r.payslips {
		if existing.CycleID == payslip.CycleID && existing.EmployeeID == payslip.EmployeeID {
			if len(r.payments[id]) > 0 {
				return "", payroll.ErrPayslipHasPayments
			}
			delete(r.payslips, id)
		}
	}
	payslip.Items = items
	r.payslips[payslip.ID] = payslip
	return payslip.ID, nil
}

func (r *fakeRepo) GetPayslip(ctx context.Context, id, companyID string) (payroll.Payslip, error) {
	p, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetPayslipByCycleEmployee(ctx context.Context, cycleID, employeeID, companyID string) (payroll.Payslip, error) {
	for _, p := range r.payslips {
		if p.CycleID == cycleID && p.EmployeeID == employeeID {
			return p, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (r *fakeRepo) ListPayslipsByCycle(ctx context.Context, cycleID, companyID string) ([]payroll.Payslip, error) {
	var out []payroll.Payslip
	for _, p := range r.payslips {
		if p.CycleID == cycleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) AddPayslipItem(ctx context.Context, companyID string, item payroll.PayslipItem) error {
	p, ok := r.payslips[item.PayslipID]
	if !ok {
		return payroll.ErrPayslipNotFound
	}
	p.Items = append(p.Items, item)
	r.payslips[item.PayslipID] = p
	return nil
}

func (r *fakeRepo) UpsertPayslipItemByName(ctx context.Context, payslipID, companyID, name string, itemType payroll.ItemType, amount decimal.Decimal) error {
	p, ok := r.payslips[payslipID]
	if !ok {
		return payroll.ErrPayslipNotFound
	}
	for i, item := range p.Items {
		if item.Name == name && item.Type == itemType {
			p.Items[i].Amount = amount
			r.payslips[payslipID] = p
			return nil
		}
	}
	p.Items = append(p.Items, payroll.PayslipItem{
		ID: "item-" + name, PayslipID: payslipID,
		Name: name, Type: itemType, Amount: amount, IsVariable: true,
	})
	r.payslips[payslipID] = p
	return nil
}

func (r *fakeRepo) UpdatePayslipTotals(ctx context.Context, id, companyID string, gross, deductions, tax, net decimal.Decimal) error {
	p, ok := r.payslips[id]
	if !ok {
		return payroll.ErrPayslipNotFound
	}
	p.GrossSalary = gross
	p.TotalDeductions = deductions
	p.TaxDeducted = tax
	p.NetSalary = net
	r.payslips[id] = p
	return nil
}

func (r *fakeRepo) MarkPayslipsPaid(ctx context.Context, cycleID, companyID string, paymentDate time.Time) error {
	for id, p := range r.payslips {
		if p.CycleID != cycleID {
			continue
		}
		p.PaymentStatus = payroll.PaymentStatusPaid
		p.PaymentDate = &paymentDate
		r.payslips[id] = p
	}
	return nil
}

func (r *fakeRepo) SetPayslipPaymentStatus(ctx context.Context, id, companyID string, status payroll.PaymentStatus, paymentDate *time.Time) error {
	p, ok := r.payslips[id]
	if !ok {
		return payroll.ErrPayslipNotFound
	}
	p.PaymentStatus = status
	p.PaymentDate = paymentDate
	r.payslips[id] = p
	return nil
}

func (r *fakeRepo) SumPayslipItemsByName(ctx context.Context, cycleID, companyID, name string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.payslips {
		if p.CycleID != cycleID {
			continue
		}
		for _, item := range p.Items {
			if item.Name == name {
				total = total.Add(item.Amount)
			}
		}
	}
	return total, nil
}

func (r *fakeRepo) SumLoanRepaymentItems(ctx context.Context, cycleID, companyID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.payslips {
		if p.CycleID != cycleID {
			continue
		}
		for _, item := range p.Items {
			if item.LoanID != nil {
				total = total.Add(item.Amount)
			}
		}
	}
	return total, nil
}

func (r *fakeRepo) AddPayslipPayment(ctx context.Context, payment payroll.PayslipPayment) (payroll.PayslipPayment, error) {
	payment.CreatedAt = time.Now().UTC()
	r.payments[payment.PayslipID] = append(r.payments[payment.PayslipID], payment)
	return payment, nil
}

func (r *fakeRepo) ListPayslipPayments(ctx context.Context, payslipID, companyID string) ([]payroll.PayslipPayment, error) {
	return r.payments[payslipID], nil
}

func (r *fakeRepo) GetActiveSalaryStructure(ctx context.Context, employeeID, companyID string, asOf time.Time) (payroll.SalaryStructure, error) {
	var best *payroll.SalaryStructure
	for i := range r.structures[employeeID] {
		st := r.structures[employeeID][i]
		if st.Status != "active" || st.EffectiveFrom.After(asOf) {
			continue
		}
		if best == nil || st.EffectiveFrom.After(best.EffectiveFrom) {
			best = &st
		}
	}
	if best == nil {
		return payroll.SalaryStructure{}, payroll.ErrStructureNotFound
	}
	return *best, nil
}

func (r *fakeRepo) GetSalaryHistory(ctx context.Context, employeeID, companyID string) ([]payroll.SalaryStructure, error) {
	return r.structures[employeeID], nil
}

func (r *fakeRepo) SaveSalaryStructure(ctx context.Context, structure payroll.SalaryStructure) (string, error) {
	r.structures[structure.EmployeeID] = append(r.structures[structure.EmployeeID], structure)
	return structure.ID, nil
}

func (r *fakeRepo) CreateComponent(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	for _, c := range r.components {
		if c.Name == component.Name {
			return payroll.SalaryComponent{}, payroll.ErrComponentNameExists
		}
	}
	r.components = append(r.components, component)
	return component, nil
}

func (r *fakeRepo) ListComponents(ctx context.Context, companyID string) ([]payroll.SalaryComponent, error) {
	return r.components, nil
}

func (r *fakeRepo) GetBonusesForEmployeeCycle(ctx context.Context, employeeID, cycleID, companyID string) ([]payroll.Bonus, error) {
	var out []payroll.Bonus
	for _, b := range r.bonuses {
		if b.EmployeeID == employeeID && b.CycleID == cycleID && b.Status != payroll.BonusStatusCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListBonusesByCycle(ctx context.Context, cycleID, companyID string) ([]payroll.Bonus, error) {
	var out []payroll.Bonus
	for _, b := range r.bonuses {
		if b.CycleID == cycleID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) SaveBonus(ctx context.Context, bonus payroll.Bonus) (payroll.Bonus, error) {
	if existing, ok := r.bonuses[bonus.ID]; ok && existing.Status != payroll.BonusStatusPending {
		return payroll.Bonus{}, payroll.ErrBonusAlreadyApplied
	}
	r.bonuses[bonus.ID] = bonus
	return bonus, nil
}

func (r *fakeRepo) DeleteBonus(ctx context.Context, id, companyID string) error {
	bonus, ok := r.bonuses[id]
	if !ok {
		return payroll.ErrBonusNotFound
	}
	if bonus.Status == payroll.BonusStatusApplied {
		return payroll.ErrBonusAlreadyApplied
	}
	delete(r.bonuses, id)
	return nil
}

func (r *fakeRepo) MarkBonusesApplied(ctx context.Context, ids []string, payslipID, companyID string, appliedAt time.Time) error {
	for _, id := range ids {
		bonus, ok := r.bonuses[id]
		if !ok {
			continue
		}
		bonus.Status = payroll.BonusStatusApplied
		bonus.AppliedPayslipID = &payslipID
		bonus.AppliedAt = &appliedAt
		r.bonuses[id] = bonus
	}
	return nil
}

func (r *fakeRepo) CreateLoan(ctx context.Context, loan payroll.Loan) (payroll.Loan, error) {
	loan.CurrentBalance = loan.TotalRepayment
	r.loans[loan.ID] = loan
	return loan, nil
}

func (r *fakeRepo) GetLoan(ctx context.Context, id, companyID string) (payroll.Loan, error) {
	loan, ok := r.loans[id]
	if !ok {
		return payroll.Loan{}, payroll.ErrLoanNotFound
	}
	return loan, nil
}

func (r *fakeRepo) ListLoans(ctx context.Context, companyID string, employeeID *string, status *payroll.LoanStatus) ([]payroll.Loan, error) {
	var out []payroll.Loan
	for _, loan := range r.loans {
		if employeeID != nil && loan.EmployeeID != *employeeID {
			continue
		}
		if status != nil && loan.Status != *status {
			continue
		}
		out = append(out, loan)
	}
	return out, nil
}

func (r *fakeRepo) GetActiveLoans(ctx context.Context, employeeID, companyID string) ([]payroll.Loan, error) {
	var out []payroll.Loan
	for _, loan := range r.loans {
		if loan.EmployeeID == employeeID && loan.Status == payroll.LoanStatusActive {
			out = append(out, loan)
		}
	}
	return out, nil
}

func (r *fakeRepo) RecordLoanRepayment(ctx context.Context, repayment payroll.LoanRepayment) error {
	loan, ok := r.loans[repayment.LoanID]
	if !ok {
		return payroll.ErrLoanNotFound
	}
	r.repayments = append(r.repayments, repayment)
	loan.CurrentBalance = loan.CurrentBalance.Sub(repayment.Amount)
	if loan.Status == payroll.LoanStatusActive && !loan.CurrentBalance.IsPositive() {
		loan.Status = payroll.LoanStatusClosed
	}
	r.loans[repayment.LoanID] = loan
	return nil
}

func (r *fakeRepo) UpdateLoanStatus(ctx context.Context, id, companyID string, status payroll.LoanStatus) error {
	loan, ok := r.loans[id]
	if !ok {
		return payroll.ErrLoanNotFound
	}
	loan.Status = status
	r.loans[id] = loan
	return nil
}

func (r *fakeRepo) ListTaxSlabs(ctx context.Context, companyID string) ([]payroll.TaxSlab, error) {
	return r.slabs, nil
}

func (r *fakeRepo) SaveTaxSlab(ctx context.Context, slab payroll.TaxSlab) (payroll.TaxSlab, error) {
	for i, s := range r.slabs {
		if s.ID == slab.ID {
			r.slabs[i] = slab
			return slab, nil
		}
	}
	r.slabs = append(r.slabs, slab)
	return slab, nil
}

func (r *fakeRepo) DeleteTaxSlab(ctx context.Context, id, companyID string) error {
	for i, s := range r.slabs {
		if s.ID == id {
			r.slabs = append(r.slabs[:i], r.slabs[i+1:]...)
			return nil
		}
	}
	return payroll.ErrTaxSlabNotFound
}

func (r *fakeRepo) GetSettings(ctx context.Context, companyID string) (map[string]string, error) {
	out := make(map[string]string, len(r.settings))
	for k, v := range r.settings {
		out[k] = v
	}
	return out, nil
}

func (r *fakeRepo) SaveSetting(ctx context.Context, companyID, key, value string) error {
	r.settings[key] = value
	return nil
}

func (r *fakeRepo) GetAccountByCode(ctx context.Context, companyID, code string) (payroll.Account, error) {
	account, ok := r.accounts[code]
	if !ok {
		return payroll.Account{}, payroll.ErrAccountNotFound
	}
	return account, nil
}

func (r *fakeRepo) CreateJournalEntry(ctx context.Context, entry payroll.JournalEntry) (string, error) {
	r.journal = append(r.journal, entry)
	return entry.ID, nil
}

func (r *fakeRepo) ListJournalEntriesByReference(ctx context.Context, companyID, referenceType, referenceID string) ([]payroll.JournalEntry, error) {
	var out []payroll.JournalEntry
	for _, je := range r.journal {
		if je.ReferenceType == referenceType && je.ReferenceID == referenceID {
			out = append(out, je)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListBankAccounts(ctx context.Context, employeeID, companyID string) ([]payroll.BankAccount, error) {
	return nil, nil
}

func (r *fakeRepo) SaveBankAccount(ctx context.Context, account payroll.BankAccount) (payroll.BankAccount, error) {
	return account, nil
}

func (r *fakeRepo) DeleteBankAccount(ctx context.Context, id, companyID string) error {
	return nil
}

func (r *fakeRepo) SetPrimaryBankAccount(ctx context.Context, id, employeeID, companyID string) error {
	return nil
}

func (r *fakeRepo) GetBankDetailsForCycle(ctx context.Context, cycleID, companyID string) ([]payroll.BankTransferRow, error) {
	return r.bankRows, nil
}

func (r *fakeRepo) GetEmployeeWorkingDays(ctx context.Context, employeeID, companyID string) ([]string, error) {
	return r.workingDays[employeeID], nil
}

func (r *fakeRepo) GetHolidayDates(ctx context.Context, companyID string, start, end time.Time) (map[string]bool, error) {
	return r.holidays, nil
}

func (r *fakeRepo) GetApprovedLeaves(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.LeaveRecord, error) {
	return r.leaves[employeeID], nil
}

func (r *fakeRepo) GetAttendanceDays(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.AttendanceDay, error) {
	return r.attendance[employeeID], nil
}

func (r *fakeRepo) GetYearlyCost(ctx context.Context, companyID string, year int) ([]payroll.MonthlyCost, error) {
	return nil, nil
}

func (r *fakeRepo) GetEmployeePayslipHistory(ctx context.Context, employeeID, companyID string, limit int) ([]payroll.Payslip, error) {
	return nil, nil
}

func (r *fakeRepo) GetDepartmentCost(ctx context.Context, cycleID, companyID string) ([]payroll.DepartmentCost, error) {
	return r.departmentCost, nil
}

func (r *fakeRepo) GetOvertimeReport(ctx context.Context, cycleID, companyID string) ([]payroll.OvertimeRow, error) {
	return r.overtimeRows, nil
}

func (r *fakeRepo) GetDeductionReport(ctx context.Context, cycleID, companyID string) ([]payroll.DeductionRow, error) {
	return r.deductionRows, nil
}

func (r *fakeRepo) GetPaymentSummaryForCycle(ctx context.Context, cycleID, companyID string) ([]payroll.PaymentSummaryRow, error) {
	return r.paymentRows, nil
}

func newTestService(repo *fakeRepo, employees ...employee.Employee) (*Service, *fakeProcessor, *fakeMailer) {
	empRepo := &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, emp := range employees {
		empRepo.employees[emp.ID] = emp
	}
	processor := &fakeProcessor{}
	mailer := &fakeMailer{}
	svc := NewService(repo, empRepo, processor, mailer, audit.NewLogger(nil))
	return svc, processor, mailer
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeEmployee(id, code, name string) employee.Employee {
	email := code + "@example.com"
	return employee.Employee{
		ID:           id,
		CompanyID:    testCompanyID,
		EmployeeCode: code,
		FullName:     name,
		Email:        &email,
		Status:       employee.StatusActive,
	}
}

func activeStructure(employeeID string, base int64) payroll.SalaryStructure {
	return payroll.SalaryStructure{
		ID:            "structure-" + employeeID,
		CompanyID:     testCompanyID,
		EmployeeID:    employeeID,
		EffectiveFrom: date(2024, time.January, 1),
		BaseSalary:    decimal.NewFromInt(base),
		Status:        "active",
	}
}

// presentWeekdays fills the attendance map with a Present row for every
// weekday in [start, end] except the listed dates.
func presentWeekdays(repo *fakeRepo, employeeID string, start, end time.Time, except ...string) {
	skip := make(map[string]bool, len(except))
	for _, d := range except {
		skip[d] = true
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dow := d.Weekday()
		if dow == time.Saturday || dow == time.Sunday {
			continue
		}
		if skip[d.Format("2006-01-02")] {
			continue
		}
		repo.attendance[employeeID] = append(repo.attendance[employeeID], payroll.AttendanceDay{
			Date:   d,
			Status: "Present",
		})
	}
}
