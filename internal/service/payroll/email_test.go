package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

func seedRenderablePayslip(repo *fakeRepo, id string, email *string) payroll.Payslip {
	p := payroll.Payslip{
		ID: id, CompanyID: testCompanyID, CycleID: "cycle-1", EmployeeID: "emp-" + id,
		EmployeeName: "Alice Rahman", EmployeeCode: "0001", Email: email,
		TotalDays: 30, WorkingDays: 21, PresentDays: 21, PayableDays: 21,
		GrossSalary:     decimal.NewFromInt(3500),
		TotalDeductions: decimal.NewFromInt(750),
		TaxDeducted:     decimal.NewFromInt(300),
		NetSalary:       decimal.NewFromInt(2750),
		PaymentStatus:   payroll.PaymentStatusPending,
		Items: []payroll.PayslipItem{
			{ID: id + "-basic", Name: "Basic Salary", Type: payroll.ItemTypeEarning, Amount: decimal.NewFromInt(3000)},
			{ID: id + "-bonus", Name: "Bonus: Spot Award", Type: payroll.ItemTypeEarning, Amount: decimal.NewFromInt(500)},
			{ID: id + "-tax", Name: "Income Tax", Type: payroll.ItemTypeDeduction, Amount: decimal.NewFromInt(300)},
		},
	}
	repo.payslips[id] = p
	return p
}

func TestRenderPayslipHTML(t *testing.T) {
	repo := newFakeRepo()
	seedCycleWithStatus(repo, payroll.CycleStatusProcessing)
	repo.settings["currency_code"] = "BDT"
	seedRenderablePayslip(repo, "slip-1", nil)

	svc, _, _ := newTestService(repo)
	html, err := svc.RenderPayslipHTML(authedContext(t), "slip-1")
	require.NoError(t, err)

	assert.Contains(t, html, "Alice Rahman")
	assert.Contains(t, html, "June 2025")
	assert.Contains(t, html, "Basic Salary")
	assert.Contains(t, html, "Income Tax")
	assert.Contains(t, html, "2750.00")
	assert.Contains(t, html, "BDT")
}

func TestEmailPayslip(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedCycleWithStatus(repo, payroll.CycleStatusLocked)
	email := "alice@example.com"
	seedRenderablePayslip(repo, "slip-1", &email)

	svc, _, mailer := newTestService(repo)
	err := svc.EmailPayslip(authedContext(t), "slip-1")
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, email, mailer.sent[0].To)
	assert.Equal(t, "Payslip for "+cycle.StartDate.Format("January 2006"), mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Alice Rahman")
}

func TestEmailPayslipWithoutAddress(t *testing.T) {
	repo := newFakeRepo()
	seedCycleWithStatus(repo, payroll.CycleStatusLocked)
	seedRenderablePayslip(repo, "slip-1", nil)

	svc, _, mailer := newTestService(repo)
	err := svc.EmailPayslip(authedContext(t), "slip-1")
	require.Error(t, err)
	assert.Empty(t, mailer.sent)
}

func TestEmailPayslipsForCycleCollectsFailures(t *testing.T) {
	repo := newFakeRepo()
	seedCycleWithStatus(repo, payroll.CycleStatusLocked)
	email := "alice@example.com"
	seedRenderablePayslip(repo, "slip-1", &email)
	seedRenderablePayslip(repo, "slip-2", nil)

	svc, _, mailer := newTestService(repo)
	summary, err := svc.EmailPayslipsForCycle(authedContext(t), "cycle-1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "no email address")
	assert.Len(t, mailer.sent, 1)
}

func TestEmailSubjectUsesCycleMonth(t *testing.T) {
	repo := newFakeRepo()
	cycle := seedCycleWithStatus(repo, payroll.CycleStatusLocked)
	cycle.StartDate = date(2025, time.December, 1)
	cycle.EndDate = date(2025, time.December, 31)
	repo.cycles[cycle.ID] = cycle

	email := "alice@example.com"
	seedRenderablePayslip(repo, "slip-1", &email)

	svc, _, mailer := newTestService(repo)
	require.NoError(t, svc.EmailPayslip(authedContext(t), "slip-1"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Payslip for December 2025", mailer.sent[0].Subject)
}
