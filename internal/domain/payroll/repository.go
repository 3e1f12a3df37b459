package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines data access for the payroll area.
// All methods take companyID to prevent cross-company data access.
type Repository interface {
	// InTx runs fn inside a single database transaction. Repository calls
	// made with the ctx passed to fn join that transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Cycles
	CreateCycle(ctx context.Context, cycle Cycle) (Cycle, error)
	GetCycle(ctx context.Context, id, companyID string) (Cycle, error)
	// GetCycleForUpdate locks the cycle row for the duration of the
	// surrounding transaction.
	GetCycleForUpdate(ctx context.Context, id, companyID string) (Cycle, error)
	ListCycles(ctx context.Context, companyID string) ([]CycleSummary, error)
	UpdateCycleStatus(ctx context.Context, id, companyID string, status CycleStatus) error
	MarkCycleProcessing(ctx context.Context, id, companyID string, processedAt time.Time) error
	SetCycleApproval(ctx context.Context, id, companyID string, status CycleStatus, approvedBy *string, approvedAt *time.Time) error
	AddCycleApproval(ctx context.Context, approval CycleApproval) error
	ListCycleApprovals(ctx context.Context, cycleID, companyID string) ([]CycleApproval, error)
	GetCycleTotals(ctx context.Context, cycleID, companyID string) (CycleTotals, error)
	CountUnpaidPayslips(ctx context.Context, cycleID, companyID string) (int, error)

	// Payslips
	// ReplacePayslip deletes any previous payslip for the same employee and
	// cycle and inserts the new one with its items atomically. It fails with
	// ErrPayslipHasPayments when the previous payslip has recorded payments.
	ReplacePayslip(ctx context.Context, payslip Payslip, items []PayslipItem) (string, error)
	GetPayslip(ctx context.Context, id, companyID string) (Payslip, error)
	GetPayslipByCycleEmployee(ctx context.Context, cycleID, employeeID, companyID string) (Payslip, error)
	ListPayslipsByCycle(ctx context.Context, cycleID, companyID string) ([]Payslip, error)
	AddPayslipItem(ctx context.Context, companyID string, item PayslipItem) error
	UpsertPayslipItemByName(ctx context.Context, payslipID, companyID, name string, itemType ItemType, amount decimal.Decimal) error
	UpdatePayslipTotals(ctx context.Context, id, companyID string, gross, deductions, tax, net decimal.Decimal) error
	MarkPayslipsPaid(ctx context.Context, cycleID, companyID string, paymentDate time.Time) error
	SetPayslipPaymentStatus(ctx context.Context, id, companyID string, status PaymentStatus, paymentDate *time.Time) error
	SumPayslipItemsByName(ctx context.Context, cycleID, companyID, name string) (decimal.Decimal, error)
	SumLoanRepaymentItems(ctx context.Context, cycleID, companyID string) (decimal.Decimal, error)

	// Payments
	AddPayslipPayment(ctx context.Context, payment PayslipPayment) (PayslipPayment, error)
	ListPayslipPayments(ctx context.Context, payslipID, companyID string) ([]PayslipPayment, error)

	// Salary structures and components
	GetActiveSalaryStructure(ctx context.Context, employeeID, companyID string, asOf time.Time) (SalaryStructure, error)
	GetSalaryHistory(ctx context.Context, employeeID, companyID string) ([]SalaryStructure, error)
	SaveSalaryStructure(ctx context.Context, structure SalaryStructure) (string, error)
	CreateComponent(ctx context.Context, component SalaryComponent) (SalaryComponent, error)
	ListComponents(ctx context.Context, companyID string) ([]SalaryComponent, error)

	// Bonuses
	GetBonusesForEmployeeCycle(ctx context.Context, employeeID, cycleID, companyID string) ([]Bonus, error)
	ListBonusesByCycle(ctx context.Context, cycleID, companyID string) ([]Bonus, error)
	SaveBonus(ctx context.Context, bonus Bonus) (Bonus, error)
	DeleteBonus(ctx context.Context, id, companyID string) error
	MarkBonusesApplied(ctx context.Context, ids []string, payslipID, companyID string, appliedAt time.Time) error

	// Loans
	CreateLoan(ctx context.Context, loan Loan) (Loan, error)
	GetLoan(ctx context.Context, id, companyID string) (Loan, error)
	ListLoans(ctx context.Context, companyID string, employeeID *string, status *LoanStatus) ([]Loan, error)
	GetActiveLoans(ctx context.Context, employeeID, companyID string) ([]Loan, error)
	RecordLoanRepayment(ctx context.Context, repayment LoanRepayment) error
	UpdateLoanStatus(ctx context.Context, id, companyID string, status LoanStatus) error

	// Tax slabs
	ListTaxSlabs(ctx context.Context, companyID string) ([]TaxSlab, error)
	SaveTaxSlab(ctx context.Context, slab TaxSlab) (TaxSlab, error)
	DeleteTaxSlab(ctx context.Context, id, companyID string) error

	// Settings
	GetSettings(ctx context.Context, companyID string) (map[string]string, error)
	SaveSetting(ctx context.Context, companyID, key, value string) error

	// Ledger
	GetAccountByCode(ctx context.Context, companyID, code string) (Account, error)
	CreateJournalEntry(ctx context.Context, entry JournalEntry) (string, error)
	ListJournalEntriesByReference(ctx context.Context, companyID, referenceType, referenceID string) ([]JournalEntry, error)

	// Bank accounts
	ListBankAccounts(ctx context.Context, employeeID, companyID string) ([]BankAccount, error)
	SaveBankAccount(ctx context.Context, account BankAccount) (BankAccount, error)
	DeleteBankAccount(ctx context.Context, id, companyID string) error
	SetPrimaryBankAccount(ctx context.Context, id, employeeID, companyID string) error
	GetBankDetailsForCycle(ctx context.Context, cycleID, companyID string) ([]BankTransferRow, error)

	// Calendar inputs
	GetEmployeeWorkingDays(ctx context.Context, employeeID, companyID string) ([]string, error)
	GetHolidayDates(ctx context.Context, companyID string, start, end time.Time) (map[string]bool, error)
	GetApprovedLeaves(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]LeaveRecord, error)
	GetAttendanceDays(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]AttendanceDay, error)

	// Reports
	GetYearlyCost(ctx context.Context, companyID string, year int) ([]MonthlyCost, error)
	GetEmployeePayslipHistory(ctx context.Context, employeeID, companyID string, limit int) ([]Payslip, error)
	GetDepartmentCost(ctx context.Context, cycleID, companyID string) ([]DepartmentCost, error)
	GetOvertimeReport(ctx context.Context, cycleID, companyID string) ([]OvertimeRow, error)
	GetDeductionReport(ctx context.Context, cycleID, companyID string) ([]DeductionRow, error)
	GetPaymentSummaryForCycle(ctx context.Context, cycleID, companyID string) ([]PaymentSummaryRow, error)
}

type MonthlyCost struct {
	Month      string
	TotalGross decimal.Decimal
	TotalNet   decimal.Decimal
	TotalTax   decimal.Decimal
	Payslips   int
}

type DepartmentCost struct {
	Department    string
	EmployeeCount int
	TotalGross    decimal.Decimal
	TotalNet      decimal.Decimal
}

type OvertimeRow struct {
	EmployeeCode  string
	EmployeeName  string
	Department    string
	OvertimeHours float64
	OvertimePay   decimal.Decimal
}

type DeductionRow struct {
	EmployeeCode  string
	EmployeeName  string
	DeductionName string
	Amount        decimal.Decimal
}

type PaymentSummaryRow struct {
	EmployeeCode    string
	EmployeeName    string
	NetSalary       decimal.Decimal
	PaidAmount      decimal.Decimal
	Balance         decimal.Decimal
	PaymentStatus   string
	LastPaymentDate *time.Time
}

// BankTransferRow joins a payslip with the employee's primary bank account,
// account number already decrypted.
type BankTransferRow struct {
	EmployeeCode  string
	EmployeeName  string
	BankName      *string
	AccountNumber *string
	NetSalary     decimal.Decimal
}
