package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cycle statuses. "calculated" is a legacy alias for processing that older
// rows may still carry; gating logic accepts it but never writes it.
type CycleStatus string

const (
	CycleStatusDraft      CycleStatus = "draft"
	CycleStatusProcessing CycleStatus = "processing"
	CycleStatusCalculated CycleStatus = "calculated"
	CycleStatusApproved   CycleStatus = "approved"
	CycleStatusLocked     CycleStatus = "locked"
	CycleStatusPaid       CycleStatus = "paid"
)

// IsProcessing reports whether the cycle sits in the post-run, pre-approval
// state, accepting the legacy alias.
func (s CycleStatus) IsProcessing() bool {
	return s == CycleStatusProcessing || s == CycleStatusCalculated
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type ItemType string

const (
	ItemTypeEarning   ItemType = "earning"
	ItemTypeDeduction ItemType = "deduction"
)

type Cycle struct {
	ID          string
	CompanyID   string
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Status      CycleStatus
	ApprovedBy  *string
	ApprovedAt  *time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CycleSummary struct {
	Cycle
	ProcessedCount int
	TotalNet       decimal.Decimal
}

type CycleTotals struct {
	TotalGross         decimal.Decimal
	TotalDeductions    decimal.Decimal
	TotalTax           decimal.Decimal
	TotalNet           decimal.Decimal
	TotalOvertimeHours float64
	PayslipCount       int
}

// CycleApproval is an append-only audit row for approve/reject decisions.
type CycleApproval struct {
	ID        string
	CompanyID string
	CycleID   string
	Action    string
	Note      *string
	UserID    string
	UserName  string
	UserRole  string
	CreatedAt time.Time
}

type Payslip struct {
	ID                string
	CompanyID         string
	CycleID           string
	EmployeeID        string
	SalaryStructureID string

	TotalDays       int
	WorkingDays     float64
	PresentDays     float64
	PaidLeaveDays   float64
	UnpaidLeaveDays float64
	AbsentDays      float64
	WeeklyOffDays   int
	Holidays        int
	PayableDays     float64

	LateMinutes       int
	EarlyLeaveMinutes int
	OvertimeHours     float64

	GrossSalary        decimal.Decimal
	TotalDeductions    decimal.Decimal
	TaxDeducted        decimal.Decimal
	NetSalary          decimal.Decimal
	NonTaxableEarnings decimal.Decimal

	PaymentStatus PaymentStatus
	PaymentDate   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []PayslipItem

	// Joined employee fields, populated by read queries.
	EmployeeName string
	EmployeeCode string
	Email        *string
	Department   *string
	Designation  *string
}

// PayslipItem is a single payslip line. Loan installments carry the loan id
// so repayment posting never has to parse the display label.
type PayslipItem struct {
	ID         string
	PayslipID  string
	Name       string
	Type       ItemType
	Amount     decimal.Decimal
	IsVariable bool
	LoanID     *string
}

type PayslipPayment struct {
	ID          string
	CompanyID   string
	PayslipID   string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   *string
	CreatedAt   time.Time
}

type SalaryStructure struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	EffectiveFrom time.Time
	BaseSalary    decimal.Decimal
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
	Items         []SalaryStructureItem
}

type SalaryStructureItem struct {
	ID           string
	ComponentID  *string
	Name         string
	Type         ItemType
	Amount       decimal.Decimal
	IsPercentage bool
	Percentage   decimal.Decimal
}

type SalaryComponent struct {
	ID        string
	CompanyID string
	Name      string
	Type      ItemType
	IsTaxable bool
	GLCode    *string
	CreatedAt time.Time
}

type BonusKind string

const (
	BonusKindBonus      BonusKind = "bonus"
	BonusKindCommission BonusKind = "commission"
	BonusKindIncentive  BonusKind = "incentive"
	BonusKindPenalty    BonusKind = "penalty"
	BonusKindFine       BonusKind = "fine"
)

type BonusDirection string

const (
	BonusDirectionEarning   BonusDirection = "earning"
	BonusDirectionDeduction BonusDirection = "deduction"
)

type BonusStatus string

const (
	BonusStatusPending   BonusStatus = "pending"
	BonusStatusApplied   BonusStatus = "applied"
	BonusStatusCancelled BonusStatus = "cancelled"
)

type Bonus struct {
	ID               string
	CompanyID        string
	EmployeeID       string
	CycleID          string
	Title            string
	Amount           decimal.Decimal
	Kind             BonusKind
	Direction        BonusDirection
	Taxable          bool
	Status           BonusStatus
	AppliedPayslipID *string
	AppliedAt        *time.Time
	CreatedAt        time.Time

	EmployeeName string
	EmployeeCode string
}

type LoanType string

const (
	LoanTypeLoan    LoanType = "loan"
	LoanTypeAdvance LoanType = "advance"
)

type LoanStatus string

// Only active loans accrue installments; the other statuses park the loan
// either before approval (pending, rejected) or after it stops being
// collectible (closed, written_off).
const (
	LoanStatusPending    LoanStatus = "pending"
	LoanStatusActive     LoanStatus = "active"
	LoanStatusRejected   LoanStatus = "rejected"
	LoanStatusClosed     LoanStatus = "closed"
	LoanStatusWrittenOff LoanStatus = "written_off"
)

type Loan struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	Type               LoanType
	Amount             decimal.Decimal
	InterestRate       decimal.Decimal
	TotalRepayment     decimal.Decimal
	MonthlyInstallment decimal.Decimal
	StartDate          time.Time
	Status             LoanStatus
	Note               *string
	CreatedAt          time.Time

	// Derived: total_repayment minus the sum of recorded repayments.
	CurrentBalance decimal.Decimal

	EmployeeName string
	EmployeeCode string
}

type LoanRepayment struct {
	ID          string
	CompanyID   string
	LoanID      string
	PayslipID   *string
	Amount      decimal.Decimal
	PaymentDate time.Time
	CreatedAt   time.Time
}

type TaxSlab struct {
	ID         string
	CompanyID  string
	Name       string
	MinSalary  decimal.Decimal
	MaxSalary  *decimal.Decimal
	TaxPercent decimal.Decimal
	CreatedAt  time.Time
}

type BankAccount struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	BankName      string
	AccountName   string
	AccountNumber string
	BranchName    *string
	RoutingNumber *string
	IsPrimary     bool
	CreatedAt     time.Time
}

type Account struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Type      string
}

type JournalEntry struct {
	ID            string
	CompanyID     string
	EntryDate     time.Time
	Description   string
	ReferenceType string
	ReferenceID   string
	CreatedAt     time.Time
	Items         []JournalItem
}

type JournalItem struct {
	ID        string
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal

	AccountCode string
	AccountName string
}

// LeaveRecord is one approved-leave day as seen by payroll: the day part
// ("full", "half", "am", "pm") and whether the leave type is paid.
type LeaveRecord struct {
	Date    time.Time
	Type    string
	DayPart string
	IsPaid  bool
}

type AttendanceDay struct {
	Date              time.Time
	Status            string
	LateMinutes       int
	EarlyLeaveMinutes int
	OvertimeMinutes   int
	WorkedMinutes     int
}

// Config is the per-company payroll configuration materialized from the
// payroll_settings key-value table before a cycle run.
type Config struct {
	ProrationBasis         string
	DaysPerMonth           decimal.Decimal
	WorkHoursPerDay        decimal.Decimal
	OvertimeRateMultiplier decimal.Decimal
	LatePenaltyMultiplier  decimal.Decimal
	EarlyLeaveMultiplier   decimal.Decimal
	PFEmployeePercent      decimal.Decimal
	PFEmployerPercent      decimal.Decimal
	CurrencyCode           string
}

const (
	ProrationBasisCalendar = "calendar"
	ProrationBasisWorking  = "working"
	ProrationBasisFixed    = "fixed_days_per_month"
)

// DefaultConfig returns the configuration used when a company has no
// overriding settings rows.
func DefaultConfig() Config {
	return Config{
		ProrationBasis:         ProrationBasisCalendar,
		DaysPerMonth:           decimal.NewFromInt(30),
		WorkHoursPerDay:        decimal.NewFromInt(8),
		OvertimeRateMultiplier: decimal.NewFromFloat(1.5),
		LatePenaltyMultiplier:  decimal.NewFromInt(1),
		EarlyLeaveMultiplier:   decimal.NewFromInt(1),
		PFEmployeePercent:      decimal.Zero,
		PFEmployerPercent:      decimal.Zero,
		CurrencyCode:           "USD",
	}
}

// Chart-of-accounts codes the ledger poster resolves per company.
const (
	AccountCodeCash            = "1001"
	AccountCodeLoanReceivable  = "1002"
	AccountCodeSalariesPayable = "2001"
	AccountCodeTaxPayable      = "2002"
	AccountCodeOtherPayable    = "2003"
	AccountCodeSalaryExpense   = "5001"
)
