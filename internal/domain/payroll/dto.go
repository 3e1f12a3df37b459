package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tovfikur/attsys-sub001/internal/pkg/validator"
)

// ========== CYCLE DTOs ==========

type CreateCycleRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *CreateCycleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CycleDecisionRequest struct {
	Note *string `json:"note,omitempty"`
}

type CycleResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Status      string  `json:"status"`
	ApprovedBy  *string `json:"approved_by,omitempty"`
	ApprovedAt  *string `json:"approved_at,omitempty"`
	ProcessedAt *string `json:"processed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func NewCycleResponse(c Cycle) CycleResponse {
	resp := CycleResponse{
		ID:        c.ID,
		Name:      c.Name,
		StartDate: c.StartDate.Format("2006-01-02"),
		EndDate:   c.EndDate.Format("2006-01-02"),
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	resp.ApprovedBy = c.ApprovedBy
	if c.ApprovedAt != nil {
		s := c.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if c.ProcessedAt != nil {
		s := c.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}

type CycleSummaryResponse struct {
	CycleResponse
	ProcessedCount int             `json:"processed_count"`
	TotalNet       decimal.Decimal `json:"total_net"`
}

func NewCycleSummaryResponse(c CycleSummary) CycleSummaryResponse {
	return CycleSummaryResponse{
		CycleResponse:  NewCycleResponse(c.Cycle),
		ProcessedCount: c.ProcessedCount,
		TotalNet:       c.TotalNet,
	}
}

// RunResult is the per-employee outcome of a cycle run. Failures are
// reported alongside successes; one bad employee never aborts the run.
type RunResult struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	PayslipID    *string `json:"payslip_id,omitempty"`
	Error        *string `json:"error,omitempty"`
}

// ========== PAYSLIP DTOs ==========

type PayslipItemResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	IsVariable bool            `json:"is_variable"`
	LoanID     *string         `json:"loan_id,omitempty"`
}

type PayslipResponse struct {
	ID              string  `json:"id"`
	CycleID         string  `json:"cycle_id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name"`
	EmployeeCode    string  `json:"employee_code"`
	Department      *string `json:"department,omitempty"`
	Designation     *string `json:"designation,omitempty"`
	TotalDays       int     `json:"total_days"`
	WorkingDays     float64 `json:"working_days"`
	PresentDays     float64 `json:"present_days"`
	PaidLeaveDays   float64 `json:"paid_leave_days"`
	UnpaidLeaveDays float64 `json:"unpaid_leave_days"`
	AbsentDays      float64 `json:"absent_days"`
	WeeklyOffDays   int     `json:"weekly_off_days"`
	Holidays        int     `json:"holidays"`
	PayableDays     float64 `json:"payable_days"`
	LateMinutes     int     `json:"late_minutes"`
	OvertimeHours   float64 `json:"overtime_hours"`

	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TaxDeducted     decimal.Decimal `json:"tax_deducted"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	PaymentStatus string  `json:"payment_status"`
	PaymentDate   *string `json:"payment_date,omitempty"`

	Items []PayslipItemResponse `json:"items,omitempty"`
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:              p.ID,
		CycleID:         p.CycleID,
		EmployeeID:      p.EmployeeID,
		EmployeeName:    p.EmployeeName,
		EmployeeCode:    p.EmployeeCode,
		Department:      p.Department,
		Designation:     p.Designation,
		TotalDays:       p.TotalDays,
		WorkingDays:     p.WorkingDays,
		PresentDays:     p.PresentDays,
		PaidLeaveDays:   p.PaidLeaveDays,
		UnpaidLeaveDays: p.UnpaidLeaveDays,
		AbsentDays:      p.AbsentDays,
		WeeklyOffDays:   p.WeeklyOffDays,
		Holidays:        p.Holidays,
		PayableDays:     p.PayableDays,
		LateMinutes:     p.LateMinutes,
		OvertimeHours:   p.OvertimeHours,
		GrossSalary:     p.GrossSalary,
		TotalDeductions: p.TotalDeductions,
		TaxDeducted:     p.TaxDeducted,
		NetSalary:       p.NetSalary,
		PaymentStatus:   string(p.PaymentStatus),
	}
	if p.PaymentDate != nil {
		s := p.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &s
	}
	for _, item := range p.Items {
		resp.Items = append(resp.Items, PayslipItemResponse{
			ID:         item.ID,
			Name:       item.Name,
			Type:       string(item.Type),
			Amount:     item.Amount,
			IsVariable: item.IsVariable,
			LoanID:     item.LoanID,
		})
	}
	return resp
}

type AddPayslipItemRequest struct {
	PayslipID string          `json:"-"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r *AddPayslipItemRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.Type != string(ItemTypeEarning) && r.Type != string(ItemTypeDeduction) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be 'earning' or 'deduction'"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than zero"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordPaymentRequest struct {
	PayslipID   string          `json:"-"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *string         `json:"payment_date,omitempty"`
	Method      string          `json:"method,omitempty"`
	Reference   *string         `json:"reference,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than zero"})
	}
	if r.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== BONUS DTOs ==========

type SaveBonusRequest struct {
	ID         *string         `json:"id,omitempty"`
	EmployeeID string          `json:"employee_id"`
	CycleID    string          `json:"cycle_id"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       string          `json:"kind"`
	Direction  *string         `json:"direction,omitempty"`
	Taxable    *bool           `json:"taxable,omitempty"`
}

func (r *SaveBonusRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.CycleID == "" {
		errs = append(errs, validator.ValidationError{Field: "cycle_id", Message: "is required"})
	}
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than zero"})
	}
	kinds := []string{string(BonusKindBonus), string(BonusKindCommission), string(BonusKindIncentive), string(BonusKindPenalty), string(BonusKindFine)}
	if !validator.IsInSlice(r.Kind, kinds) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be one of bonus, commission, incentive, penalty, fine"})
	}
	if r.Direction != nil && *r.Direction != string(BonusDirectionEarning) && *r.Direction != string(BonusDirectionDeduction) {
		errs = append(errs, validator.ValidationError{Field: "direction", Message: "must be 'earning' or 'deduction'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== LOAN DTOs ==========

type CreateLoanRequest struct {
	EmployeeID         string          `json:"employee_id"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	StartDate          string          `json:"start_date"`
	Note               *string         `json:"note,omitempty"`
}

func (r *CreateLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.Type != string(LoanTypeLoan) && r.Type != string(LoanTypeAdvance) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be 'loan' or 'advance'"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than zero"})
	}
	if r.InterestRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "interest_rate", Message: "must be non-negative"})
	}
	if r.Type == string(LoanTypeLoan) {
		if !r.MonthlyInstallment.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "monthly_installment", Message: "must be greater than zero"})
		} else if r.MonthlyInstallment.GreaterThan(r.Amount) {
			errs = append(errs, validator.ValidationError{Field: "monthly_installment", Message: "must not exceed the principal"})
		}
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoanResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name,omitempty"`
	EmployeeCode       string          `json:"employee_code,omitempty"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	TotalRepayment     decimal.Decimal `json:"total_repayment"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	StartDate          string          `json:"start_date"`
	Status             string          `json:"status"`
	Note               *string         `json:"note,omitempty"`
}

func NewLoanResponse(l Loan) LoanResponse {
	return LoanResponse{
		ID:                 l.ID,
		EmployeeID:         l.EmployeeID,
		EmployeeName:       l.EmployeeName,
		EmployeeCode:       l.EmployeeCode,
		Type:               string(l.Type),
		Amount:             l.Amount,
		InterestRate:       l.InterestRate,
		TotalRepayment:     l.TotalRepayment,
		MonthlyInstallment: l.MonthlyInstallment,
		CurrentBalance:     l.CurrentBalance,
		StartDate:          l.StartDate.Format("2006-01-02"),
		Status:             string(l.Status),
		Note:               l.Note,
	}
}

// ========== TAX SLAB DTOs ==========

type SaveTaxSlabRequest struct {
	ID         *string          `json:"id,omitempty"`
	Name       string           `json:"name"`
	MinSalary  decimal.Decimal  `json:"min_salary"`
	MaxSalary  *decimal.Decimal `json:"max_salary,omitempty"`
	TaxPercent decimal.Decimal  `json:"tax_percent"`
}

func (r *SaveTaxSlabRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.MinSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "min_salary", Message: "must be non-negative"})
	}
	if r.MaxSalary != nil && r.MaxSalary.LessThanOrEqual(r.MinSalary) {
		errs = append(errs, validator.ValidationError{Field: "max_salary", Message: "must be greater than min_salary"})
	}
	if r.TaxPercent.IsNegative() || r.TaxPercent.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, validator.ValidationError{Field: "tax_percent", Message: "must be between 0 and 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== SALARY STRUCTURE DTOs ==========

type CreateComponentRequest struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	IsTaxable *bool   `json:"is_taxable,omitempty"`
	GLCode    *string `json:"gl_code,omitempty"`
}

func (r *CreateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.Type != string(ItemTypeEarning) && r.Type != string(ItemTypeDeduction) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be 'earning' or 'deduction'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SaveStructureItemRequest struct {
	ComponentID  *string         `json:"component_id,omitempty"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	IsPercentage bool            `json:"is_percentage"`
	Percentage   decimal.Decimal `json:"percentage"`
}

type SaveSalaryStructureRequest struct {
	EmployeeID    string                     `json:"employee_id"`
	EffectiveFrom string                     `json:"effective_from"`
	BaseSalary    decimal.Decimal            `json:"base_salary"`
	PaymentMethod string                     `json:"payment_method,omitempty"`
	Items         []SaveStructureItemRequest `json:"items,omitempty"`
}

func (r *SaveSalaryStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if !r.BaseSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be greater than zero"})
	}
	for i, item := range r.Items {
		if validator.IsEmpty(item.Name) {
			errs = append(errs, validator.ValidationError{Field: "items[" + validator.Itoa(i) + "].name", Message: "is required"})
		}
		if item.Type != string(ItemTypeEarning) && item.Type != string(ItemTypeDeduction) {
			errs = append(errs, validator.ValidationError{Field: "items[" + validator.Itoa(i) + "].type", Message: "must be 'earning' or 'deduction'"})
		}
		if item.IsPercentage && item.Percentage.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "items[" + validator.Itoa(i) + "].percentage", Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== BANK ACCOUNT DTOs ==========

type SaveBankAccountRequest struct {
	ID            *string `json:"id,omitempty"`
	EmployeeID    string  `json:"employee_id"`
	BankName      string  `json:"bank_name"`
	AccountName   string  `json:"account_name"`
	AccountNumber string  `json:"account_number"`
	BranchName    *string `json:"branch_name,omitempty"`
	RoutingNumber *string `json:"routing_number,omitempty"`
	IsPrimary     bool    `json:"is_primary"`
}

func (r *SaveBankAccountRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.BankName) {
		errs = append(errs, validator.ValidationError{Field: "bank_name", Message: "is required"})
	}
	if validator.IsEmpty(r.AccountName) {
		errs = append(errs, validator.ValidationError{Field: "account_name", Message: "is required"})
	}
	if validator.IsEmpty(r.AccountNumber) {
		errs = append(errs, validator.ValidationError{Field: "account_number", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== SETTINGS DTOs ==========

type SaveSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

func (r *SaveSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Settings) == 0 {
		errs = append(errs, validator.ValidationError{Field: "settings", Message: "at least one setting is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== EMAIL / EXPORT DTOs ==========

type EmailSummary struct {
	Total  int      `json:"total"`
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}
