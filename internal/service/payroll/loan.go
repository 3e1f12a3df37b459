package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/audit"
	"github.com/tovfikur/attsys-sub001/internal/pkg/validator"
)

// AddLoan creates a loan with simple interest: the total to repay is the
// principal plus principal * rate / 100.
func (s *Service) AddLoan(ctx context.Context, req payroll.CreateLoanRequest) (payroll.Loan, error) {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.Loan{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.Loan{}, err
	}
	if req.MonthlyInstallment.GreaterThan(req.Amount) {
		return payroll.Loan{}, payroll.ErrLoanInstallmentTooBig
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return payroll.Loan{}, err
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	totalRepayment := req.Amount.Add(req.Amount.Mul(req.InterestRate).Div(decimal.NewFromInt(100)))

	loan, err := s.repo.CreateLoan(ctx, payroll.Loan{
		ID:                 uuid.NewString(),
		CompanyID:          companyID,
		EmployeeID:         req.EmployeeID,
		Type:               payroll.LoanType(req.Type),
		Amount:             req.Amount,
		InterestRate:       req.InterestRate,
		TotalRepayment:     totalRepayment,
		MonthlyInstallment: req.MonthlyInstallment,
		StartDate:          startDate,
		Status:             payroll.LoanStatusActive,
		Note:               req.Note,
	})
	if err != nil {
		return payroll.Loan{}, err
	}

	s.audit.Log(ctx, "payroll.loan.created", map[string]any{
		"loan_id":     loan.ID,
		"employee_id": req.EmployeeID,
		"amount":      req.Amount.String(),
	}, audit.User{ID: userID, Role: role, Name: name})
	return loan, nil
}

// AddAdvance is a loan taken against the next payroll: no interest, and
// the whole amount is recovered in a single installment.
func (s *Service) AddAdvance(ctx context.Context, req payroll.CreateLoanRequest) (payroll.Loan, error) {
	req.Type = string(payroll.LoanTypeAdvance)
	req.InterestRate = decimal.Zero
	req.MonthlyInstallment = req.Amount
	return s.AddLoan(ctx, req)
}

func (s *Service) ListLoans(ctx context.Context, employeeID *string, status *payroll.LoanStatus) ([]payroll.Loan, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLoans(ctx, companyID, employeeID, status)
}

func (s *Service) UpdateLoanStatus(ctx context.Context, id string, status payroll.LoanStatus) error {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	switch status {
	case payroll.LoanStatusPending, payroll.LoanStatusActive, payroll.LoanStatusRejected,
		payroll.LoanStatusClosed, payroll.LoanStatusWrittenOff:
	default:
		return validator.ValidationErrors{{Field: "status", Message: "must be one of pending, active, rejected, closed, written_off"}}
	}
	if err := s.repo.UpdateLoanStatus(ctx, id, companyID, status); err != nil {
		return err
	}

	s.audit.Log(ctx, "payroll.loan.status_changed", map[string]any{
		"loan_id": id,
		"status":  string(status),
	}, audit.User{ID: userID, Role: role, Name: name})
	return nil
}
