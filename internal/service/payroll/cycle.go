package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/audit"
)

// paymentTolerance absorbs rounding drift when comparing paid totals
// against the payslip net.
var paymentTolerance = decimal.NewFromFloat(0.01)

func (s *Service) CreateCycle(ctx context.Context, req payroll.CreateCycleRequest) (payroll.Cycle, error) {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.Cycle{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.Cycle{}, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	cycle, err := s.repo.CreateCycle(ctx, payroll.Cycle{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Status:    payroll.CycleStatusDraft,
	})
	if err != nil {
		return payroll.Cycle{}, err
	}

	s.audit.Log(ctx, "payroll.cycle.created", map[string]any{"cycle_id": cycle.ID, "name": cycle.Name}, audit.User{ID: userID, Role: role, Name: name})
	return cycle, nil
}

func (s *Service) ListCycles(ctx context.Context) ([]payroll.CycleSummary, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCycles(ctx, companyID)
}

func (s *Service) GetCycle(ctx context.Context, id string) (payroll.Cycle, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.Cycle{}, err
	}
	return s.repo.GetCycle(ctx, id, companyID)
}

func (s *Service) ListPayslipsByCycle(ctx context.Context, cycleID string) ([]payroll.Payslip, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPayslipsByCycle(ctx, cycleID, companyID)
}

func (s *Service) GetPayslip(ctx context.Context, id string) (payroll.Payslip, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.Payslip{}, err
	}
	return s.repo.GetPayslip(ctx, id, companyID)
}

func (s *Service) ListCycleApprovals(ctx context.Context, cycleID string) ([]payroll.CycleApproval, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCycleApprovals(ctx, cycleID, companyID)
}

// RunCycle generates payslips for every active employee. Attendance is
// re-derived for the window first so punches recorded since the last run
// are reflected. One employee failing never aborts the run; failures are
// returned per employee.
func (s *Service) RunCycle(ctx context.Context, cycleID string) ([]payroll.RunResult, error) {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cycle, err := s.repo.GetCycle(ctx, cycleID, companyID)
	if err != nil {
		return nil, err
	}
	switch cycle.Status {
	case payroll.CycleStatusApproved, payroll.CycleStatusLocked, payroll.CycleStatusPaid:
		return nil, fmt.Errorf("%w: cycle cannot be recalculated after approval or payment", payroll.ErrCycleStatusConflict)
	}

	if err := s.processor.ProcessRange(ctx, companyID, cycle.StartDate, cycle.EndDate); err != nil {
		return nil, fmt.Errorf("failed to process attendance for cycle: %w", err)
	}

	if err := s.repo.MarkCycleProcessing(ctx, cycleID, companyID, time.Now().UTC()); err != nil {
		return nil, err
	}
	cycle.Status = payroll.CycleStatusProcessing

	cfg, err := s.LoadConfig(ctx, companyID)
	if err != nil {
		return nil, err
	}
	slabs, err := s.repo.ListTaxSlabs(ctx, companyID)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	results := make([]payroll.RunResult, 0, len(employees))
	for _, emp := range employees {
		result := payroll.RunResult{EmployeeID: emp.ID, EmployeeName: emp.FullName}
		payslipID, calcErr := s.calculateEmployeeSalary(ctx, emp, cycle, cfg, slabs)
		if calcErr != nil {
			msg := calcErr.Error()
			result.Error = &msg
		} else {
			result.PayslipID = &payslipID
		}
		results = append(results, result)
	}

	s.audit.Log(ctx, "payroll.cycle.run", map[string]any{
		"cycle_id":  cycleID,
		"employees": len(employees),
	}, audit.User{ID: userID, Role: role, Name: name})
	return results, nil
}

// ApproveCycle moves a processed cycle to approved. The decision and the
// status change commit together under a row lock on the cycle.
func (s *Service) ApproveCycle(ctx context.Context, cycleID string, req payroll.CycleDecisionRequest) error {
	return s.decideCycle(ctx, cycleID, req.Note, true)
}

// RejectCycle returns a processed cycle to draft so it can be rerun.
func (s *Service) RejectCycle(ctx context.Context, cycleID string, req payroll.CycleDecisionRequest) error {
	return s.decideCycle(ctx, cycleID, req.Note, false)
}

func (s *Service) decideCycle(ctx context.Context, cycleID string, note *string, approve bool) error {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	action := "rejected"
	if approve {
		action = "approved"
	}

	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		cycle, err := s.repo.GetCycleForUpdate(ctx, cycleID, companyID)
		if err != nil {
			return err
		}
		if !cycle.Status.IsProcessing() {
			return fmt.Errorf("%w: cycle must be processed before a decision", payroll.ErrCycleStatusConflict)
		}

		if approve {
			now := time.Now().UTC()
			if err := s.repo.SetCycleApproval(ctx, cycleID, companyID, payroll.CycleStatusApproved, &userID, &now); err != nil {
				return err
			}
		} else {
			if err := s.repo.SetCycleApproval(ctx, cycleID, companyID, payroll.CycleStatusDraft, nil, nil); err != nil {
				return err
			}
		}

		return s.repo.AddCycleApproval(ctx, payroll.CycleApproval{
			ID:        uuid.NewString(),
			CompanyID: companyID,
			CycleID:   cycleID,
			Action:    action,
			Note:      note,
			UserID:    userID,
			UserName:  name,
			UserRole:  role,
		})
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, "payroll.cycle."+action, map[string]any{"cycle_id": cycleID}, audit.User{ID: userID, Role: role, Name: name})
	return nil
}

// LockCycle finalizes an approved cycle: loan installments on the payslips
// become repayment rows, the accrual is posted to the ledger, and the cycle
// locks. Everything runs in one transaction so a ledger failure leaves the
// loans and the cycle untouched.
func (s *Service) LockCycle(ctx context.Context, cycleID string) error {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	cfg, err := s.LoadConfig(ctx, companyID)
	if err != nil {
		return err
	}

	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		cycle, err := s.repo.GetCycleForUpdate(ctx, cycleID, companyID)
		if err != nil {
			return err
		}
		if cycle.Status != payroll.CycleStatusApproved {
			return fmt.Errorf("%w: cycle must be approved before locking", payroll.ErrCycleNotApproved)
		}

		if err := s.processLoanRepayments(ctx, cycleID, companyID); err != nil {
			return err
		}
		if err := s.postAccrualToLedger(ctx, cycle, cfg); err != nil {
			return err
		}
		return s.repo.UpdateCycleStatus(ctx, cycleID, companyID, payroll.CycleStatusLocked)
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, "payroll.cycle.locked", map[string]any{"cycle_id": cycleID}, audit.User{ID: userID, Role: role, Name: name})
	return nil
}

// MarkCyclePaid settles a locked cycle in one batch: payslips flip to paid
// with payment history rows, and the net payout is posted against cash.
func (s *Service) MarkCyclePaid(ctx context.Context, cycleID string) error {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		cycle, err := s.repo.GetCycleForUpdate(ctx, cycleID, companyID)
		if err != nil {
			return err
		}
		if cycle.Status != payroll.CycleStatusLocked {
			return fmt.Errorf("%w: cycle must be locked before payment", payroll.ErrCycleNotLocked)
		}

		paymentDate := time.Now().UTC().Truncate(24 * time.Hour)
		if err := s.repo.MarkPayslipsPaid(ctx, cycleID, companyID, paymentDate); err != nil {
			return err
		}

		payslips, err := s.repo.ListPayslipsByCycle(ctx, cycleID, companyID)
		if err != nil {
			return err
		}
		for _, p := range payslips {
			if !p.NetSalary.IsPositive() {
				continue
			}
			if _, err := s.repo.AddPayslipPayment(ctx, payroll.PayslipPayment{
				ID:          uuid.NewString(),
				CompanyID:   companyID,
				PayslipID:   p.ID,
				Amount:      p.NetSalary,
				PaymentDate: paymentDate,
				Method:      "batch",
			}); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateCycleStatus(ctx, cycleID, companyID, payroll.CycleStatusPaid); err != nil {
			return err
		}
		return s.postPaymentToLedger(ctx, cycle)
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, "payroll.cycle.paid", map[string]any{"cycle_id": cycleID}, audit.User{ID: userID, Role: role, Name: name})
	return nil
}

// PaymentResult summarizes a single recorded payment.
type PaymentResult struct {
	PaymentID  string          `json:"payment_id"`
	Status     string          `json:"status"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Balance    decimal.Decimal `json:"balance"`
}

// RecordPayslipPayment records a partial or full payment against one
// payslip of a locked cycle. When the last unpaid payslip settles, the
// cycle is promoted to paid.
func (s *Service) RecordPayslipPayment(ctx context.Context, req payroll.RecordPaymentRequest) (PaymentResult, error) {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return PaymentResult{}, err
	}
	if err := req.Validate(); err != nil {
		return PaymentResult{}, err
	}

	method := req.Method
	if method == "" {
		method = "bank_transfer"
	}
	paymentDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != nil {
		paymentDate, _ = time.Parse("2006-01-02", *req.PaymentDate)
	}

	var result PaymentResult
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		payslip, err := s.repo.GetPayslip(ctx, req.PayslipID, companyID)
		if err != nil {
			return err
		}
		cycle, err := s.repo.GetCycleForUpdate(ctx, payslip.CycleID, companyID)
		if err != nil {
			return err
		}
		if cycle.Status != payroll.CycleStatusLocked && cycle.Status != payroll.CycleStatusPaid {
			return fmt.Errorf("%w: cycle must be locked before payments can be recorded", payroll.ErrCycleStatusConflict)
		}
		if !req.Amount.IsPositive() {
			return payroll.ErrPaymentNotPositive
		}

		payments, err := s.repo.ListPayslipPayments(ctx, req.PayslipID, companyID)
		if err != nil {
			return err
		}
		paidTotal := decimal.Zero
		for _, p := range payments {
			paidTotal = paidTotal.Add(p.Amount)
		}
		balance := decimal.Max(decimal.Zero, payslip.NetSalary.Sub(paidTotal))
		if req.Amount.GreaterThan(balance.Add(paymentTolerance)) {
			return payroll.ErrPayslipOverpayment
		}

		payment, err := s.repo.AddPayslipPayment(ctx, payroll.PayslipPayment{
			ID:          uuid.NewString(),
			CompanyID:   companyID,
			PayslipID:   req.PayslipID,
			Amount:      req.Amount,
			PaymentDate: paymentDate,
			Method:      method,
			Reference:   req.Reference,
		})
		if err != nil {
			return err
		}

		newPaidTotal := paidTotal.Add(req.Amount)
		status := payroll.PaymentStatusPartial
		if newPaidTotal.GreaterThanOrEqual(payslip.NetSalary.Sub(paymentTolerance)) {
			status = payroll.PaymentStatusPaid
		}
		if err := s.repo.SetPayslipPaymentStatus(ctx, req.PayslipID, companyID, status, &paymentDate); err != nil {
			return err
		}

		if err := s.postPayslipPaymentToLedger(ctx, cycle, payslip, req.Amount, paymentDate); err != nil {
			return err
		}

		if cycle.Status == payroll.CycleStatusLocked {
			unpaid, err := s.repo.CountUnpaidPayslips(ctx, payslip.CycleID, companyID)
			if err != nil {
				return err
			}
			if unpaid == 0 {
				if err := s.repo.UpdateCycleStatus(ctx, payslip.CycleID, companyID, payroll.CycleStatusPaid); err != nil {
					return err
				}
			}
		}

		result = PaymentResult{
			PaymentID:  payment.ID,
			Status:     string(status),
			PaidAmount: newPaidTotal,
			Balance:    decimal.Max(decimal.Zero, payslip.NetSalary.Sub(newPaidTotal)),
		}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}

	s.audit.Log(ctx, "payroll.payment.recorded", map[string]any{
		"payslip_id": req.PayslipID,
		"amount":     req.Amount.String(),
	}, audit.User{ID: userID, Role: role, Name: name})
	return result, nil
}

// processLoanRepayments turns every loan installment line of the cycle's
// payslips into a repayment row. The loan id stored on the item makes the
// match exact; the display label is never parsed.
func (s *Service) processLoanRepayments(ctx context.Context, cycleID, companyID string) error {
	payslips, err := s.repo.ListPayslipsByCycle(ctx, cycleID, companyID)
	if err != nil {
		return err
	}
	repaymentDate := time.Now().UTC().Truncate(24 * time.Hour)

	for _, summary := range payslips {
		payslip, err := s.repo.GetPayslip(ctx, summary.ID, companyID)
		if err != nil {
			return err
		}
		for _, item := range payslip.Items {
			if item.LoanID == nil || !item.Amount.IsPositive() {
				continue
			}
			payslipID := payslip.ID
			if err := s.repo.RecordLoanRepayment(ctx, payroll.LoanRepayment{
				ID:          uuid.NewString(),
				CompanyID:   companyID,
				LoanID:      *item.LoanID,
				PayslipID:   &payslipID,
				Amount:      item.Amount,
				PaymentDate: repaymentDate,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
