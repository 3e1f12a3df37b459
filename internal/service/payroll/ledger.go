package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// postAccrualToLedger books the payroll accrual for a cycle:
//
//	Dr 5001 Salary Expense      total gross
//	Cr 2002 Tax Payable         total tax
//	Cr 1002 Employee Loans      loan repayments (asset recovered)
//	Cr 2001 Salaries Payable    total net
//	Cr 2003 Other Payable       remaining deductions (2002 when absent)
//
// An employer PF contribution adds a matching 5001/2003 pair. Missing
// 5001, 2001 or 2002 accounts abort the lock.
func (s *Service) postAccrualToLedger(ctx context.Context, cycle payroll.Cycle, cfg payroll.Config) error {
	payslips, err := s.repo.ListPayslipsByCycle(ctx, cycle.ID, cycle.CompanyID)
	if err != nil {
		return err
	}
	if len(payslips) == 0 {
		return fmt.Errorf("%w: no payslips generated for this cycle", payroll.ErrCycleStatusConflict)
	}

	totalGross, totalTax, totalNet, totalDeductions := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range payslips {
		totalGross = totalGross.Add(p.GrossSalary)
		totalTax = totalTax.Add(p.TaxDeducted)
		totalNet = totalNet.Add(p.NetSalary)
		totalDeductions = totalDeductions.Add(p.TotalDeductions)
	}

	totalLoanRepayments, err := s.repo.SumLoanRepaymentItems(ctx, cycle.ID, cycle.CompanyID)
	if err != nil {
		return err
	}
	basicSalaryTotal, err := s.repo.SumPayslipItemsByName(ctx, cycle.ID, cycle.CompanyID, itemBasicSalary)
	if err != nil {
		return err
	}
	pfEmployerAmount := decimal.Zero
	if cfg.PFEmployerPercent.IsPositive() {
		pfEmployerAmount = basicSalaryTotal.Mul(cfg.PFEmployerPercent).Div(decimal.NewFromInt(100)).Round(2)
	}

	accExpense, err := s.requireAccount(ctx, cycle.CompanyID, payroll.AccountCodeSalaryExpense)
	if err != nil {
		return err
	}
	accPayable, err := s.requireAccount(ctx, cycle.CompanyID, payroll.AccountCodeSalariesPayable)
	if err != nil {
		return err
	}
	accTax, err := s.requireAccount(ctx, cycle.CompanyID, payroll.AccountCodeTaxPayable)
	if err != nil {
		return err
	}
	accLoans, hasLoansAcc := s.optionalAccount(ctx, cycle.CompanyID, payroll.AccountCodeLoanReceivable)
	accPF, hasPFAcc := s.optionalAccount(ctx, cycle.CompanyID, payroll.AccountCodeOtherPayable)

	var items []payroll.JournalItem
	items = append(items, payroll.JournalItem{AccountID: accExpense.ID, Debit: totalGross})

	if totalTax.IsPositive() {
		items = append(items, payroll.JournalItem{AccountID: accTax.ID, Credit: totalTax})
	}
	if totalLoanRepayments.IsPositive() && hasLoansAcc {
		items = append(items, payroll.JournalItem{AccountID: accLoans.ID, Credit: totalLoanRepayments})
	}
	items = append(items, payroll.JournalItem{AccountID: accPayable.ID, Credit: totalNet})

	// Whatever was deducted beyond tax and loans still owes someone;
	// without a dedicated payable account it lands on tax payable so the
	// entry stays balanced.
	otherDeductions := totalDeductions.Sub(totalTax).Sub(totalLoanRepayments)
	if otherDeductions.GreaterThan(paymentTolerance) {
		accountID := accTax.ID
		if hasPFAcc {
			accountID = accPF.ID
		}
		items = append(items, payroll.JournalItem{AccountID: accountID, Credit: otherDeductions})
	}

	if pfEmployerAmount.GreaterThan(paymentTolerance) {
		if !hasPFAcc {
			return fmt.Errorf("%w: code %s required for employer provident fund", payroll.ErrAccountNotFound, payroll.AccountCodeOtherPayable)
		}
		items = append(items,
			payroll.JournalItem{AccountID: accExpense.ID, Debit: pfEmployerAmount},
			payroll.JournalItem{AccountID: accPF.ID, Credit: pfEmployerAmount},
		)
	}

	_, err = s.repo.CreateJournalEntry(ctx, payroll.JournalEntry{
		ID:            uuid.NewString(),
		CompanyID:     cycle.CompanyID,
		EntryDate:     time.Now().UTC().Truncate(24 * time.Hour),
		Description:   "Payroll Accrual for " + cycle.Name,
		ReferenceType: "payroll_cycle",
		ReferenceID:   cycle.ID,
		Items:         items,
	})
	return err
}

// postPaymentToLedger books the batch payout: Dr 2001, Cr 1001 for the net.
func (s *Service) postPaymentToLedger(ctx context.Context, cycle payroll.Cycle) error {
	totals, err := s.repo.GetCycleTotals(ctx, cycle.ID, cycle.CompanyID)
	if err != nil {
		return err
	}
	if !totals.TotalNet.IsPositive() {
		return nil
	}

	accPayable, err := s.requireAccount(ctx, cycle.CompanyID, payroll.AccountCodeSalariesPayable)
	if err != nil {
		return err
	}
	accCash, err := s.requireAccount(ctx, cycle.CompanyID, payroll.AccountCodeCash)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateJournalEntry(ctx, payroll.JournalEntry{
		ID:            uuid.NewString(),
		CompanyID:     cycle.CompanyID,
		EntryDate:     time.Now().UTC().Truncate(24 * time.Hour),
		Description:   "Salary Payment for " + cycle.Name,
		ReferenceType: "payroll_payment",
		ReferenceID:   cycle.ID,
		Items: []payroll.JournalItem{
			{AccountID: accPayable.ID, Debit: totals.TotalNet},
			{AccountID: accCash.ID, Credit: totals.TotalNet},
		},
	})
	return err
}

// postPayslipPaymentToLedger books one recorded payment against cash.
func (s *Service) postPayslipPaymentToLedger(ctx context.Context, cycle payroll.Cycle, payslip payroll.Payslip, amount decimal.Decimal, paymentDate time.Time) error {
	if !amount.IsPositive() {
		return nil
	}

	accPayable, err := s.requireAccount(ctx, cycle.CompanyID, payroll.AccountCodeSalariesPayable)
	if err != nil {
		return err
	}
	accCash, err := s.requireAccount(ctx, cycle.CompanyID, payroll.AccountCodeCash)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateJournalEntry(ctx, payroll.JournalEntry{
		ID:            uuid.NewString(),
		CompanyID:     cycle.CompanyID,
		EntryDate:     paymentDate,
		Description:   fmt.Sprintf("Payslip payment for %s (%s)", payslip.EmployeeName, payslip.EmployeeCode),
		ReferenceType: "payslip_payment",
		ReferenceID:   cycle.ID,
		Items: []payroll.JournalItem{
			{AccountID: accPayable.ID, Debit: amount},
			{AccountID: accCash.ID, Credit: amount},
		},
	})
	return err
}

func (s *Service) requireAccount(ctx context.Context, companyID, code string) (payroll.Account, error) {
	account, err := s.repo.GetAccountByCode(ctx, companyID, code)
	if err != nil {
		if errors.Is(err, payroll.ErrAccountNotFound) {
			return payroll.Account{}, fmt.Errorf("%w: chart of accounts missing code %s", payroll.ErrAccountNotFound, code)
		}
		return payroll.Account{}, err
	}
	return account, nil
}

func (s *Service) optionalAccount(ctx context.Context, companyID, code string) (payroll.Account, bool) {
	account, err := s.repo.GetAccountByCode(ctx, companyID, code)
	if err != nil {
		return payroll.Account{}, false
	}
	return account, true
}

// GetCycleJournal returns the journal entries posted for a cycle.
func (s *Service) GetCycleJournal(ctx context.Context, cycleID string) ([]payroll.JournalEntry, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out []payroll.JournalEntry
	for _, refType := range []string{"payroll_cycle", "payroll_payment", "payslip_payment"} {
		entries, err := s.repo.ListJournalEntriesByReference(ctx, companyID, refType, cycleID)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}
