package payroll

import "errors"

var (
	ErrCycleNotFound       = errors.New("payroll cycle not found")
	ErrCycleStatusConflict = errors.New("payroll cycle status does not allow this operation")
	ErrCycleNotApproved    = errors.New("payroll cycle is not approved")
	ErrCycleNotLocked      = errors.New("payroll cycle is not locked")
	ErrCycleDatesInvalid   = errors.New("payroll cycle end date must not be before start date")

	ErrPayslipNotFound     = errors.New("payslip not found")
	ErrPayslipHasPayments  = errors.New("payslip has recorded payments and cannot be recalculated")
	ErrPayslipOverpayment  = errors.New("payment exceeds remaining payslip balance")
	ErrPaymentNotPositive  = errors.New("payment amount must be greater than zero")
	ErrNoSalaryStructure   = errors.New("employee has no active salary structure")
	ErrStructureNotFound   = errors.New("salary structure not found")
	ErrComponentNotFound   = errors.New("salary component not found")
	ErrComponentNameExists = errors.New("salary component name already exists")

	ErrBonusNotFound       = errors.New("bonus not found")
	ErrBonusAlreadyApplied = errors.New("bonus has already been applied to a payslip")

	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanInstallmentTooBig = errors.New("monthly installment exceeds loan principal")

	ErrTaxSlabNotFound = errors.New("tax slab not found")

	ErrBankAccountNotFound = errors.New("bank account not found")

	ErrAccountNotFound = errors.New("ledger account not found")

	ErrEmployeeNotFound = errors.New("employee not found")
)
