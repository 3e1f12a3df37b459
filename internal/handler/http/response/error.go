package response

import (
	"errors"
	"net/http"

	"github.com/tovfikur/attsys-sub001/internal/domain/attendance"
	"github.com/tovfikur/attsys-sub001/internal/domain/employee"
	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, payroll.ErrCycleNotFound):
		NotFound(w, "Payroll cycle not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrStructureNotFound):
		NotFound(w, "Salary structure not found")
	case errors.Is(err, payroll.ErrComponentNotFound):
		NotFound(w, "Salary component not found")
	case errors.Is(err, payroll.ErrBonusNotFound):
		NotFound(w, "Bonus not found")
	case errors.Is(err, payroll.ErrLoanNotFound):
		NotFound(w, "Loan not found")
	case errors.Is(err, payroll.ErrTaxSlabNotFound):
		NotFound(w, "Tax slab not found")
	case errors.Is(err, payroll.ErrBankAccountNotFound):
		NotFound(w, "Bank account not found")
	case errors.Is(err, payroll.ErrAccountNotFound):
		NotFound(w, "Ledger account not found")
	case errors.Is(err, payroll.ErrEmployeeNotFound), errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrShiftNotFound):
		NotFound(w, "Shift not found")

	// State conflicts
	case errors.Is(err, payroll.ErrCycleStatusConflict):
		Conflict(w, "Payroll cycle is not in a state that allows this operation")
	case errors.Is(err, payroll.ErrCycleNotApproved):
		Conflict(w, "Payroll cycle must be approved first")
	case errors.Is(err, payroll.ErrCycleNotLocked):
		Conflict(w, "Payroll cycle must be locked first")
	case errors.Is(err, payroll.ErrPayslipHasPayments):
		Conflict(w, "Payslip already has recorded payments")
	case errors.Is(err, payroll.ErrBonusAlreadyApplied):
		Conflict(w, "Bonus has already been applied to a payslip")
	case errors.Is(err, payroll.ErrComponentNameExists):
		Conflict(w, "Salary component name already exists")

	// Bad requests
	case errors.Is(err, payroll.ErrCycleDatesInvalid):
		BadRequest(w, "Cycle end date must not be before start date", nil)
	case errors.Is(err, payroll.ErrPaymentNotPositive):
		BadRequest(w, "Payment amount must be positive", nil)
	case errors.Is(err, payroll.ErrPayslipOverpayment):
		BadRequest(w, "Payment exceeds the remaining payslip balance", nil)
	case errors.Is(err, payroll.ErrLoanInstallmentTooBig):
		BadRequest(w, "Monthly installment cannot exceed the loan amount", nil)
	case errors.Is(err, payroll.ErrNoSalaryStructure):
		BadRequest(w, "Employee has no active salary structure", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
