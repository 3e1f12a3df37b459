package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/handler/http/response"
	payrollService "github.com/tovfikur/attsys-sub001/internal/service/payroll"
)

type PayrollHandler struct {
	service *payrollService.Service
}

func NewPayrollHandler(service *payrollService.Service) *PayrollHandler {
	return &PayrollHandler{service: service}
}

// ========== CYCLES ==========

func (h *PayrollHandler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	cycle, err := h.service.CreateCycle(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll cycle created", payroll.NewCycleResponse(cycle))
}

func (h *PayrollHandler) ListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.service.ListCycles(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]payroll.CycleSummaryResponse, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, payroll.NewCycleSummaryResponse(c))
	}
	response.Success(w, out)
}

func (h *PayrollHandler) GetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.service.GetCycle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, payroll.NewCycleResponse(cycle))
}

func (h *PayrollHandler) GetCycleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.GetCycleTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, totals)
}

func (h *PayrollHandler) RunCycle(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.RunCycle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll cycle processed", results)
}

func (h *PayrollHandler) ApproveCycle(w http.ResponseWriter, r *http.Request) {
	var req payroll.CycleDecisionRequest
	// A body is optional for decisions.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.ApproveCycle(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll cycle approved", nil)
}

func (h *PayrollHandler) RejectCycle(w http.ResponseWriter, r *http.Request) {
	var req payroll.CycleDecisionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.RejectCycle(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll cycle rejected", nil)
}

func (h *PayrollHandler) LockCycle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LockCycle(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll cycle locked", nil)
}

func (h *PayrollHandler) MarkCyclePaid(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkCyclePaid(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll cycle marked as paid", nil)
}

func (h *PayrollHandler) ListCycleApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.service.ListCycleApprovals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, approvals)
}

func (h *PayrollHandler) GetCycleJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetCycleJournal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// ========== PAYSLIPS ==========

func (h *PayrollHandler) ListPayslipsByCycle(w http.ResponseWriter, r *http.Request) {
	payslips, err := h.service.ListPayslipsByCycle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		out = append(out, payroll.NewPayslipResponse(p))
	}
	response.Success(w, out)
}

func (h *PayrollHandler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	payslip, err := h.service.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, payroll.NewPayslipResponse(payslip))
}

func (h *PayrollHandler) GetPayslipHTML(w http.ResponseWriter, r *http.Request) {
	html, err := h.service.RenderPayslipHTML(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *PayrollHandler) AddPayslipItem(w http.ResponseWriter, r *http.Request) {
	var req payroll.AddPayslipItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayslipID = chi.URLParam(r, "id")

	payslip, err := h.service.AddPayslipItem(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payslip item added", payroll.NewPayslipResponse(payslip))
}

func (h *PayrollHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req payroll.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayslipID = chi.URLParam(r, "id")

	result, err := h.service.RecordPayslipPayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payment recorded", result)
}

func (h *PayrollHandler) EmailPayslip(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EmailPayslip(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payslip emailed", nil)
}

func (h *PayrollHandler) EmailPayslipsForCycle(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.EmailPayslipsForCycle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payslip emails processed", summary)
}

// ========== EXPORTS ==========

func writeCSVDownload(w http.ResponseWriter, filename, content string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (h *PayrollHandler) ExportBankTransfer(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")

	content, err := h.service.GenerateBankTransferCSV(r.Context(), cycleID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeCSVDownload(w, "bank_transfer_"+cycleID+".csv", content)
}

func (h *PayrollHandler) ExportCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	kind := r.URL.Query().Get("kind")

	content, err := h.service.ExportCycleCSV(r.Context(), cycleID, kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writeCSVDownload(w, kind+"_"+cycleID+".csv", content)
}

// ========== SALARY STRUCTURES & COMPONENTS ==========

func (h *PayrollHandler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	component, err := h.service.CreateComponent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Salary component created", component)
}

func (h *PayrollHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.service.ListComponents(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, components)
}

func (h *PayrollHandler) SaveSalaryStructure(w http.ResponseWriter, r *http.Request) {
	var req payroll.SaveSalaryStructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	id, err := h.service.SaveSalaryStructure(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Salary structure saved", map[string]string{"id": id})
}

func (h *PayrollHandler) GetSalaryHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.GetSalaryHistory(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, history)
}

// ========== BONUSES ==========

func (h *PayrollHandler) ListBonusesByCycle(w http.ResponseWriter, r *http.Request) {
	bonuses, err := h.service.ListBonusesByCycle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, bonuses)
}

func (h *PayrollHandler) SaveBonus(w http.ResponseWriter, r *http.Request) {
	var req payroll.SaveBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	bonus, err := h.service.SaveBonus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Bonus saved", bonus)
}

func (h *PayrollHandler) DeleteBonus(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBonus(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Bonus deleted", nil)
}

// ========== LOANS ==========

func (h *PayrollHandler) AddLoan(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	var loan payroll.Loan
	var err error
	if req.Type == string(payroll.LoanTypeAdvance) {
		loan, err = h.service.AddAdvance(r.Context(), req)
	} else {
		loan, err = h.service.AddLoan(r.Context(), req)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Loan created", payroll.NewLoanResponse(loan))
}

func (h *PayrollHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var employeeID *string
	if v := r.URL.Query().Get("employee_id"); v != "" {
		employeeID = &v
	}
	var status *payroll.LoanStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := payroll.LoanStatus(v)
		status = &s
	}

	loans, err := h.service.ListLoans(r.Context(), employeeID, status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]payroll.LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, payroll.NewLoanResponse(l))
	}
	response.Success(w, out)
}

func (h *PayrollHandler) UpdateLoanStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.UpdateLoanStatus(r.Context(), chi.URLParam(r, "id"), payroll.LoanStatus(req.Status)); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Loan status updated", nil)
}

// ========== TAX SLABS ==========

func (h *PayrollHandler) ListTaxSlabs(w http.ResponseWriter, r *http.Request) {
	slabs, err := h.service.ListTaxSlabs(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, slabs)
}

func (h *PayrollHandler) SaveTaxSlab(w http.ResponseWriter, r *http.Request) {
	var req payroll.SaveTaxSlabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	slab, err := h.service.SaveTaxSlab(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Tax slab saved", slab)
}

func (h *PayrollHandler) DeleteTaxSlab(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTaxSlab(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Tax slab deleted", nil)
}

// ========== BANK ACCOUNTS ==========

func (h *PayrollHandler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListBankAccounts(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, accounts)
}

func (h *PayrollHandler) SaveBankAccount(w http.ResponseWriter, r *http.Request) {
	var req payroll.SaveBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	account, err := h.service.SaveBankAccount(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Bank account saved", account)
}

func (h *PayrollHandler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBankAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Bank account deleted", nil)
}

// ========== SETTINGS ==========

func (h *PayrollHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, settings)
}

func (h *PayrollHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req payroll.SaveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.SaveSettings(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Settings saved", nil)
}

// ========== REPORTS ==========

func (h *PayrollHandler) GetYearlyCost(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 {
		year = time.Now().Year()
	}

	report, err := h.service.GetYearlyCost(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, report)
}

func (h *PayrollHandler) GetEmployeePayslipHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.service.GetEmployeePayslipHistory(r.Context(), chi.URLParam(r, "employeeID"), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]payroll.PayslipResponse, 0, len(history))
	for _, p := range history {
		out = append(out, payroll.NewPayslipResponse(p))
	}
	response.Success(w, out)
}

func (h *PayrollHandler) GetEmployeeDayStatuses(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		response.BadRequest(w, "start must be a valid date (YYYY-MM-DD)", nil)
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		response.BadRequest(w, "end must be a valid date (YYYY-MM-DD)", nil)
		return
	}

	statuses, err := h.service.EmployeeDayStatuses(r.Context(), chi.URLParam(r, "employeeID"), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, statuses)
}
