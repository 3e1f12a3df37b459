package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/validator"
)

// Export kinds accepted by ExportCycleCSV.
const (
	ExportDepartmentCost = "department_cost"
	ExportOvertime       = "overtime"
	ExportDeductions     = "deductions"
	ExportPayments       = "payments"
	ExportJournal        = "journal"
	ExportTax            = "tax"
)

// GenerateBankTransferCSV renders the payout file banks ingest: one line
// per payslip with the primary account details and the net amount.
func (s *Service) GenerateBankTransferCSV(ctx context.Context, cycleID string) (string, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	records, err := s.repo.GetBankDetailsForCycle(ctx, cycleID, companyID)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%w: no payslips for this cycle", payroll.ErrPayslipNotFound)
	}

	cfg, err := s.LoadConfig(ctx, companyID)
	if err != nil {
		return "", err
	}

	rows := [][]string{{"Employee Code", "Employee Name", "Bank Name", "Account Number", "Amount", "Currency"}}
	for _, r := range records {
		bankName := "N/A"
		if r.BankName != nil && *r.BankName != "" {
			bankName = *r.BankName
		}
		accountNumber := "N/A"
		if r.AccountNumber != nil && *r.AccountNumber != "" {
			accountNumber = *r.AccountNumber
		}
		rows = append(rows, []string{
			r.EmployeeCode, r.EmployeeName, bankName, accountNumber,
			r.NetSalary.StringFixed(2), cfg.CurrencyCode,
		})
	}
	return writeCSV(rows)
}

// ExportCycleCSV renders one of the cycle reports as CSV.
func (s *Service) ExportCycleCSV(ctx context.Context, cycleID, kind string) (string, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	var rows [][]string
	switch kind {
	case ExportDepartmentCost:
		rows = append(rows, []string{"Department", "Employee Count", "Total Gross", "Total Net"})
		report, err := s.repo.GetDepartmentCost(ctx, cycleID, companyID)
		if err != nil {
			return "", err
		}
		for _, r := range report {
			rows = append(rows, []string{
				r.Department, strconv.Itoa(r.EmployeeCount),
				r.TotalGross.StringFixed(2), r.TotalNet.StringFixed(2),
			})
		}

	case ExportOvertime:
		rows = append(rows, []string{"Employee Code", "Employee Name", "Department", "Overtime Hours", "Overtime Pay"})
		report, err := s.repo.GetOvertimeReport(ctx, cycleID, companyID)
		if err != nil {
			return "", err
		}
		for _, r := range report {
			rows = append(rows, []string{
				r.EmployeeCode, r.EmployeeName, r.Department,
				formatDays(r.OvertimeHours), r.OvertimePay.StringFixed(2),
			})
		}

	case ExportDeductions:
		rows = append(rows, []string{"Employee Code", "Employee Name", "Deduction", "Amount"})
		report, err := s.repo.GetDeductionReport(ctx, cycleID, companyID)
		if err != nil {
			return "", err
		}
		for _, r := range report {
			rows = append(rows, []string{r.EmployeeCode, r.EmployeeName, r.DeductionName, r.Amount.StringFixed(2)})
		}

	case ExportPayments:
		rows = append(rows, []string{"Employee Code", "Employee Name", "Net Salary", "Paid Amount", "Balance", "Payment Status", "Last Payment Date"})
		report, err := s.repo.GetPaymentSummaryForCycle(ctx, cycleID, companyID)
		if err != nil {
			return "", err
		}
		for _, r := range report {
			lastPayment := ""
			if r.LastPaymentDate != nil {
				lastPayment = r.LastPaymentDate.Format("2006-01-02")
			}
			rows = append(rows, []string{
				r.EmployeeCode, r.EmployeeName,
				r.NetSalary.StringFixed(2), r.PaidAmount.StringFixed(2), r.Balance.StringFixed(2),
				r.PaymentStatus, lastPayment,
			})
		}

	case ExportJournal:
		rows = append(rows, []string{"Entry ID", "Date", "Reference Type", "Reference ID", "Description", "Account Code", "Account Name", "Debit", "Credit"})
		var entries []payroll.JournalEntry
		for _, refType := range []string{"payroll_cycle", "payroll_payment"} {
			batch, err := s.repo.ListJournalEntriesByReference(ctx, companyID, refType, cycleID)
			if err != nil {
				return "", err
			}
			entries = append(entries, batch...)
		}
		for _, je := range entries {
			if len(je.Items) == 0 {
				rows = append(rows, []string{je.ID, je.EntryDate.Format("2006-01-02"), je.ReferenceType, je.ReferenceID, je.Description, "", "", "", ""})
				continue
			}
			for _, it := range je.Items {
				rows = append(rows, []string{
					je.ID, je.EntryDate.Format("2006-01-02"), je.ReferenceType, je.ReferenceID, je.Description,
					it.AccountCode, it.AccountName, it.Debit.StringFixed(2), it.Credit.StringFixed(2),
				})
			}
		}

	case ExportTax:
		rows = append(rows, []string{"Employee Code", "Employee Name", "Department", "Gross Salary", "Tax Deducted"})
		payslips, err := s.repo.ListPayslipsByCycle(ctx, cycleID, companyID)
		if err != nil {
			return "", err
		}
		for _, p := range payslips {
			if !p.TaxDeducted.IsPositive() {
				continue
			}
			department := ""
			if p.Department != nil {
				department = *p.Department
			}
			rows = append(rows, []string{
				p.EmployeeCode, p.EmployeeName, department,
				p.GrossSalary.StringFixed(2), p.TaxDeducted.StringFixed(2),
			})
		}

	default:
		return "", validator.ValidationErrors{{Field: "kind", Message: "unknown export kind"}}
	}

	return writeCSV(rows)
}

func writeCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}
