package payroll

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

//go:embed templates/payslip.html
var templateFS embed.FS

var payslipTemplate = template.Must(template.ParseFS(templateFS, "templates/payslip.html"))

type payslipTemplateData struct {
	Payslip     payroll.Payslip
	Cycle       payroll.Cycle
	Earnings    []payroll.PayslipItem
	Deductions  []payroll.PayslipItem
	PayableDays string
	Currency    string
}

// RenderPayslipHTML renders the payslip document sent to employees.
func (s *Service) RenderPayslipHTML(ctx context.Context, payslipID string) (string, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	payslip, err := s.repo.GetPayslip(ctx, payslipID, companyID)
	if err != nil {
		return "", err
	}
	cycle, err := s.repo.GetCycle(ctx, payslip.CycleID, companyID)
	if err != nil {
		return "", err
	}
	cfg, err := s.LoadConfig(ctx, companyID)
	if err != nil {
		return "", err
	}
	return renderPayslip(payslip, cycle, cfg.CurrencyCode)
}

func renderPayslip(payslip payroll.Payslip, cycle payroll.Cycle, currency string) (string, error) {
	data := payslipTemplateData{
		Payslip:     payslip,
		Cycle:       cycle,
		PayableDays: strconv.FormatFloat(payslip.PayableDays, 'f', -1, 64),
		Currency:    currency,
	}
	for _, item := range payslip.Items {
		if item.Type == payroll.ItemTypeEarning {
			data.Earnings = append(data.Earnings, item)
		} else {
			data.Deductions = append(data.Deductions, item)
		}
	}

	var buf bytes.Buffer
	if err := payslipTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.String(), nil
}

// EmailPayslip sends a single payslip to the employee's address.
func (s *Service) EmailPayslip(ctx context.Context, payslipID string) error {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	payslip, err := s.repo.GetPayslip(ctx, payslipID, companyID)
	if err != nil {
		return err
	}
	cycle, err := s.repo.GetCycle(ctx, payslip.CycleID, companyID)
	if err != nil {
		return err
	}
	cfg, err := s.LoadConfig(ctx, companyID)
	if err != nil {
		return err
	}
	return s.sendPayslip(payslip, cycle, cfg.CurrencyCode)
}

// EmailPayslipsForCycle mails every payslip in the cycle, skipping
// employees without an email address. Failures are collected so one bad
// address does not abort the batch.
func (s *Service) EmailPayslipsForCycle(ctx context.Context, cycleID string) (payroll.EmailSummary, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.EmailSummary{}, err
	}

	cycle, err := s.repo.GetCycle(ctx, cycleID, companyID)
	if err != nil {
		return payroll.EmailSummary{}, err
	}
	payslips, err := s.repo.ListPayslipsByCycle(ctx, cycleID, companyID)
	if err != nil {
		return payroll.EmailSummary{}, err
	}
	cfg, err := s.LoadConfig(ctx, companyID)
	if err != nil {
		return payroll.EmailSummary{}, err
	}

	summary := payroll.EmailSummary{Total: len(payslips)}
	for _, payslip := range payslips {
		if payslip.Email == nil || *payslip.Email == "" {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: no email address", payslip.EmployeeName))
			continue
		}
		if err := s.sendPayslip(payslip, cycle, cfg.CurrencyCode); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", payslip.EmployeeName, err))
			continue
		}
		summary.Sent++
	}
	return summary, nil
}

func (s *Service) sendPayslip(payslip payroll.Payslip, cycle payroll.Cycle, currency string) error {
	if payslip.Email == nil || *payslip.Email == "" {
		return fmt.Errorf("employee %s has no email address", payslip.EmployeeName)
	}
	body, err := renderPayslip(payslip, cycle, currency)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Payslip for %s", cycle.StartDate.Format("January 2006"))
	return s.mailer.Send(*payslip.Email, subject, body)
}
