package payroll

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// Settings keys stored in the payroll_settings key-value table.
const (
	settingProrationBasis    = "proration_basis"
	settingDaysPerMonth      = "days_per_month"
	settingWorkHoursPerDay   = "work_hours_per_day"
	settingOvertimeRate      = "overtime_rate_multiplier"
	settingLatePenaltyRate   = "late_penalty_multiplier"
	settingEarlyPenaltyRate  = "early_leave_penalty_multiplier"
	settingPFEmployeePercent = "pf_employee_contribution_percent"
	settingPFEmployerPercent = "pf_employer_contribution_percent"
	settingCurrencyCode      = "currency_code"
)

// LoadConfig materializes the company's payroll configuration once, so a
// cycle run reads settings a single time instead of per employee.
// Unknown or malformed values fall back to the defaults.
func (s *Service) LoadConfig(ctx context.Context, companyID string) (payroll.Config, error) {
	cfg := payroll.DefaultConfig()

	settings, err := s.repo.GetSettings(ctx, companyID)
	if err != nil {
		return cfg, fmt.Errorf("failed to load payroll settings: %w", err)
	}

	if v, ok := settings[settingProrationBasis]; ok {
		basis := strings.ToLower(strings.TrimSpace(v))
		switch basis {
		case payroll.ProrationBasisCalendar, payroll.ProrationBasisWorking, payroll.ProrationBasisFixed:
			cfg.ProrationBasis = basis
		}
	}
	cfg.DaysPerMonth = settingDecimal(settings, settingDaysPerMonth, cfg.DaysPerMonth)
	cfg.WorkHoursPerDay = settingDecimal(settings, settingWorkHoursPerDay, cfg.WorkHoursPerDay)
	cfg.OvertimeRateMultiplier = settingDecimal(settings, settingOvertimeRate, cfg.OvertimeRateMultiplier)
	cfg.LatePenaltyMultiplier = settingDecimal(settings, settingLatePenaltyRate, cfg.LatePenaltyMultiplier)
	cfg.EarlyLeaveMultiplier = settingDecimal(settings, settingEarlyPenaltyRate, cfg.EarlyLeaveMultiplier)
	cfg.PFEmployeePercent = settingDecimal(settings, settingPFEmployeePercent, cfg.PFEmployeePercent)
	cfg.PFEmployerPercent = settingDecimal(settings, settingPFEmployerPercent, cfg.PFEmployerPercent)
	if v, ok := settings[settingCurrencyCode]; ok && strings.TrimSpace(v) != "" {
		cfg.CurrencyCode = strings.TrimSpace(v)
	}

	return cfg, nil
}

func settingDecimal(settings map[string]string, key string, fallback decimal.Decimal) decimal.Decimal {
	raw, ok := settings[key]
	if !ok {
		return fallback
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return d
}
