package payroll

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

func TestLoadConfigDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newTestService(repo)

	cfg, err := svc.LoadConfig(context.Background(), testCompanyID)
	require.NoError(t, err)

	assert.Equal(t, payroll.ProrationBasisCalendar, cfg.ProrationBasis)
	assert.True(t, cfg.DaysPerMonth.Equal(decimal.NewFromInt(30)))
	assert.True(t, cfg.WorkHoursPerDay.Equal(decimal.NewFromInt(8)))
	assert.True(t, cfg.OvertimeRateMultiplier.Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, cfg.PFEmployeePercent.IsZero())
	assert.Equal(t, "USD", cfg.CurrencyCode)
}

func TestLoadConfigOverrides(t *testing.T) {
	repo := newFakeRepo()
	repo.settings = map[string]string{
		"proration_basis":                  "working",
		"days_per_month":                   "26",
		"work_hours_per_day":               "9",
		"overtime_rate_multiplier":         "2",
		"pf_employee_contribution_percent": "5",
		"currency_code":                    " BDT ",
	}
	svc, _, _ := newTestService(repo)

	cfg, err := svc.LoadConfig(context.Background(), testCompanyID)
	require.NoError(t, err)

	assert.Equal(t, payroll.ProrationBasisWorking, cfg.ProrationBasis)
	assert.True(t, cfg.DaysPerMonth.Equal(decimal.NewFromInt(26)))
	assert.True(t, cfg.WorkHoursPerDay.Equal(decimal.NewFromInt(9)))
	assert.True(t, cfg.OvertimeRateMultiplier.Equal(decimal.NewFromInt(2)))
	assert.True(t, cfg.PFEmployeePercent.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "BDT", cfg.CurrencyCode)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	repo := newFakeRepo()
	repo.settings = map[string]string{
		"proration_basis":          "lunar",
		"days_per_month":           "not-a-number",
		"overtime_rate_multiplier": "",
	}
	svc, _, _ := newTestService(repo)

	cfg, err := svc.LoadConfig(context.Background(), testCompanyID)
	require.NoError(t, err)

	assert.Equal(t, payroll.ProrationBasisCalendar, cfg.ProrationBasis, "unknown basis falls back")
	assert.True(t, cfg.DaysPerMonth.Equal(decimal.NewFromInt(30)))
	assert.True(t, cfg.OvertimeRateMultiplier.Equal(decimal.NewFromFloat(1.5)))
}
