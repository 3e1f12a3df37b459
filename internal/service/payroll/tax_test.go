package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

func slab(min int64, max *int64, percent int64) payroll.TaxSlab {
	s := payroll.TaxSlab{
		MinSalary:  decimal.NewFromInt(min),
		TaxPercent: decimal.NewFromInt(percent),
	}
	if max != nil {
		m := decimal.NewFromInt(*max)
		s.MaxSalary = &m
	}
	return s
}

func int64p(v int64) *int64 { return &v }

func TestCalculateTaxProgressive(t *testing.T) {
	slabs := []payroll.TaxSlab{
		slab(0, int64p(1000), 10),
		slab(1000, int64p(2000), 20),
		slab(2000, nil, 30),
	}

	cases := []struct {
		income int64
		want   string
	}{
		{0, "0"},
		{500, "50"},       // 500 @ 10%
		{1000, "100"},     // full first slab
		{1500, "200"},     // 100 + 500 @ 20%
		{2000, "300"},     // 100 + 200
		{3000, "600"},     // 100 + 200 + 1000 @ 30%
	}
	for _, c := range cases {
		got := CalculateTax(decimal.NewFromInt(c.income), slabs)
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)),
			"income %d: got %s, want %s", c.income, got, c.want)
	}
}

func TestCalculateTaxUnsortedSlabs(t *testing.T) {
	// Slab order in storage must not matter.
	slabs := []payroll.TaxSlab{
		slab(2000, nil, 30),
		slab(0, int64p(1000), 10),
		slab(1000, int64p(2000), 20),
	}
	got := CalculateTax(decimal.NewFromInt(2500), slabs)
	assert.True(t, got.Equal(decimal.NewFromInt(450)), "got %s", got)
}

func TestCalculateTaxNoSlabs(t *testing.T) {
	got := CalculateTax(decimal.NewFromInt(5000), nil)
	assert.True(t, got.IsZero())
}

func TestCalculateTaxNonPositiveIncome(t *testing.T) {
	slabs := []payroll.TaxSlab{slab(0, nil, 10)}
	assert.True(t, CalculateTax(decimal.Zero, slabs).IsZero())
	assert.True(t, CalculateTax(decimal.NewFromInt(-100), slabs).IsZero())
}

func TestCalculateTaxRounding(t *testing.T) {
	slabs := []payroll.TaxSlab{slab(0, nil, 15)}
	got := CalculateTax(decimal.RequireFromString("333.33"), slabs)
	// 333.33 * 15% = 49.9995, rounded to 2 decimals.
	assert.Equal(t, "50.00", got.StringFixed(2))
}

func TestCalculateTaxIncomeBelowSlabFloor(t *testing.T) {
	slabs := []payroll.TaxSlab{slab(5000, nil, 25)}
	got := CalculateTax(decimal.NewFromInt(3000), slabs)
	assert.True(t, got.IsZero(), "income below the first slab floor owes nothing")
}
