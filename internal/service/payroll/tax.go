package payroll

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// CalculateTax applies progressive slab taxation to a taxable income.
// Each slab taxes the income portion between its min and max; a nil max
// means the slab is unbounded. The final amount is rounded to 2 decimals.
func CalculateTax(income decimal.Decimal, slabs []payroll.TaxSlab) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) || len(slabs) == 0 {
		return decimal.Zero
	}

	sorted := make([]payroll.TaxSlab, len(slabs))
	copy(sorted, slabs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinSalary.LessThan(sorted[j].MinSalary)
	})

	hundred := decimal.NewFromInt(100)
	tax := decimal.Zero
	for _, slab := range sorted {
		upper := income
		if slab.MaxSalary != nil && slab.MaxSalary.LessThan(income) {
			upper = *slab.MaxSalary
		}
		portion := upper.Sub(slab.MinSalary)
		if portion.LessThanOrEqual(decimal.Zero) {
			continue
		}
		tax = tax.Add(portion.Mul(slab.TaxPercent).Div(hundred))
	}

	return tax.Round(2)
}
