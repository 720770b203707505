package tax

import "github.com/shopspring/decimal"

// SlabResult is the outcome of applying income to one slab.
type SlabResult struct {
	TaxSlab           TaxSlab `json:"taxSlab"`
	TaxInThisSlab     float64 `json:"taxInThisSlab"`
	TotalTaxesTillNow float64 `json:"totalTaxesTillNow"`
}

// TaxReport is the verbose breakdown. Field order is part of the wire format.
type TaxReport struct {
	IncomeBeforeTaxes float64      `json:"incomeBeforeTaxes"`
	TotalPayableTax   float64      `json:"totalPayableTax"`
	IncomeAfterTaxes  float64      `json:"incomeAfterTaxes"`
	Slabs             []SlabResult `json:"slabs"`
}

// Summary is the non-verbose payload.
type Summary struct {
	IncomeBeforeTaxes float64 `json:"incomeBeforeTaxes"`
	TotalPayableTax   float64 `json:"totalPayableTax"`
	IncomeAfterTaxes  float64 `json:"incomeAfterTaxes"`
}

// Summary drops the slab breakdown.
func (r TaxReport) Summary() Summary {
	return Summary{
		IncomeBeforeTaxes: r.IncomeBeforeTaxes,
		TotalPayableTax:   r.TotalPayableTax,
		IncomeAfterTaxes:  r.IncomeAfterTaxes,
	}
}

// Compute walks slabs in ascending order and taxes the part of income that
// falls inside each one. Slabs starting at or above income are left out.
// income must be finite and non-negative; see ParseIncome.
func Compute(income float64, slabs []TaxSlab) TaxReport {
	amount := decimal.NewFromFloat(income)
	total := decimal.Zero
	results := make([]SlabResult, 0, len(slabs))

	for _, slab := range slabs {
		lower := decimal.NewFromFloat(slab.GT)
		if amount.LessThanOrEqual(lower) {
			break
		}
		upper := amount
		if slab.LTE != nil {
			upper = decimal.Min(amount, decimal.NewFromFloat(*slab.LTE))
		}
		inSlab := upper.Sub(lower).Mul(decimal.NewFromFloat(slab.RateMultiplier))
		total = decimal.NewFromFloat(slab.TaxFromPrevSlab).Add(inSlab)

		results = append(results, SlabResult{
			TaxSlab:           slab,
			TaxInThisSlab:     inSlab.InexactFloat64(),
			TotalTaxesTillNow: total.InexactFloat64(),
		})
	}

	return TaxReport{
		IncomeBeforeTaxes: income,
		TotalPayableTax:   total.InexactFloat64(),
		IncomeAfterTaxes:  amount.Sub(total).InexactFloat64(),
		Slabs:             results,
	}
}
