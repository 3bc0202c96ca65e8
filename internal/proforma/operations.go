package proforma

import "github.com/iwvelando/proforma/pkg/mathutil"

// operatingYear is one year of property-level operations.
type operatingYear struct {
	grossPotentialRent   float64
	effectiveGrossIncome float64
	operatingExpenses    float64
	noi                  float64
}

// operations computes income and expenses for a 1-based analysis year.
// Lease revenue replaces the market-rent build when a rent roll is present;
// other income is held flat. Fixed expenses inflate by the policy rate and
// the management fee tracks EGI.
func (m *Model) operations(year int) operatingYear {
	a := m.assumptions
	var op operatingYear
	if m.rentRoll.HasLeases {
		op.grossPotentialRent = m.rentRoll.RevenueForYear(year)
		op.effectiveGrossIncome = op.grossPotentialRent + a.Income.OtherIncome
	} else {
		op.grossPotentialRent = a.BuildableSf * a.Income.RentPerSf * mathutil.GrowthFactor(a.Income.RentGrowthPct, year-1)
		op.effectiveGrossIncome = op.grossPotentialRent*(1-a.Income.VacancyPct) + a.Income.OtherIncome
	}

	fixed := a.BuildableSf*a.Expenses.OpexPerSf +
		a.BuildableSf*(a.Expenses.CapexReserves+a.Expenses.Insurance+a.Expenses.Taxes)
	op.operatingExpenses = fixed*mathutil.GrowthFactor(m.policy.ExpenseInflation, year-1) +
		op.effectiveGrossIncome*a.Expenses.ManagementFeePct
	op.noi = op.effectiveGrossIncome - op.operatingExpenses
	return op
}
