package proforma

import "github.com/iwvelando/proforma/pkg/loans"

// acquisitionLoan returns the terms of the loan sized at closing.
func (m *Model) acquisitionLoan() loans.Terms {
	f := m.assumptions.Financing
	return loans.Terms{
		Name:              "acquisition",
		Principal:         m.basis.LoanAmount,
		InterestRate:      f.InterestRate,
		AmortizationYears: f.AmortizationYears,
		IOPeriodYears:     f.IOPeriodYears,
	}
}

// RefinanceEvent describes a mid-hold refinance.
type RefinanceEvent struct {
	Year           int     `json:"year" yaml:"year"`
	PropertyValue  float64 `json:"propertyValue" yaml:"propertyValue"`
	NewLoanAmount  float64 `json:"newLoanAmount" yaml:"newLoanAmount"`
	LoanPayoff     float64 `json:"loanPayoff" yaml:"loanPayoff"`
	Costs          float64 `json:"costs" yaml:"costs"`
	NetProceeds    float64 `json:"netProceeds" yaml:"netProceeds"`
	NewDebtService float64 `json:"newDebtService" yaml:"newDebtService"`
}

// refinance values the property on year's NOI at the exit cap rate, sizes a
// new fully amortizing loan and pays off the acquisition loan. NetProceeds
// may be negative when the new loan does not cover the payoff and costs.
func (m *Model) refinance(year int, noi float64) (RefinanceEvent, loans.Terms) {
	terms := m.assumptions.refinanceTerms()
	value := 0.0
	if m.assumptions.Exit.ExitCapRate > 0 {
		value = noi / m.assumptions.Exit.ExitCapRate
	}
	newLoan := loans.Terms{
		Name:              "refinance",
		Principal:         value * terms.LtvPct,
		InterestRate:      terms.InterestRate,
		AmortizationYears: terms.AmortizationYears,
	}
	payoff := loans.BalanceAfterYear(m.acquisitionLoan(), year)
	costs := newLoan.Principal * terms.CostsPct
	return RefinanceEvent{
		Year:           year,
		PropertyValue:  value,
		NewLoanAmount:  newLoan.Principal,
		LoanPayoff:     payoff,
		Costs:          costs,
		NetProceeds:    newLoan.Principal - payoff - costs,
		NewDebtService: loans.AnnualDebtService(newLoan.Principal, newLoan.InterestRate, newLoan.AmortizationYears),
	}, newLoan
}
