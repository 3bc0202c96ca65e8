// Package proforma projects the cash flows, exit and returns of a
// real-estate deal from its underwriting assumptions.
package proforma

import (
	"errors"
	"fmt"

	"github.com/iwvelando/proforma/pkg/budget"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/rentroll"
)

// ErrInvalidAssumptions is returned when the deal inputs cannot be modeled.
var ErrInvalidAssumptions = errors.New("invalid assumptions")

// Acquisition holds purchase terms.
type Acquisition struct {
	PurchasePrice   float64 `json:"purchasePrice" yaml:"purchasePrice" mapstructure:"purchase_price" validate:"gt=0"`
	ClosingCostsPct float64 `json:"closingCostsPct" yaml:"closingCostsPct" mapstructure:"closing_costs_pct" validate:"gte=0,lte=1"`
}

// Income holds market revenue assumptions.
type Income struct {
	RentPerSf     float64 `json:"rentPerSf" yaml:"rentPerSf" mapstructure:"rent_per_sf" validate:"gte=0"`
	VacancyPct    float64 `json:"vacancyPct" yaml:"vacancyPct" mapstructure:"vacancy_pct" validate:"gte=0,lte=1"`
	OtherIncome   float64 `json:"otherIncome" yaml:"otherIncome" mapstructure:"other_income"`
	RentGrowthPct float64 `json:"rentGrowthPct" yaml:"rentGrowthPct" mapstructure:"rent_growth_pct" validate:"gte=-1"`
}

// Expenses holds operating cost assumptions. Everything except the
// management fee is per square foot per year.
type Expenses struct {
	OpexPerSf        float64 `json:"opexPerSf" yaml:"opexPerSf" mapstructure:"opex_per_sf" validate:"gte=0"`
	ManagementFeePct float64 `json:"managementFeePct" yaml:"managementFeePct" mapstructure:"management_fee_pct" validate:"gte=0,lte=1"`
	CapexReserves    float64 `json:"capexReserves" yaml:"capexReserves" mapstructure:"capex_reserves" validate:"gte=0"`
	Insurance        float64 `json:"insurance" yaml:"insurance" mapstructure:"insurance" validate:"gte=0"`
	Taxes            float64 `json:"taxes" yaml:"taxes" mapstructure:"taxes" validate:"gte=0"`
}

// Financing holds acquisition loan terms.
type Financing struct {
	InterestRate      float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interest_rate" validate:"gte=0"`
	LtvPct            float64 `json:"ltvPct" yaml:"ltvPct" mapstructure:"ltv_pct" validate:"gte=0,lte=1"`
	LoanFeePct        float64 `json:"loanFeePct" yaml:"loanFeePct" mapstructure:"loan_fee_pct" validate:"gte=0,lte=1"`
	AmortizationYears int     `json:"amortizationYears" yaml:"amortizationYears" mapstructure:"amortization_years" validate:"gt=0"`
	IOPeriodYears     int     `json:"ioPeriodYears" yaml:"ioPeriodYears" mapstructure:"io_period_years" validate:"gte=0"`
}

// Exit holds disposition assumptions.
type Exit struct {
	HoldYears           int     `json:"holdYears" yaml:"holdYears" mapstructure:"hold_years" validate:"gte=1,lte=30"`
	ExitCapRate         float64 `json:"exitCapRate" yaml:"exitCapRate" mapstructure:"exit_cap_rate" validate:"gte=0"`
	DispositionCostsPct float64 `json:"dispositionCostsPct" yaml:"dispositionCostsPct" mapstructure:"disposition_costs_pct" validate:"gte=0,lte=1"`
}

// Refinance holds the terms of a mid-hold refinance. Zero LtvPct,
// InterestRate and AmortizationYears fall back to the acquisition loan.
type Refinance struct {
	LtvPct            float64 `json:"ltvPct" yaml:"ltvPct" mapstructure:"ltv_pct" validate:"gte=0,lte=1"`
	CostsPct          float64 `json:"costsPct" yaml:"costsPct" mapstructure:"costs_pct" validate:"gte=0,lte=1"`
	InterestRate      float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interest_rate" validate:"gte=0"`
	AmortizationYears int     `json:"amortizationYears" yaml:"amortizationYears" mapstructure:"amortization_years" validate:"gte=0"`
}

// Assumptions is the full set of underwriting inputs for one deal.
type Assumptions struct {
	Acquisition Acquisition `json:"acquisition" yaml:"acquisition" mapstructure:"acquisition"`
	Income      Income      `json:"income" yaml:"income" mapstructure:"income"`
	Expenses    Expenses    `json:"expenses" yaml:"expenses" mapstructure:"expenses"`
	Financing   Financing   `json:"financing" yaml:"financing" mapstructure:"financing"`
	Exit        Exit        `json:"exit" yaml:"exit" mapstructure:"exit"`
	// Refinance is optional. When nil a refinance uses the acquisition
	// loan's LTV, rate and amortization and costs the loan fee.
	Refinance   *Refinance `json:"refinance,omitempty" yaml:"refinance,omitempty" mapstructure:"refinance"`
	BuildableSf float64    `json:"buildableSf" yaml:"buildableSf" mapstructure:"buildable_sf" validate:"gte=0"`
}

// refinanceTerms resolves the refinance terms against the acquisition loan.
func (a Assumptions) refinanceTerms() Refinance {
	terms := Refinance{
		LtvPct:            a.Financing.LtvPct,
		CostsPct:          a.Financing.LoanFeePct,
		InterestRate:      a.Financing.InterestRate,
		AmortizationYears: a.Financing.AmortizationYears,
	}
	if a.Refinance == nil {
		return terms
	}
	terms.CostsPct = a.Refinance.CostsPct
	if a.Refinance.LtvPct > 0 {
		terms.LtvPct = a.Refinance.LtvPct
	}
	if a.Refinance.InterestRate > 0 {
		terms.InterestRate = a.Refinance.InterestRate
	}
	if a.Refinance.AmortizationYears > 0 {
		terms.AmortizationYears = a.Refinance.AmortizationYears
	}
	return terms
}

// SourceKind classifies a capital stack entry.
type SourceKind string

const (
	SourceDebt       SourceKind = "DEBT"
	SourceMezz       SourceKind = "MEZZ"
	SourceLPEquity   SourceKind = "LP_EQUITY"
	SourceGPEquity   SourceKind = "GP_EQUITY"
	SourcePrefEquity SourceKind = "PREF_EQUITY"
)

// CapitalSource is one tranche of the capital stack.
type CapitalSource struct {
	Name   string     `json:"name" yaml:"name" mapstructure:"name"`
	Kind   SourceKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Amount float64    `json:"amount" yaml:"amount" mapstructure:"amount" validate:"gte=0"`
}

// Input bundles the assumptions with the optional deal context.
type Input struct {
	Assumptions  Assumptions
	Leases       []rentroll.Lease
	Budget       []budget.LineItem
	CapitalStack []CapitalSource
	// AnalysisStart is the first month of year one (YYYY-MM). Only used to
	// place leases.
	AnalysisStart string
}

// Validate rejects inputs the engine cannot model.
func (in Input) Validate() error {
	a := in.Assumptions
	switch {
	case a.Acquisition.PurchasePrice <= 0:
		return fmt.Errorf("%w: purchase price must be positive, got %.2f", ErrInvalidAssumptions, a.Acquisition.PurchasePrice)
	case a.BuildableSf < 0:
		return fmt.Errorf("%w: buildable square feet cannot be negative, got %.2f", ErrInvalidAssumptions, a.BuildableSf)
	case a.Exit.HoldYears < constants.MinHoldYears || a.Exit.HoldYears > constants.MaxHoldYears:
		return fmt.Errorf("%w: hold years must be between %d and %d, got %d",
			ErrInvalidAssumptions, constants.MinHoldYears, constants.MaxHoldYears, a.Exit.HoldYears)
	case a.Financing.AmortizationYears <= 0:
		return fmt.Errorf("%w: amortization years must be positive, got %d", ErrInvalidAssumptions, a.Financing.AmortizationYears)
	case a.Financing.IOPeriodYears < 0 || a.Financing.IOPeriodYears > a.Financing.AmortizationYears:
		return fmt.Errorf("%w: interest-only period must be between 0 and %d years, got %d",
			ErrInvalidAssumptions, a.Financing.AmortizationYears, a.Financing.IOPeriodYears)
	case a.Income.VacancyPct < 0 || a.Income.VacancyPct > 1:
		return fmt.Errorf("%w: vacancy must be between 0 and 1, got %.4f", ErrInvalidAssumptions, a.Income.VacancyPct)
	case a.Financing.LtvPct < 0:
		return fmt.Errorf("%w: LTV cannot be negative, got %.4f", ErrInvalidAssumptions, a.Financing.LtvPct)
	}
	return nil
}
