package loans

import (
	"math"
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
)

// LoanType identifies a set of lender sizing constraints.
type LoanType string

const (
	LoanTypePermanent    LoanType = "permanent"
	LoanTypeConstruction LoanType = "construction"
	LoanTypeBridge       LoanType = "bridge"
)

// SizingConstraints are the lender limits applied when sizing a loan.
type SizingConstraints struct {
	MaxLTV       float64 `json:"maxLtv" yaml:"maxLtv"`
	MinDSCR      float64 `json:"minDscr" yaml:"minDscr"`
	MinDebtYield float64 `json:"minDebtYield" yaml:"minDebtYield"`
}

var sizingConstraints = map[LoanType]SizingConstraints{
	LoanTypePermanent:    {MaxLTV: 0.75, MinDSCR: 1.25, MinDebtYield: 0.08},
	LoanTypeConstruction: {MaxLTV: 0.65, MinDSCR: 1.20, MinDebtYield: 0.10},
	LoanTypeBridge:       {MaxLTV: 0.70, MinDSCR: 1.15, MinDebtYield: 0.09},
}

// ConstraintsFor returns the sizing constraints for a loan type. Unknown
// types fall back to permanent loan constraints.
func ConstraintsFor(loanType LoanType) (LoanType, SizingConstraints) {
	normalized := LoanType(strings.ToLower(strings.TrimSpace(string(loanType))))
	if c, ok := sizingConstraints[normalized]; ok {
		return normalized, c
	}
	return LoanTypePermanent, sizingConstraints[LoanTypePermanent]
}

// DebtSizing is the outcome of sizing a loan against lender constraints.
type DebtSizing struct {
	LoanType          LoanType          `json:"loanType" yaml:"loanType"`
	Constraints       SizingConstraints `json:"constraints" yaml:"constraints"`
	MaxByLTV          float64           `json:"maxByLtv" yaml:"maxByLtv"`
	MaxByDSCR         float64           `json:"maxByDscr" yaml:"maxByDscr"`
	MaxByDebtYield    float64           `json:"maxByDebtYield" yaml:"maxByDebtYield"`
	RecommendedLoan   float64           `json:"recommendedLoan" yaml:"recommendedLoan"`
	RecommendedLTV    float64           `json:"recommendedLtv" yaml:"recommendedLtv"`
	RecommendedDSCR   float64           `json:"recommendedDscr" yaml:"recommendedDscr"`
	BindingConstraint string            `json:"bindingConstraint" yaml:"bindingConstraint"`
}

// SizeDebt returns the largest loan satisfying the LTV, DSCR and debt yield
// limits for the loan type. The most restrictive limit wins.
func SizeDebt(noi, propertyValue float64, loanType LoanType, annualRate float64, amortYears int) DebtSizing {
	normalized, c := ConstraintsFor(loanType)
	sizing := DebtSizing{LoanType: normalized, Constraints: c}

	sizing.MaxByLTV = math.Max(0, propertyValue*c.MaxLTV)
	sizing.MaxByDSCR = principalForPayment(math.Max(0, noi)/c.MinDSCR, annualRate, amortYears)
	sizing.MaxByDebtYield = math.Max(0, noi) / c.MinDebtYield

	sizing.RecommendedLoan = sizing.MaxByLTV
	sizing.BindingConstraint = "ltv"
	if sizing.MaxByDSCR < sizing.RecommendedLoan {
		sizing.RecommendedLoan = sizing.MaxByDSCR
		sizing.BindingConstraint = "dscr"
	}
	if sizing.MaxByDebtYield < sizing.RecommendedLoan {
		sizing.RecommendedLoan = sizing.MaxByDebtYield
		sizing.BindingConstraint = "debt_yield"
	}

	if propertyValue > 0 {
		sizing.RecommendedLTV = sizing.RecommendedLoan / propertyValue
	}
	debtService := AnnualDebtService(sizing.RecommendedLoan, annualRate, amortYears)
	if debtService > 0 {
		sizing.RecommendedDSCR = noi / debtService
	} else {
		sizing.RecommendedDSCR = constants.DSCRSentinel
	}

	return sizing
}

// principalForPayment inverts the amortization formula: the principal whose
// annual debt service equals annualPayment.
func principalForPayment(annualPayment, annualRate float64, amortYears int) float64 {
	if annualPayment <= 0 || amortYears <= 0 {
		return 0
	}
	monthlyPayment := annualPayment / constants.MonthsPerYear
	months := float64(amortYears * constants.MonthsPerYear)
	if annualRate <= 0 {
		return monthlyPayment * months
	}
	periodicRate := annualRate / constants.MonthsPerYear
	power := math.Pow(1+periodicRate, months)
	return monthlyPayment * (power - 1) / (periodicRate * power)
}
