package proforma

import (
	"github.com/iwvelando/proforma/pkg/budget"
	"github.com/iwvelando/proforma/pkg/mathutil"
)

// AcquisitionBasis is the capital required to close the deal.
type AcquisitionBasis struct {
	PurchasePrice     float64 `json:"purchasePrice" yaml:"purchasePrice"`
	ClosingCosts      float64 `json:"closingCosts" yaml:"closingCosts"`
	DevelopmentBudget float64 `json:"developmentBudget" yaml:"developmentBudget"`
	BasisBeforeDebt   float64 `json:"basisBeforeDebt" yaml:"basisBeforeDebt"`
	LoanAmount        float64 `json:"loanAmount" yaml:"loanAmount"`
	LoanFees          float64 `json:"loanFees" yaml:"loanFees"`
	TotalBasis        float64 `json:"totalBasis" yaml:"totalBasis"`
	EquityRequired    float64 `json:"equityRequired" yaml:"equityRequired"`
}

func computeBasis(a Assumptions, dev budget.Summary) AcquisitionBasis {
	closingCosts := a.Acquisition.PurchasePrice * a.Acquisition.ClosingCostsPct
	basisBeforeDebt := a.Acquisition.PurchasePrice + closingCosts + dev.TotalBudget
	loanAmount := basisBeforeDebt * a.Financing.LtvPct
	loanFees := loanAmount * a.Financing.LoanFeePct
	totalBasis := basisBeforeDebt + loanFees
	return AcquisitionBasis{
		PurchasePrice:     a.Acquisition.PurchasePrice,
		ClosingCosts:      closingCosts,
		DevelopmentBudget: dev.TotalBudget,
		BasisBeforeDebt:   basisBeforeDebt,
		LoanAmount:        loanAmount,
		LoanFees:          loanFees,
		TotalBasis:        totalBasis,
		EquityRequired:    totalBasis - loanAmount,
	}
}

func (b AcquisitionBasis) rounded() AcquisitionBasis {
	return AcquisitionBasis{
		PurchasePrice:     mathutil.RoundCurrency(b.PurchasePrice),
		ClosingCosts:      mathutil.RoundCurrency(b.ClosingCosts),
		DevelopmentBudget: mathutil.RoundCurrency(b.DevelopmentBudget),
		BasisBeforeDebt:   mathutil.RoundCurrency(b.BasisBeforeDebt),
		LoanAmount:        mathutil.RoundCurrency(b.LoanAmount),
		LoanFees:          mathutil.RoundCurrency(b.LoanFees),
		TotalBasis:        mathutil.RoundCurrency(b.TotalBasis),
		EquityRequired:    mathutil.RoundCurrency(b.EquityRequired),
	}
}

// SourcesUses reconciles the capital stack against the total basis.
type SourcesUses struct {
	FromCapitalStack bool    `json:"fromCapitalStack" yaml:"fromCapitalStack"`
	DebtSources      float64 `json:"debtSources" yaml:"debtSources"`
	EquitySources    float64 `json:"equitySources" yaml:"equitySources"`
	OtherSources     float64 `json:"otherSources" yaml:"otherSources"`
	TotalSources     float64 `json:"totalSources" yaml:"totalSources"`
	TotalUses        float64 `json:"totalUses" yaml:"totalUses"`
	UsesDelta        float64 `json:"usesDelta" yaml:"usesDelta"`
}

// reconcile sums an explicit capital stack by kind. Without a stack the
// modeled loan and equity are the sources and the reconciliation balances.
// An unbalanced stack is reported, never corrected.
func reconcile(basis AcquisitionBasis, stack []CapitalSource) SourcesUses {
	if len(stack) == 0 {
		return SourcesUses{
			DebtSources:   basis.LoanAmount,
			EquitySources: basis.EquityRequired,
			TotalSources:  basis.TotalBasis,
			TotalUses:     basis.TotalBasis,
		}
	}

	su := SourcesUses{FromCapitalStack: true, TotalUses: basis.TotalBasis}
	for _, source := range stack {
		switch source.Kind {
		case SourceDebt, SourceMezz:
			su.DebtSources += source.Amount
		case SourceLPEquity, SourceGPEquity, SourcePrefEquity:
			su.EquitySources += source.Amount
		default:
			su.OtherSources += source.Amount
		}
	}
	su.TotalSources = su.DebtSources + su.EquitySources + su.OtherSources
	su.UsesDelta = su.TotalSources - su.TotalUses
	return su
}

func (s SourcesUses) rounded() SourcesUses {
	return SourcesUses{
		FromCapitalStack: s.FromCapitalStack,
		DebtSources:      mathutil.RoundCurrency(s.DebtSources),
		EquitySources:    mathutil.RoundCurrency(s.EquitySources),
		OtherSources:     mathutil.RoundCurrency(s.OtherSources),
		TotalSources:     mathutil.RoundCurrency(s.TotalSources),
		TotalUses:        mathutil.RoundCurrency(s.TotalUses),
		UsesDelta:        mathutil.RoundCurrency(s.UsesDelta),
	}
}
