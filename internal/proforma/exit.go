package proforma

import (
	"github.com/iwvelando/proforma/pkg/loans"
	"github.com/iwvelando/proforma/pkg/mathutil"
)

// ExitAnalysis is the sale at the end of the hold.
type ExitAnalysis struct {
	ExitYear         int     `json:"exitYear" yaml:"exitYear"`
	ExitNOI          float64 `json:"exitNoi" yaml:"exitNoi"`
	SalePrice        float64 `json:"salePrice" yaml:"salePrice"`
	DispositionCosts float64 `json:"dispositionCosts" yaml:"dispositionCosts"`
	LoanPayoff       float64 `json:"loanPayoff" yaml:"loanPayoff"`
	NetProceeds      float64 `json:"netProceeds" yaml:"netProceeds"`
	Profit           float64 `json:"profit" yaml:"profit"`
}

func (e ExitAnalysis) rounded() ExitAnalysis {
	return ExitAnalysis{
		ExitYear:         e.ExitYear,
		ExitNOI:          mathutil.RoundCurrency(e.ExitNOI),
		SalePrice:        mathutil.RoundCurrency(e.SalePrice),
		DispositionCosts: mathutil.RoundCurrency(e.DispositionCosts),
		LoanPayoff:       mathutil.RoundCurrency(e.LoanPayoff),
		NetProceeds:      mathutil.RoundCurrency(e.NetProceeds),
		Profit:           mathutil.RoundCurrency(e.Profit),
	}
}

// exit capitalizes the final year's NOI and pays off whichever loan is
// outstanding at the end of the hold.
func (m *Model) exit(p projection) ExitAnalysis {
	final := p.rows[len(p.rows)-1]
	salePrice := 0.0
	if m.assumptions.Exit.ExitCapRate > 0 {
		salePrice = final.NOI / m.assumptions.Exit.ExitCapRate
	}
	dispositionCosts := salePrice * m.assumptions.Exit.DispositionCostsPct
	payoff := loans.BalanceAfterYear(p.exitLoan, p.loanYears)
	netProceeds := salePrice - dispositionCosts - payoff
	return ExitAnalysis{
		ExitYear:         final.Year,
		ExitNOI:          final.NOI,
		SalePrice:        salePrice,
		DispositionCosts: dispositionCosts,
		LoanPayoff:       payoff,
		NetProceeds:      netProceeds,
		Profit:           netProceeds + p.cumulative - m.basis.EquityRequired,
	}
}
