package proforma

import (
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/irr"
	"github.com/iwvelando/proforma/pkg/mathutil"
)

// Recommendation is the go/no-go screen applied to a result.
type Recommendation string

const (
	RecommendationProceed     Recommendation = "PROCEED"
	RecommendationConditional Recommendation = "CONDITIONAL"
	RecommendationPass        Recommendation = "PASS"
)

type screen struct {
	irr      float64
	multiple float64
	dscr     float64
}

var (
	proceedScreen     = screen{irr: 0.20, multiple: 2.0, dscr: 1.25}
	conditionalScreen = screen{irr: 0.15, multiple: 1.8, dscr: 1.20}
)

func (s screen) passes(leveredIRR *float64, multiple, dscr float64) bool {
	return leveredIRR != nil && *leveredIRR >= s.irr && multiple >= s.multiple && dscr >= s.dscr
}

// Recommend screens levered IRR, equity multiple and DSCR against the
// investment thresholds. An unsolvable IRR never passes.
func Recommend(leveredIRR *float64, multiple, dscr float64) Recommendation {
	switch {
	case proceedScreen.passes(leveredIRR, multiple, dscr):
		return RecommendationProceed
	case conditionalScreen.passes(leveredIRR, multiple, dscr):
		return RecommendationConditional
	default:
		return RecommendationPass
	}
}

// returns holds the unrounded return metrics.
type returns struct {
	levered          irr.Result
	unlevered        irr.Result
	equityMultiple   float64
	cashOnCashYear1  float64
	goingInCapRate   float64
	debtServiceYear1 float64
	dscr             float64
	debtYield        float64
}

func (m *Model) returns(p projection, exit ExitAnalysis) returns {
	n := len(p.rows)
	levered := make([]float64, n+1)
	unlevered := make([]float64, n+1)
	levered[0] = -m.basis.EquityRequired
	unlevered[0] = -m.basis.TotalBasis
	for i, row := range p.rows {
		levered[i+1] = row.LeveredCashFlow
		unlevered[i+1] = row.UnleveredCashFlow
	}
	levered[n] += exit.NetProceeds
	unlevered[n] += exit.SalePrice - exit.DispositionCosts

	first := p.rows[0]
	dscr := constants.DSCRSentinel
	if first.DebtService > 0 {
		dscr = first.NOI / first.DebtService
	}

	return returns{
		levered:          irr.Solve(levered),
		unlevered:        irr.Solve(unlevered),
		equityMultiple:   mathutil.SafeDivide(p.cumulative+exit.NetProceeds, m.basis.EquityRequired),
		cashOnCashYear1:  first.CashOnCash,
		goingInCapRate:   mathutil.SafeDivide(first.NOI, m.basis.TotalBasis),
		debtServiceYear1: first.DebtService,
		dscr:             dscr,
		debtYield:        mathutil.SafeDivide(first.NOI, m.basis.LoanAmount),
	}
}
