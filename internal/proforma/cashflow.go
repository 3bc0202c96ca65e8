package proforma

import (
	"github.com/iwvelando/proforma/pkg/loans"
	"github.com/iwvelando/proforma/pkg/mathutil"
)

// CashFlowRow is one projected year.
type CashFlowRow struct {
	Year                      int     `json:"year" yaml:"year"`
	GrossPotentialRent        float64 `json:"grossPotentialRent" yaml:"grossPotentialRent"`
	EffectiveGrossIncome      float64 `json:"effectiveGrossIncome" yaml:"effectiveGrossIncome"`
	OperatingExpenses         float64 `json:"operatingExpenses" yaml:"operatingExpenses"`
	NOI                       float64 `json:"noi" yaml:"noi"`
	DebtService               float64 `json:"debtService" yaml:"debtService"`
	RefinanceProceeds         float64 `json:"refinanceProceeds" yaml:"refinanceProceeds"`
	LeveredCashFlow           float64 `json:"leveredCashFlow" yaml:"leveredCashFlow"`
	UnleveredCashFlow         float64 `json:"unleveredCashFlow" yaml:"unleveredCashFlow"`
	CumulativeLeveredCashFlow float64 `json:"cumulativeLeveredCashFlow" yaml:"cumulativeLeveredCashFlow"`
	CashOnCash                float64 `json:"cashOnCash" yaml:"cashOnCash"`
}

func (r CashFlowRow) rounded() CashFlowRow {
	return CashFlowRow{
		Year:                      r.Year,
		GrossPotentialRent:        mathutil.RoundCurrency(r.GrossPotentialRent),
		EffectiveGrossIncome:      mathutil.RoundCurrency(r.EffectiveGrossIncome),
		OperatingExpenses:         mathutil.RoundCurrency(r.OperatingExpenses),
		NOI:                       mathutil.RoundCurrency(r.NOI),
		DebtService:               mathutil.RoundCurrency(r.DebtService),
		RefinanceProceeds:         mathutil.RoundCurrency(r.RefinanceProceeds),
		LeveredCashFlow:           mathutil.RoundCurrency(r.LeveredCashFlow),
		UnleveredCashFlow:         mathutil.RoundCurrency(r.UnleveredCashFlow),
		CumulativeLeveredCashFlow: mathutil.RoundCurrency(r.CumulativeLeveredCashFlow),
		CashOnCash:                mathutil.RoundRatio(r.CashOnCash),
	}
}

// projection is the unrounded cash flow series for one timing.
type projection struct {
	rows       []CashFlowRow
	refinance  *RefinanceEvent
	exitLoan   loans.Terms
	loanYears  int
	cumulative float64
}

// project builds the annual series through t.HoldYears. In a refinance year
// the ordinary NOI less acquisition debt service is kept and the refinance
// proceeds are added on top; later years pay the new loan.
func (m *Model) project(t Timing) projection {
	equity := m.basis.EquityRequired
	loan := m.acquisitionLoan()
	p := projection{
		rows:      make([]CashFlowRow, 0, t.HoldYears),
		exitLoan:  loan,
		loanYears: t.HoldYears,
	}

	for year := 1; year <= t.HoldYears; year++ {
		op := m.operations(year)
		row := CashFlowRow{
			Year:                 year,
			GrossPotentialRent:   op.grossPotentialRent,
			EffectiveGrossIncome: op.effectiveGrossIncome,
			OperatingExpenses:    op.operatingExpenses,
			NOI:                  op.noi,
			UnleveredCashFlow:    op.noi,
		}

		if p.refinance != nil {
			row.DebtService = loans.DebtServiceForYear(p.exitLoan, year-t.RefinanceYear)
		} else {
			row.DebtService = loans.DebtServiceForYear(loan, year)
		}
		row.LeveredCashFlow = op.noi - row.DebtService

		if t.RefinanceYear > 0 && year == t.RefinanceYear {
			event, newLoan := m.refinance(year, op.noi)
			row.RefinanceProceeds = event.NetProceeds
			row.LeveredCashFlow += event.NetProceeds
			p.refinance = &event
			p.exitLoan = newLoan
			p.loanYears = t.HoldYears - t.RefinanceYear
		}

		p.cumulative += row.LeveredCashFlow
		row.CumulativeLeveredCashFlow = p.cumulative
		row.CashOnCash = mathutil.SafeDivide(row.LeveredCashFlow, equity)
		p.rows = append(p.rows, row)
	}
	return p
}
