// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/internal/optimizer"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Render writes the forecast in the named output format.
func Render(w io.Writer, f *forecast.Forecast, outputFormat string) error {
	if f == nil || f.Result == nil {
		return fmt.Errorf("no forecast to render")
	}
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, f)
	case constants.OutputFormatCSV:
		return CsvFormat(w, f)
	case constants.OutputFormatJSON:
		return JSONFormat(w, f)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, f)
	case constants.OutputFormatXLSX:
		return XLSXFormat(w, f)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, f *forecast.Forecast) error {
	p := message.NewPrinter(language.English)
	r := f.Result
	out := &errWriter{w: w}

	title := f.Name
	if title == "" {
		title = "deal"
	}
	out.printf("--- Pro forma for %s ---\n", title)
	if f.RunID != "" {
		out.printf("Run: %s\n", f.RunID)
	}
	out.printf("Recommendation: %s\n\n", r.Recommendation)

	out.printf("Acquisition basis\n")
	out.printf("  Purchase price       %15s\n", format.Currency(r.Basis.PurchasePrice))
	out.printf("  Closing costs        %15s\n", format.Currency(r.Basis.ClosingCosts))
	out.printf("  Development budget   %15s\n", format.Currency(r.Basis.DevelopmentBudget))
	out.printf("  Loan amount          %15s\n", format.Currency(r.Basis.LoanAmount))
	out.printf("  Loan fees            %15s\n", format.Currency(r.Basis.LoanFees))
	out.printf("  Total basis          %15s\n", format.Currency(r.Basis.TotalBasis))
	out.printf("  Equity required      %15s\n\n", format.Currency(r.Basis.EquityRequired))

	if r.SourcesUses.FromCapitalStack {
		out.printf("Sources and uses\n")
		out.printf("  Debt                 %15s\n", format.Currency(r.SourcesUses.DebtSources))
		out.printf("  Equity               %15s\n", format.Currency(r.SourcesUses.EquitySources))
		out.printf("  Other                %15s\n", format.Currency(r.SourcesUses.OtherSources))
		out.printf("  Total uses           %15s\n", format.Currency(r.SourcesUses.TotalUses))
		out.printf("  Delta                %15s\n\n", format.Currency(r.SourcesUses.UsesDelta))
	}

	out.printf("Returns over a %d year hold\n", r.HoldYears)
	out.printf("  Levered IRR          %15s\n", format.Percent(r.LeveredIRR))
	out.printf("  Unlevered IRR        %15s\n", format.Percent(r.UnleveredIRR))
	out.printf("  Equity multiple      %15s\n", format.Multiple(r.EquityMultiple))
	out.printf("  Net profit           %15s\n", format.Currency(r.NetProfit))
	out.printf("  Year 1 cash on cash  %15s\n", format.Percent(&r.CashOnCashYear1))
	out.printf("  Going-in cap rate    %15s\n", format.Percent(&r.GoingInCapRate))
	out.printf("  DSCR                 %15s\n", format.Multiple(r.DSCR))
	out.printf("  Debt yield           %15s\n", format.Percent(&r.DebtYield))
	if r.RentRoll.HasLeases {
		out.printf("  WALT (years)         %15.2f\n", r.WeightedAverageLeaseTerm)
	}
	out.printf("\n")

	out.printf("Year | Eff. Gross Income | Operating Expenses |        NOI | Debt Service | Refinance | Levered Cash Flow\n")
	out.printf("____ | _________________ | __________________ | __________ | ____________ | _________ | _________________\n")
	for _, row := range r.CashFlows {
		out.printf("%4d | %17s | %18s | %10s | %12s | %9s | %17s\n",
			row.Year, format.NumericCurrency(row.EffectiveGrossIncome), format.NumericCurrency(row.OperatingExpenses),
			format.NumericCurrency(row.NOI), format.NumericCurrency(row.DebtService),
			format.NumericCurrency(row.RefinanceProceeds), format.NumericCurrency(row.LeveredCashFlow))
	}
	out.printf("\n")

	out.printf("Exit in year %d\n", r.Exit.ExitYear)
	out.printf("  Sale price           %15s\n", format.Currency(r.Exit.SalePrice))
	out.printf("  Disposition costs    %15s\n", format.Currency(r.Exit.DispositionCosts))
	out.printf("  Loan payoff          %15s\n", format.Currency(r.Exit.LoanPayoff))
	out.printf("  Net proceeds         %15s\n\n", format.Currency(r.Exit.NetProceeds))

	out.printf("Debt sizing (%s, binding: %s)\n", f.DebtSizing.LoanType, f.DebtSizing.BindingConstraint)
	out.printf("  Max by LTV           %15s\n", format.Currency(f.DebtSizing.MaxByLTV))
	out.printf("  Max by DSCR          %15s\n", format.Currency(f.DebtSizing.MaxByDSCR))
	out.printf("  Max by debt yield    %15s\n", format.Currency(f.DebtSizing.MaxByDebtYield))
	out.printf("  Recommended loan     %15s\n\n", format.Currency(f.DebtSizing.RecommendedLoan))

	if a := f.Analysis; a != nil && !a.Empty() {
		out.printf("Exit scenarios (%d evaluated, top %d shown)\n", len(a.Scenarios), min(len(a.Scenarios), topScenarios))
		out.printf("Scenario                              |     IRR | Multiple |   Net Profit | Recommendation\n")
		out.printf("_____________________________________ | _______ | ________ | ____________ | ______________\n")
		for _, s := range a.Scenarios[:min(len(a.Scenarios), topScenarios)] {
			out.printf("%-37s | %7s | %8s | %12s | %s\n",
				s.Label, format.Percent(s.IRR), format.Multiple(s.EquityMultiple), format.Currency(s.NetProfit), s.Recommendation)
		}
		for _, family := range a.Families {
			out.printf("  Best %s: %s (%s)\n", family.Path, family.BestLabel, format.Percent(family.BestIRR))
		}
		out.printf("\n")
	}

	for _, series := range f.Sensitivity {
		out.printf("Sensitivity: %s\n", series.Variable)
		out.printf("       Value |     IRR | Multiple |   Net Profit |   DSCR\n")
		for _, point := range series.Points {
			out.write(p.Sprintf("%12.4f | %7s | %8s | %12s | %6.2f\n",
				point.Value, format.Percent(point.LeveredIRR), format.Multiple(point.EquityMultiple),
				format.Currency(point.NetProfit), point.DSCR))
		}
		out.printf("\n")
	}

	if wf := f.Waterfall; wf != nil {
		out.printf("Waterfall\n")
		for _, tier := range wf.Tiers {
			out.printf("  %-20s %15s  GP %15s  LP %15s\n", tier.Name,
				format.Currency(tier.Distributed), format.Currency(tier.GP), format.Currency(tier.LP))
		}
		out.printf("  GP share of distributions: %.2f%%\n", wf.GPPercentage*constants.PercentageMultiplier)
		if wf.Undistributed > 0 {
			out.printf("  Undistributed: %s\n", format.Currency(wf.Undistributed))
		}
		out.printf("\n")
	}

	for _, warning := range f.Warnings {
		out.printf("Warning: %s\n", warning)
	}

	return out.err
}

// topScenarios bounds the scenario table in the pretty report.
const topScenarios = 10

// CsvFormat outputs in comma-separated value format: the yearly cash flows,
// then the exit scenarios and sensitivity points when present, each table
// separated by an empty record.
func CsvFormat(w io.Writer, f *forecast.Forecast) error {
	cw := csv.NewWriter(w)

	records := [][]string{{
		"year", "gross_potential_rent", "effective_gross_income", "operating_expenses", "noi",
		"debt_service", "refinance_proceeds", "levered_cash_flow", "unlevered_cash_flow",
		"cumulative_levered_cash_flow", "cash_on_cash",
	}}
	for _, row := range f.Result.CashFlows {
		records = append(records, []string{
			strconv.Itoa(row.Year), currencyField(row.GrossPotentialRent), currencyField(row.EffectiveGrossIncome),
			currencyField(row.OperatingExpenses), currencyField(row.NOI), currencyField(row.DebtService),
			currencyField(row.RefinanceProceeds), currencyField(row.LeveredCashFlow),
			currencyField(row.UnleveredCashFlow), currencyField(row.CumulativeLeveredCashFlow),
			ratioField(&row.CashOnCash),
		})
	}

	if a := f.Analysis; a != nil && !a.Empty() {
		records = append(records, []string{}, []string{
			"scenario_id", "label", "path", "sell_year", "refinance_year", "exit_year", "irr",
			"irr_status", "equity_multiple", "net_profit", "refinance_proceeds", "recommendation",
		})
		for _, s := range a.Scenarios {
			records = append(records, scenarioRecord(s))
		}
	}

	if len(f.Sensitivity) > 0 {
		records = append(records, []string{}, []string{
			"variable", "value", "levered_irr", "equity_multiple", "net_profit", "dscr", "recommendation",
		})
		for _, series := range f.Sensitivity {
			for _, point := range series.Points {
				records = append(records, []string{
					string(series.Variable), strconv.FormatFloat(point.Value, 'f', -1, 64),
					ratioField(point.LeveredIRR), ratioField(&point.EquityMultiple),
					currencyField(point.NetProfit), ratioField(&point.DSCR), string(point.Recommendation),
				})
			}
		}
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func scenarioRecord(s optimizer.Scenario) []string {
	refinanceYear := ""
	if s.RefinanceYear != nil {
		refinanceYear = strconv.Itoa(*s.RefinanceYear)
	}
	return []string{
		s.ID, s.Label, string(s.Path), strconv.Itoa(s.SellYear), refinanceYear, strconv.Itoa(s.ExitYear),
		ratioField(s.IRR), s.IRRStatus.String(), ratioField(&s.EquityMultiple), currencyField(s.NetProfit),
		currencyField(s.RefinanceProceeds), string(s.Recommendation),
	}
}

func currencyField(value float64) string {
	return strconv.FormatFloat(value, 'f', constants.CurrencyPrecision, 64)
}

// ratioField renders a nil ratio as an empty field.
func ratioField(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', constants.RatioPrecision, 64)
}

// errWriter keeps the first write error so report sections can be written
// without checking each line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}
